package core

import (
	"fmt"
	"strings"
)

// Block-text markers. A line belongs to a field when it starts with the marker.
const (
	markerQuestion = "Question:"
	markerOption1  = "Option1:"
	markerOption2  = "Option2:"
	markerOption3  = "Option3:"
	markerOption4  = "Option4:"
	markerAnswer   = "Answer:"
)

// Field slots, in FieldLabels order.
const (
	slotQuestion = iota
	slotOption1
	slotOption2
	slotOption3
	slotOption4
	slotAnswer
)

var fieldMarkers = [...]struct {
	prefix string
	slot   int
}{
	{markerOption1, slotOption1},
	{markerOption2, slotOption2},
	{markerOption3, slotOption3},
	{markerOption4, slotOption4},
	{markerAnswer, slotAnswer},
}

type parseState int

const (
	stateIdle         parseState = iota // No block opened yet
	stateAccumulating                   // Filling the open block
	stateDone                           // Input exhausted, last block finalized
)

// blockState is the question being assembled plus which fields have been seen.
// rejected holds, per slot, why the latest marker line for it was refused.
type blockState struct {
	number    int
	candidate Candidate
	seen      [6]bool
	rejected  [6]string
}

func (b *blockState) set(slot int, v string) {
	switch slot {
	case slotQuestion:
		b.candidate.Question = v
	case slotOption1:
		b.candidate.Option1 = v
	case slotOption2:
		b.candidate.Option2 = v
	case slotOption3:
		b.candidate.Option3 = v
	case slotOption4:
		b.candidate.Option4 = v
	case slotAnswer:
		b.candidate.Answer = v
	}
	b.seen[slot] = true
	b.rejected[slot] = ""
}

func (b *blockState) reject(slot, line int, reason string) {
	b.seen[slot] = false
	b.rejected[slot] = fmt.Sprintf("line %d: %s %s", line, SpreadsheetLabels[slot], reason)
}

// details lists the refused lines of the fields that are still missing.
func (b *blockState) details() []string {
	var out []string
	for slot, ok := range b.seen {
		if !ok && b.rejected[slot] != "" {
			out = append(out, b.rejected[slot])
		}
	}
	return out
}

func (b *blockState) missing() []string {
	var labels []string
	for slot, ok := range b.seen {
		if !ok {
			labels = append(labels, SpreadsheetLabels[slot])
		}
	}
	return labels
}

type blockParser struct {
	rules Rules
	state parseState
	line  int
	block blockState
	batch Batch
}

// ParseBlockText parses marker-delimited questions using the default Rules.
func ParseBlockText(text string) (*Batch, error) {
	return Rules{}.ParseBlockText(text)
}

// ParseBlockText parses marker-delimited questions:
//
//	Question: What is 2+2?
//	Option1: 3
//	Option2: 4
//	Option3: 5
//	Option4: 6
//	Answer: 2
//
// Each "Question:" line closes the previous block and opens a new one.
// Lines without a marker are ignored, as are marker lines before the first
// question. A block missing any field fails the whole batch; a text with no
// question at all is reported as one incomplete block.
func (r Rules) ParseBlockText(text string) (*Batch, error) {
	p := &blockParser{rules: r, state: stateIdle}

	for i, line := range strings.Split(text, "\n") {
		p.line = i + 1
		p.feed(normalizeLine(line))
	}
	p.finish()

	return p.batch.gate(), nil
}

func normalizeLine(line string) string {
	line = strings.TrimRight(line, "\r")
	return strings.TrimLeft(line, " \t")
}

func (p *blockParser) feed(line string) {
	if rest, ok := strings.CutPrefix(line, markerQuestion); ok {
		if p.state == stateAccumulating {
			p.finalize()
		}
		p.open(strings.TrimSpace(rest))
		return
	}

	if p.state != stateAccumulating {
		return
	}

	for _, m := range fieldMarkers {
		rest, ok := strings.CutPrefix(line, m.prefix)
		if !ok {
			continue
		}
		v := strings.TrimSpace(rest)
		if v == "" {
			p.block.reject(m.slot, p.line, "is empty")
			return
		}
		if m.slot == slotAnswer && !p.rules.answerOK(v) {
			p.block.reject(m.slot, p.line, answerProblem(v))
			return
		}
		p.block.set(m.slot, v)
		return
	}
}

func (p *blockParser) open(question string) {
	p.state = stateAccumulating
	p.block = blockState{number: p.block.number + 1}
	if question == "" {
		p.block.reject(slotQuestion, p.line, "is empty")
		return
	}
	p.block.set(slotQuestion, question)
}

func answerProblem(v string) string {
	if _, ok := parseAnswer(v); !ok {
		return fmt.Sprintf("%q is not a number", v)
	}
	return v + " is outside 1-4"
}

func (p *blockParser) finalize() {
	if missing := p.block.missing(); len(missing) > 0 {
		p.batch.Errors = append(p.batch.Errors, FieldError{
			Row:     p.block.number,
			Block:   true,
			Fields:  missing,
			Message: "Incomplete question structure",
			Details: p.block.details(),
		})
		return
	}
	p.batch.Records = append(p.batch.Records, newRecord(p.block.candidate))
}

func (p *blockParser) finish() {
	switch p.state {
	case stateAccumulating:
		p.finalize()
	case stateIdle:
		p.block = blockState{number: 1}
		p.finalize()
	}
	p.state = stateDone
}

// parseDocument is the registered ParseFunc for structured documents.
func parseDocument(data []byte, rules Rules) (*Batch, error) {
	text, err := ExtractDocumentText(data)
	if err != nil {
		return nil, err
	}
	batch, err := rules.ParseBlockText(text)
	if err != nil {
		return nil, err
	}
	if !batch.Valid() {
		return batch, fieldFailure(batch, "Import failed! Unsupported format or Missing fields")
	}
	return batch, nil
}
