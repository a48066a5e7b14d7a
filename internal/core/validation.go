package core

// validation.go provides the field rules shared by every parser.
//
// A candidate is a question as read from the source, before any field is
// known to be present. MissingFields applies the same rule to all formats:
//  1. Text fields must be non-empty after trimming
//  2. The answer must be present and numeric
//
// The block-text parser tracks the same rule incrementally with seen flags.

import "strings"

// Candidate is an unvalidated question read from a row or block.
// Unset fields are empty strings.
type Candidate struct {
	Question string
	Option1  string
	Option2  string
	Option3  string
	Option4  string
	Answer   string
}

// FieldLabels names the six fields in a source's own vocabulary.
type FieldLabels [6]string

var (
	// SpreadsheetLabels are used for spreadsheet and document errors.
	SpreadsheetLabels = FieldLabels{"Question", "Option1", "Option2", "Option3", "Option4", "Answer"}

	// DelimitedLabels are used for delimited-text errors and double as its header keys.
	DelimitedLabels = FieldLabels{"question", "option1", "option2", "option3", "option4", "answer"}
)

// MissingFields returns the labels of every missing or invalid field, in
// field order. An empty result means the candidate can become a record.
func MissingFields(c Candidate, labels FieldLabels) []string {
	var missing []string

	texts := [5]string{c.Question, c.Option1, c.Option2, c.Option3, c.Option4}
	for i, v := range texts {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, labels[i])
		}
	}

	if _, ok := parseAnswer(c.Answer); !ok {
		missing = append(missing, labels[5])
	}

	return missing
}

// newRecord builds a record from a candidate that passed MissingFields.
func newRecord(c Candidate) QuestionRecord {
	answer, _ := parseAnswer(c.Answer)
	return QuestionRecord{
		Question:  strings.TrimSpace(c.Question),
		Option1:   strings.TrimSpace(c.Option1),
		Option2:   strings.TrimSpace(c.Option2),
		Option3:   strings.TrimSpace(c.Option3),
		Option4:   strings.TrimSpace(c.Option4),
		Answer:    answer,
		TimeLimit: DefaultTimeLimit,
		Points:    DefaultPoints,
	}
}

// AnswerInRange reports whether answer selects one of the four options.
func AnswerInRange(answer int) bool {
	return answer >= 1 && answer <= 4
}

// Rules tunes validation beyond the required-field check.
// The zero value accepts any integral answer.
type Rules struct {
	EnforceAnswerRange bool
}

// Check runs MissingFields and then the optional rules. The answer label is
// reported once even when it fails both checks.
func (r Rules) Check(c Candidate, labels FieldLabels) []string {
	missing := MissingFields(c, labels)
	if !r.EnforceAnswerRange {
		return missing
	}
	if answer, ok := parseAnswer(c.Answer); ok && !AnswerInRange(answer) {
		missing = append(missing, labels[5])
	}
	return missing
}

// answerOK reports whether a single answer value would pass Check.
func (r Rules) answerOK(s string) bool {
	answer, ok := parseAnswer(s)
	if !ok {
		return false
	}
	return !r.EnforceAnswerRange || AnswerInRange(answer)
}
