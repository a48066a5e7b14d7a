package core

import (
	"context"
	"time"
)

// Defaults applied to every imported question.
const (
	DefaultTimeLimit = 10
	DefaultPoints    = 1
)

// Format identifies the structure of an import payload.
type Format string

const (
	FormatSpreadsheet Format = "spreadsheet"
	FormatDocument    Format = "structured-document"
	FormatDelimited   Format = "delimited-text"
)

// ImportKind tags a committed batch with the format that produced it so the
// sink can apply format-specific handling.
type ImportKind string

const (
	KindSpreadsheetImport ImportKind = "spreadsheet-import"
	KindDocumentImport    ImportKind = "document-import"
	KindDelimitedImport   ImportKind = "delimited-import"
)

// QuestionRecord is the canonical output unit of every parser.
// It is only ever built from a fully validated candidate.
type QuestionRecord struct {
	ID        string `json:"id"`
	ImageURL  string `json:"imageUrl"`
	Question  string `json:"question"`
	Option1   string `json:"option1"`
	Option2   string `json:"option2"`
	Option3   string `json:"option3"`
	Option4   string `json:"option4"`
	Answer    int    `json:"answer"`
	TimeLimit int    `json:"timeLimit"`
	Points    int    `json:"points"`
}

// Options returns the four option texts in order.
func (q QuestionRecord) Options() []string {
	return []string{q.Option1, q.Option2, q.Option3, q.Option4}
}

// FieldError describes one row or block that failed validation.
type FieldError struct {
	Row     int      `json:"row"`              // 1-based display row, or block number when Block is set
	Block   bool     `json:"block,omitempty"`  // Row counts question blocks rather than lines
	Fields  []string `json:"fields,omitempty"` // Missing or invalid field labels
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"` // Source lines that left a field unset
}

// Batch is the output of a single parse: records and field errors in source order.
// When Errors is non-empty Records is always empty.
type Batch struct {
	Records []QuestionRecord `json:"records"`
	Errors  []FieldError     `json:"errors"`
}

// Valid reports whether the batch passed the commit gate.
func (b *Batch) Valid() bool {
	return b != nil && len(b.Errors) == 0
}

// gate enforces the all-or-nothing rule: any error discards every record.
func (b *Batch) gate() *Batch {
	if len(b.Errors) > 0 {
		b.Records = nil
	}
	return b
}

// Commit is what the sink receives for a successful import.
type Commit struct {
	ImportID string
	Kind     ImportKind
	FileName string
	Target   string // Quiz the questions belong to; may be empty
	Records  []QuestionRecord
}

// Sink receives validated batches. It is called at most once per import.
type Sink interface {
	BulkImport(ctx context.Context, c Commit) error
}

// ImportRequest describes one import attempt.
type ImportRequest struct {
	Source  Source
	Session string // Groups imports from one file selector; newer imports supersede older ones
	Target  string
}

// ImportResult contains the outcome of an import attempt.
type ImportResult struct {
	ImportID  string           `json:"importId"`
	FileName  string           `json:"fileName"`
	Format    Format           `json:"format,omitempty"`
	Kind      ImportKind       `json:"kind,omitempty"`
	Records   []QuestionRecord `json:"records"`
	Errors    []FieldError     `json:"errors"`
	Committed bool             `json:"committed"`
	Duration  time.Duration    `json:"duration"`
}
