package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies why an import did not commit.
type ErrorKind string

const (
	KindUnsupportedFormat ErrorKind = "unsupported_format"
	KindHeaderMismatch    ErrorKind = "header_mismatch"
	KindField             ErrorKind = "field"
	KindParse             ErrorKind = "parse"
	KindIO                ErrorKind = "io"
	KindStale             ErrorKind = "stale"
	KindStore             ErrorKind = "store"
)

// Sentinels for errors.Is. Every *ImportError matches the sentinel of its kind.
var (
	ErrUnsupportedFormat = errors.New("unsupported file type")
	ErrHeaderMismatch    = errors.New("file headers do not match the expected format")
	ErrMissingFields     = errors.New("missing required fields")
	ErrParse             = errors.New("invalid file structure")
	ErrIO                = errors.New("read failed")
	ErrStaleImport       = errors.New("import superseded by a newer one")
	ErrStore             = errors.New("store rejected import")
)

var kindSentinels = map[ErrorKind]error{
	KindUnsupportedFormat: ErrUnsupportedFormat,
	KindHeaderMismatch:    ErrHeaderMismatch,
	KindField:             ErrMissingFields,
	KindParse:             ErrParse,
	KindIO:                ErrIO,
	KindStale:             ErrStaleImport,
	KindStore:             ErrStore,
}

// ImportError is returned for every import that did not commit.
// Fields carries the full per-row error list for KindField.
type ImportError struct {
	Kind    ErrorKind
	Message string
	Fields  []FieldError
	Err     error // Underlying technical error, if any
}

func (e *ImportError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = kindSentinels[e.Kind].Error()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *ImportError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// Details returns one human-readable line per field error.
func (e *ImportError) Details() []string {
	lines := make([]string, 0, len(e.Fields))
	for _, fe := range e.Fields {
		lines = append(lines, describeFieldError(fe))
	}
	return lines
}

// KindOf returns the kind of err, or "" if err is not an *ImportError.
func KindOf(err error) ErrorKind {
	var ie *ImportError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return ""
}

func newImportError(kind ErrorKind, err error, format string, args ...any) *ImportError {
	return &ImportError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

func describeFieldError(fe FieldError) string {
	unit := "Row"
	if fe.Block {
		unit = "Question"
	}
	line := fmt.Sprintf("%s %d: %s", unit, fe.Row, fe.Message)
	if len(fe.Fields) > 0 {
		line += ": " + strings.Join(fe.Fields, ", ")
	}
	if len(fe.Details) > 0 {
		line += " (" + strings.Join(fe.Details, "; ") + ")"
	}
	return line
}
