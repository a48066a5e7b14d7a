// Package templates holds the HTML fragments the server renders for HTMX
// requests. Components are written as .templ files; the _templ.go files next
// to them come from `templ generate`.
package templates

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/QuizImport/internal/core"
)

func resultStatus(res *core.ImportResult) string {
	switch {
	case res.Committed:
		return "Imported"
	case len(res.Records) > 0:
		return "Preview"
	default:
		return "Not imported"
	}
}

// errorSummary reads "Row 3: Missing fields (Option2, Answer)".
func errorSummary(fe core.FieldError) string {
	unit := "Row"
	if fe.Block {
		unit = "Question"
	}
	s := fmt.Sprintf("%s %d: %s", unit, fe.Row, fe.Message)
	if len(fe.Fields) > 0 {
		s += " (" + strings.Join(fe.Fields, ", ") + ")"
	}
	return s
}

func optionList(q core.QuestionRecord) string {
	return strings.Join(q.Options(), " / ")
}
