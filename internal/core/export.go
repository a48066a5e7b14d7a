package core

import (
	"fmt"
	"strings"
)

// SampleQuestions are written into downloadable example files.
var SampleQuestions = []QuestionRecord{
	{
		Question:  "What is the capital of France?",
		Option1:   "Berlin",
		Option2:   "Madrid",
		Option3:   "Paris",
		Option4:   "Rome",
		Answer:    3,
		TimeLimit: DefaultTimeLimit,
		Points:    DefaultPoints,
	},
	{
		Question:  "How many days are in a leap year?",
		Option1:   "365",
		Option2:   "366",
		Option3:   "364",
		Option4:   "367",
		Answer:    2,
		TimeLimit: DefaultTimeLimit,
		Points:    DefaultPoints,
	},
}

// EncodeBlockText renders records in the marker layout read by ParseBlockText,
// with a blank line between questions.
func EncodeBlockText(records []QuestionRecord) string {
	var sb strings.Builder
	for i, rec := range records {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s %s\n", markerQuestion, rec.Question)
		fmt.Fprintf(&sb, "%s %s\n", markerOption1, rec.Option1)
		fmt.Fprintf(&sb, "%s %s\n", markerOption2, rec.Option2)
		fmt.Fprintf(&sb, "%s %s\n", markerOption3, rec.Option3)
		fmt.Fprintf(&sb, "%s %s\n", markerOption4, rec.Option4)
		fmt.Fprintf(&sb, "%s %d\n", markerAnswer, rec.Answer)
	}
	return sb.String()
}

// TemplateFile is a generated example file for one format.
type TemplateFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Template builds the example file for the format that owns ext
// (for example "xlsx" or ".csv").
func Template(ext string) (*TemplateFile, error) {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	def, err := DetectFormat("example" + ext)
	if err != nil {
		return nil, err
	}
	if def.Template == nil {
		return nil, newImportError(KindUnsupportedFormat, nil, "No template for %s", def.Format)
	}

	data, err := def.Template()
	if err != nil {
		return nil, fmt.Errorf("build %s template: %w", def.Format, err)
	}
	return &TemplateFile{
		Name:        "example" + def.Extensions[0],
		ContentType: def.ContentType,
		Data:        data,
	}, nil
}
