package core

import (
	"reflect"
	"testing"
)

func completeCandidate() Candidate {
	return Candidate{
		Question: "What is 2+2?",
		Option1:  "3",
		Option2:  "4",
		Option3:  "5",
		Option4:  "6",
		Answer:   "2",
	}
}

func TestMissingFields(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Candidate)
		labels FieldLabels
		want   []string
	}{
		{
			name:   "complete candidate",
			modify: func(c *Candidate) {},
			labels: SpreadsheetLabels,
			want:   nil,
		},
		{
			name:   "whitespace question",
			modify: func(c *Candidate) { c.Question = "   " },
			labels: SpreadsheetLabels,
			want:   []string{"Question"},
		},
		{
			name:   "missing options keep field order",
			modify: func(c *Candidate) { c.Option4 = ""; c.Option2 = "" },
			labels: SpreadsheetLabels,
			want:   []string{"Option2", "Option4"},
		},
		{
			name:   "non-numeric answer",
			modify: func(c *Candidate) { c.Answer = "B" },
			labels: SpreadsheetLabels,
			want:   []string{"Answer"},
		},
		{
			name:   "everything missing with delimited labels",
			modify: func(c *Candidate) { *c = Candidate{} },
			labels: DelimitedLabels,
			want:   []string{"question", "option1", "option2", "option3", "option4", "answer"},
		},
		{
			name:   "out of range answer is accepted",
			modify: func(c *Candidate) { c.Answer = "9" },
			labels: SpreadsheetLabels,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := completeCandidate()
			tt.modify(&c)
			got := MissingFields(c, tt.labels)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MissingFields = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRules_EnforceAnswerRange(t *testing.T) {
	strict := Rules{EnforceAnswerRange: true}

	tests := []struct {
		answer string
		want   []string
	}{
		{"1", nil},
		{"4", nil},
		{"0", []string{"Answer"}},
		{"5", []string{"Answer"}},
		{"x", []string{"Answer"}},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			c := completeCandidate()
			c.Answer = tt.answer
			got := strict.Check(c, SpreadsheetLabels)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Check(answer=%q) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}

func TestNewRecord_Defaults(t *testing.T) {
	c := completeCandidate()
	c.Question = "  padded  "

	rec := newRecord(c)
	if rec.Question != "padded" {
		t.Errorf("Question = %q, want trimmed", rec.Question)
	}
	if rec.Answer != 2 {
		t.Errorf("Answer = %d, want 2", rec.Answer)
	}
	if rec.TimeLimit != DefaultTimeLimit || rec.Points != DefaultPoints {
		t.Errorf("TimeLimit/Points = %d/%d, want %d/%d", rec.TimeLimit, rec.Points, DefaultTimeLimit, DefaultPoints)
	}
	if rec.ID != "" || rec.ImageURL != "" {
		t.Errorf("ID and ImageURL should start empty, got %q and %q", rec.ID, rec.ImageURL)
	}
}
