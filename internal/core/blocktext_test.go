package core

import (
	"reflect"
	"strings"
	"testing"
)

const twoQuestions = `Question: What is 2+2?
Option1: 3
Option2: 4
Option3: 5
Option4: 6
Answer: 2

Question: Capital of France?
Option1: Paris
Option2: Rome
Option3: Madrid
Option4: Berlin
Answer: 1
`

func TestParseBlockText(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantRecords int
		wantErrors  []FieldError
	}{
		{
			name:        "two complete blocks",
			text:        twoQuestions,
			wantRecords: 2,
		},
		{
			name:        "windows line endings and indentation",
			text:        strings.ReplaceAll("  Question: Q\n\tOption1: a\nOption2: b\nOption3: c\nOption4: d\nAnswer: 3\n", "\n", "\r\n"),
			wantRecords: 1,
		},
		{
			name:        "unmarked lines are ignored",
			text:        "Quiz title\nQuestion: Q\nsome note\nOption1: a\nOption2: b\nOption3: c\nOption4: d\nAnswer: 1\nthe end",
			wantRecords: 1,
		},
		{
			name:        "markers before the first question are ignored",
			text:        "Option1: stray\nAnswer: 9\nQuestion: Q\nOption1: a\nOption2: b\nOption3: c\nOption4: d\nAnswer: 1",
			wantRecords: 1,
		},
		{
			name: "incomplete middle block fails the batch",
			text: "Question: Q1\nOption1: a\nOption2: b\nOption3: c\nOption4: d\nAnswer: 1\n" +
				"Question: Q2\nOption1: a\nOption2: b\nOption4: d\nAnswer: 1\n" +
				"Question: Q3\nOption1: a\nOption2: b\nOption3: c\nOption4: d\nAnswer: 1\n",
			wantErrors: []FieldError{
				{Row: 2, Block: true, Fields: []string{"Option3"}, Message: "Incomplete question structure"},
			},
		},
		{
			name: "incomplete last block",
			text: "Question: Q1\nOption1: a\nOption2: b\nOption3: c\nOption4: d",
			wantErrors: []FieldError{
				{Row: 1, Block: true, Fields: []string{"Answer"}, Message: "Incomplete question structure"},
			},
		},
		{
			name: "empty remainder leaves the field missing",
			text: "Question: Q1\nOption1:   \nOption2: b\nOption3: c\nOption4: d\nAnswer: 1",
			wantErrors: []FieldError{
				{Row: 1, Block: true, Fields: []string{"Option1"}, Message: "Incomplete question structure", Details: []string{"line 2: Option1 is empty"}},
			},
		},
		{
			name: "non-numeric answer",
			text: "Question: Q1\nOption1: a\nOption2: b\nOption3: c\nOption4: d\nAnswer: B",
			wantErrors: []FieldError{
				{Row: 1, Block: true, Fields: []string{"Answer"}, Message: "Incomplete question structure", Details: []string{`line 6: Answer "B" is not a number`}},
			},
		},
		{
			name: "empty question text",
			text: "Question:\nOption1: a\nOption2: b\nOption3: c\nOption4: d\nAnswer: 1",
			wantErrors: []FieldError{
				{Row: 1, Block: true, Fields: []string{"Question"}, Message: "Incomplete question structure", Details: []string{"line 1: Question is empty"}},
			},
		},
		{
			name:        "a later line fills a missing field",
			text:        "Question: Q1\nOption1:\nOption1: a\nOption2: b\nOption3: c\nOption4: d\nAnswer: 1",
			wantRecords: 1,
		},
		{
			name: "no question at all",
			text: "Just some text\nwithout markers",
			wantErrors: []FieldError{
				{Row: 1, Block: true, Fields: SpreadsheetLabels[:], Message: "Incomplete question structure"},
			},
		},
		{
			name: "empty text",
			text: "",
			wantErrors: []FieldError{
				{Row: 1, Block: true, Fields: SpreadsheetLabels[:], Message: "Incomplete question structure"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := ParseBlockText(tt.text)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(batch.Records) != tt.wantRecords {
				t.Errorf("got %d records, want %d", len(batch.Records), tt.wantRecords)
			}
			if !reflect.DeepEqual(batch.Errors, tt.wantErrors) {
				t.Errorf("errors = %+v, want %+v", batch.Errors, tt.wantErrors)
			}
		})
	}
}

func TestParseBlockText_RecordValues(t *testing.T) {
	batch, err := ParseBlockText(twoQuestions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []QuestionRecord{
		{Question: "What is 2+2?", Option1: "3", Option2: "4", Option3: "5", Option4: "6", Answer: 2, TimeLimit: 10, Points: 1},
		{Question: "Capital of France?", Option1: "Paris", Option2: "Rome", Option3: "Madrid", Option4: "Berlin", Answer: 1, TimeLimit: 10, Points: 1},
	}
	if !reflect.DeepEqual(batch.Records, want) {
		t.Errorf("records = %+v, want %+v", batch.Records, want)
	}
}

func TestParseBlockText_LastValueWins(t *testing.T) {
	batch, err := ParseBlockText("Question: Q\nOption1: first\nOption1: second\nOption2: b\nOption3: c\nOption4: d\nAnswer: 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := batch.Records[0].Option1; got != "second" {
		t.Errorf("Option1 = %q, want %q", got, "second")
	}
}

func TestParseBlockText_EnforceAnswerRange(t *testing.T) {
	text := "Question: Q\nOption1: a\nOption2: b\nOption3: c\nOption4: d\nAnswer: 7"

	if batch, _ := ParseBlockText(text); !batch.Valid() {
		t.Errorf("default rules should accept answer 7, got %+v", batch.Errors)
	}

	batch, _ := Rules{EnforceAnswerRange: true}.ParseBlockText(text)
	if batch.Valid() {
		t.Fatal("strict rules should reject answer 7")
	}
	if got := batch.Errors[0].Fields; !reflect.DeepEqual(got, []string{"Answer"}) {
		t.Errorf("fields = %v, want [Answer]", got)
	}
	if got := batch.Errors[0].Details; !reflect.DeepEqual(got, []string{"line 6: Answer 7 is outside 1-4"}) {
		t.Errorf("details = %v", got)
	}
}

func TestParseBlockText_RejectedLineDetails(t *testing.T) {
	text := "Question: Q1\nOption1: a\nOption2:\nOption3: c\nOption4: d\nAnswer: x\n" +
		"Question: Q2\nOption1:\nOption1: a\nOption2: b\nOption3: c\nOption4: d\n"

	batch, err := ParseBlockText(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []FieldError{
		{
			Row: 1, Block: true, Fields: []string{"Option2", "Answer"}, Message: "Incomplete question structure",
			Details: []string{"line 3: Option2 is empty", `line 6: Answer "x" is not a number`},
		},
		{Row: 2, Block: true, Fields: []string{"Answer"}, Message: "Incomplete question structure"},
	}
	if !reflect.DeepEqual(batch.Errors, want) {
		t.Errorf("errors = %+v, want %+v", batch.Errors, want)
	}

	ie := &ImportError{Kind: KindField, Fields: batch.Errors}
	if got := ie.Details()[0]; got != `Question 1: Incomplete question structure: Option2, Answer (line 3: Option2 is empty; line 6: Answer "x" is not a number)` {
		t.Errorf("detail line = %q", got)
	}
}

func TestEncodeBlockText_RoundTrip(t *testing.T) {
	text := EncodeBlockText(SampleQuestions)

	batch, err := ParseBlockText(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(batch.Records, SampleQuestions) {
		t.Errorf("round trip = %+v, want %+v", batch.Records, SampleQuestions)
	}
}

func TestParseBlockText_Idempotent(t *testing.T) {
	text := EncodeBlockText(SampleQuestions) + "Question: dangling\nOption1: a\n"

	first, err1 := ParseBlockText(text)
	second, err2 := ParseBlockText(text)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("batches differ between runs:\n%+v\n%+v", first, second)
	}
	if (err1 == nil) != (err2 == nil) || (err1 != nil && err1.Error() != err2.Error()) {
		t.Errorf("errors differ between runs: %v / %v", err1, err2)
	}
}
