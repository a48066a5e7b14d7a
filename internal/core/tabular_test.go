package core

import (
	"errors"
	"reflect"
	"testing"
)

var sheetHeader = []string{"Question", "Option1", "Option2", "Option3", "Option4", "Answer"}

func TestParseTabular(t *testing.T) {
	tests := []struct {
		name        string
		rows        [][]string
		wantRecords int
		wantErrors  []FieldError
	}{
		{
			name: "two valid rows",
			rows: [][]string{
				sheetHeader,
				{"What is 2+2?", "3", "4", "5", "6", "2"},
				{"Capital of France?", "Paris", "Rome", "Madrid", "Berlin", "1"},
			},
			wantRecords: 2,
		},
		{
			name:        "header only",
			rows:        [][]string{sheetHeader},
			wantRecords: 0,
		},
		{
			name: "short row reports every missing column",
			rows: [][]string{
				sheetHeader,
				{"What is 2+2?", "3", "4"},
			},
			wantErrors: []FieldError{
				{Row: 2, Fields: []string{"Option3", "Option4", "Answer"}, Message: "Missing fields"},
			},
		},
		{
			name: "one bad row discards the good ones",
			rows: [][]string{
				sheetHeader,
				{"Q1", "a", "b", "c", "d", "1"},
				{"Q2", "a", "", "c", "d", "x"},
				{"Q3", "a", "b", "c", "d", "2"},
			},
			wantErrors: []FieldError{
				{Row: 3, Fields: []string{"Option2", "Answer"}, Message: "Missing fields"},
			},
		},
		{
			name: "blank row between data rows is rejected",
			rows: [][]string{
				sheetHeader,
				{"Q1", "a", "b", "c", "d", "1"},
				{"", "", ""},
				{"Q3", "a", "b", "c", "d", ""},
			},
			wantErrors: []FieldError{
				{Row: 3, Fields: []string{"Question", "Option1", "Option2", "Option3", "Option4", "Answer"}, Message: "Missing fields"},
				{Row: 4, Fields: []string{"Answer"}, Message: "Missing fields"},
			},
		},
		{
			name: "trailing blank rows are ignored",
			rows: [][]string{
				sheetHeader,
				{"Q1", "a", "b", "c", "d", "1"},
				{"", " "},
				{},
			},
			wantRecords: 1,
		},
		{
			name: "every failing row is reported",
			rows: [][]string{
				sheetHeader,
				{"", "a", "b", "c", "d", "1"},
				{"Q", "a", "b", "c", "d", "  "},
			},
			wantErrors: []FieldError{
				{Row: 2, Fields: []string{"Question"}, Message: "Missing fields"},
				{Row: 3, Fields: []string{"Answer"}, Message: "Missing fields"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := ParseTabular(tt.rows)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(batch.Records) != tt.wantRecords {
				t.Errorf("got %d records, want %d", len(batch.Records), tt.wantRecords)
			}
			if !reflect.DeepEqual(batch.Errors, tt.wantErrors) {
				t.Errorf("errors = %+v, want %+v", batch.Errors, tt.wantErrors)
			}
			if len(batch.Errors) > 0 && len(batch.Records) > 0 {
				t.Error("batch with errors must not carry records")
			}
		})
	}
}

func TestParseTabular_RecordValues(t *testing.T) {
	batch, err := ParseTabular([][]string{
		sheetHeader,
		{" What is 2+2? ", "3", "4", "5", "6", "2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := QuestionRecord{
		Question:  "What is 2+2?",
		Option1:   "3",
		Option2:   "4",
		Option3:   "5",
		Option4:   "6",
		Answer:    2,
		TimeLimit: 10,
		Points:    1,
	}
	if !reflect.DeepEqual(batch.Records[0], want) {
		t.Errorf("record = %+v, want %+v", batch.Records[0], want)
	}
}

func TestParseTabular_HeaderMismatch(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
	}{
		{"empty sheet", nil},
		{"lowercase header", [][]string{{"question", "option1", "option2", "option3", "option4", "answer"}}},
		{"reordered", [][]string{{"Option1", "Question", "Option2", "Option3", "Option4", "Answer"}}},
		{"extra column", [][]string{append(append([]string{}, sheetHeader...), "Image")}},
		{"missing column", [][]string{sheetHeader[:5]}},
		{"padded header cell", [][]string{{"Question ", "Option1", "Option2", "Option3", "Option4", "Answer"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch, err := ParseTabular(tt.rows)
			if batch != nil {
				t.Errorf("expected nil batch, got %+v", batch)
			}
			if !errors.Is(err, ErrHeaderMismatch) {
				t.Errorf("expected ErrHeaderMismatch, got %v", err)
			}
			if KindOf(err) != KindHeaderMismatch {
				t.Errorf("KindOf = %q, want %q", KindOf(err), KindHeaderMismatch)
			}
		})
	}
}

func TestParseTabular_EnforceAnswerRange(t *testing.T) {
	rows := [][]string{
		sheetHeader,
		{"Q", "a", "b", "c", "d", "5"},
	}

	lenient, err := ParseTabular(rows)
	if err != nil || !lenient.Valid() {
		t.Fatalf("default rules should accept answer 5: %v %+v", err, lenient)
	}

	strict, err := Rules{EnforceAnswerRange: true}.ParseTabular(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strict.Valid() {
		t.Fatal("strict rules should reject answer 5")
	}
	if got := strict.Errors[0].Fields; !reflect.DeepEqual(got, []string{"Answer"}) {
		t.Errorf("fields = %v, want [Answer]", got)
	}
}
