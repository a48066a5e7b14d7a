package core

import (
	"archive/zip"
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	doc := `<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body + `</w:body></w:document>`
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractDocumentText(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "one run per paragraph",
			body: `<w:p><w:r><w:t>Question: Q</w:t></w:r></w:p><w:p><w:r><w:t>Option1: a</w:t></w:r></w:p>`,
			want: "Question: Q\nOption1: a\n",
		},
		{
			name: "runs are joined",
			body: `<w:p><w:r><w:t>Question:</w:t></w:r><w:r><w:t xml:space="preserve"> What?</w:t></w:r></w:p>`,
			want: "Question: What?\n",
		},
		{
			name: "tabs and breaks",
			body: `<w:p><w:r><w:t>a</w:t><w:tab/><w:t>b</w:t><w:br/><w:t>c</w:t></w:r></w:p>`,
			want: "a\tb\nc\n",
		},
		{
			name: "escaped characters",
			body: `<w:p><w:r><w:t>1 &lt; 2 &amp; 3</w:t></w:r></w:p>`,
			want: "1 < 2 & 3\n",
		},
		{
			name: "text outside w:t is ignored",
			body: `<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Title</w:t></w:r></w:p>`,
			want: "Title\n",
		},
		{
			name: "table cells in row order",
			body: `<w:p><w:r><w:t>Question: Q</w:t></w:r></w:p>` +
				`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>Option1: a</w:t></w:r></w:p></w:tc>` +
				`<w:tc><w:p><w:r><w:t>Option2: b</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`,
			want: "Question: Q\nOption1: a\nOption2: b\n",
		},
		{
			name: "empty paragraph",
			body: `<w:p><w:r><w:t>a</w:t></w:r></w:p><w:p/><w:p><w:r><w:t>b</w:t></w:r></w:p>`,
			want: "a\n\nb\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractDocumentText(buildDocx(t, tt.body))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractDocumentText_Invalid(t *testing.T) {
	var empty bytes.Buffer
	zw := zip.NewWriter(&empty)
	_, _ = zw.Create("word/styles.xml")
	_ = zw.Close()

	tests := []struct {
		name string
		data []byte
	}{
		{"not a zip", []byte("Question: plain text pretending to be docx")},
		{"no document part", empty.Bytes()},
		{"broken xml", buildDocx(t, `<w:p><w:r><w:t>unclosed`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractDocumentText(tt.data)
			if !errors.Is(err, ErrParse) {
				t.Errorf("expected ErrParse, got %v", err)
			}
		})
	}
}

func TestEncodeDocument_RoundTrip(t *testing.T) {
	data, err := EncodeDocument(SampleQuestions)
	if err != nil {
		t.Fatalf("EncodeDocument: %v", err)
	}

	text, err := ExtractDocumentText(data)
	if err != nil {
		t.Fatalf("ExtractDocumentText: %v", err)
	}
	if !strings.HasPrefix(text, "Question: What is the capital of France?\n") {
		t.Errorf("unexpected text start: %q", text)
	}

	batch, err := ParseBlockText(text)
	if err != nil {
		t.Fatalf("ParseBlockText: %v", err)
	}
	if !reflect.DeepEqual(batch.Records, SampleQuestions) {
		t.Errorf("round trip = %+v, want %+v", batch.Records, SampleQuestions)
	}
}

func TestParseDocument_FieldFailure(t *testing.T) {
	data := buildDocx(t, `<w:p><w:r><w:t>Question: Q</w:t></w:r></w:p>`)

	batch, err := parseDocument(data, Rules{})
	if !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if batch == nil || len(batch.Errors) != 1 {
		t.Fatalf("expected one field error, got %+v", batch)
	}

	var ie *ImportError
	if !errors.As(err, &ie) || ie.Message != "Import failed! Unsupported format or Missing fields" {
		t.Errorf("unexpected error message: %v", err)
	}
}
