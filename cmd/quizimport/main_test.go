package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/QuizImport/internal/core"
)

func TestRun_DryRunPrintsBatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "questions.csv")
	data, err := core.EncodeDelimited(core.SampleQuestions)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-dry-run", path}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit = %d, stderr = %s", code, stderr.String())
	}

	var result core.ImportResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout.String())
	}
	if len(result.Records) != len(core.SampleQuestions) || result.Committed {
		t.Errorf("records=%d committed=%v", len(result.Records), result.Committed)
	}
	if result.Kind != core.KindDelimitedImport {
		t.Errorf("kind = %q", result.Kind)
	}
}

func TestRun_DryRunReportsRowErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.csv")
	content := "question,option1,option2,option3,option4,answer\nQ,a,b,c,d,1\nQ2,a,b,c,,2\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-dry-run", path}, &stdout, &stderr)
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "Row 2: Missing fields: option4") {
		t.Errorf("stderr = %s", stderr.String())
	}
}

func TestRun_Template(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "sample.docx")

	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"-template", "docx", "-o", out}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit = %d, stderr = %s", code, stderr.String())
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	text, err := core.ExtractDocumentText(data)
	if err != nil {
		t.Fatal(err)
	}
	batch, err := core.ParseBlockText(text)
	if err != nil || !batch.Valid() {
		t.Fatalf("template does not parse: %v %+v", err, batch)
	}
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), nil, &stdout, &stderr); code != 2 {
		t.Errorf("exit = %d, want 2", code)
	}
	if code := run(context.Background(), []string{"-template", "pdf"}, &stdout, &stderr); code != 1 {
		t.Errorf("unknown template exit = %d, want 1", code)
	}
}
