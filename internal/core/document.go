package core

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fumiama/go-docx"
)

// TextExtractor turns a document payload into plain text, one paragraph per line.
type TextExtractor interface {
	ExtractText(data []byte) (string, error)
}

// TextExtractorFunc adapts a function to TextExtractor.
type TextExtractorFunc func(data []byte) (string, error)

func (f TextExtractorFunc) ExtractText(data []byte) (string, error) { return f(data) }

const documentPart = "word/document.xml"

// DocxExtractor reads the main document part of a .docx package.
type DocxExtractor struct{}

// DefaultExtractor is used by ExtractDocumentText.
var DefaultExtractor TextExtractor = DocxExtractor{}

// ExtractDocumentText converts a .docx payload to plain text with DefaultExtractor.
func ExtractDocumentText(data []byte) (string, error) {
	return DefaultExtractor.ExtractText(data)
}

// ExtractText writes each body paragraph on its own line. Paragraphs inside
// tables are emitted in row order, cell by cell.
func (DocxExtractor) ExtractText(data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", newImportError(KindParse, err, "Unable to open document")
	}
	// Parse leaves the document name unset when the package has no main part.
	if doc.Document.XMLName.Local != "document" {
		return "", newImportError(KindParse, nil, "Document has no %s part", documentPart)
	}

	var sb strings.Builder
	writeItems(&sb, doc.Document.Body.Items)
	return sb.String(), nil
}

func writeItems(sb *strings.Builder, items []interface{}) {
	for _, it := range items {
		switch o := it.(type) {
		case *docx.Paragraph:
			sb.WriteString(o.String())
			sb.WriteByte('\n')
		case *docx.Table:
			writeTable(sb, o)
		}
	}
}

func writeTable(sb *strings.Builder, t *docx.Table) {
	for _, row := range t.TableRows {
		for _, cell := range row.TableCells {
			for _, p := range cell.Paragraphs {
				sb.WriteString(p.String())
				sb.WriteByte('\n')
			}
			for _, nested := range cell.Tables {
				writeTable(sb, nested)
			}
		}
	}
}

// EncodeDocument writes records as a .docx in block-text layout, one marker
// line per paragraph.
func EncodeDocument(records []QuestionRecord) ([]byte, error) {
	doc := docx.New().WithDefaultTheme()
	for _, line := range strings.Split(strings.TrimRight(EncodeBlockText(records), "\n"), "\n") {
		p := doc.AddParagraph()
		if line != "" {
			p.AddText(line)
		}
	}
	doc.WithA4Page()

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}
	return buf.Bytes(), nil
}
