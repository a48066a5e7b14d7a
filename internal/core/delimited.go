package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// ParseDelimited parses header-keyed CSV using the default Rules.
func ParseDelimited(data []byte) (*Batch, error) {
	return Rules{}.ParseDelimited(data)
}

// ParseDelimited parses header-keyed CSV. The header row names the columns
// (question, option1..option4, answer; exact case) and may list them in any
// order or add extra columns. Rows are numbered from 1 after the header;
// blank lines and rows with only empty cells are skipped and not counted.
func (r Rules) ParseDelimited(data []byte) (*Batch, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, newImportError(KindParse, nil, "Error parsing CSV file: empty file")
	}

	reader := csv.NewReader(NewBOMSkippingReader(bytes.NewReader(sanitizeUTF8(data))))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, csvError(err)
	}
	idx := MakeHeaderIndex(header)

	batch := &Batch{}
	n := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		if isEmptyRow(row) {
			continue
		}
		n++

		c := Candidate{
			Question: field(row, idx, DelimitedLabels[slotQuestion]),
			Option1:  field(row, idx, DelimitedLabels[slotOption1]),
			Option2:  field(row, idx, DelimitedLabels[slotOption2]),
			Option3:  field(row, idx, DelimitedLabels[slotOption3]),
			Option4:  field(row, idx, DelimitedLabels[slotOption4]),
			Answer:   field(row, idx, DelimitedLabels[slotAnswer]),
		}

		if missing := r.Check(c, DelimitedLabels); len(missing) > 0 {
			batch.Errors = append(batch.Errors, FieldError{
				Row:     n,
				Fields:  missing,
				Message: "Missing fields",
			})
			continue
		}

		batch.Records = append(batch.Records, newRecord(c))
	}

	return batch.gate(), nil
}

// field returns the cell under the named column, or "" when the column is
// absent from the header or the row is short.
func field(row []string, idx HeaderIndex, name string) string {
	pos, ok := idx[name]
	if !ok {
		return ""
	}
	return cellAt(row, pos)
}

func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return newImportError(KindParse, err, "Error parsing CSV file at line %d", pe.Line)
	}
	return newImportError(KindParse, err, "Error parsing CSV file")
}

// parseDelimitedText is the registered ParseFunc for delimited text.
func parseDelimitedText(data []byte, rules Rules) (*Batch, error) {
	batch, err := rules.ParseDelimited(data)
	if err != nil {
		return nil, err
	}
	if !batch.Valid() {
		return batch, fieldFailure(batch, "Import failed! Missing fields")
	}
	return batch, nil
}

// EncodeDelimited writes records as CSV with the delimited header row.
func EncodeDelimited(records []QuestionRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(DelimitedLabels[:]); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		row := []string{rec.Question, rec.Option1, rec.Option2, rec.Option3, rec.Option4, strconv.Itoa(rec.Answer)}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
