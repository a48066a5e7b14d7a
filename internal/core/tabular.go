package core

// ExpectedSpreadsheetHeader is the exact header row a spreadsheet must start with.
var ExpectedSpreadsheetHeader = []string{"Question", "Option1", "Option2", "Option3", "Option4", "Answer"}

// ParseTabular validates a cell grid whose first row is the header.
// It uses the default Rules.
func ParseTabular(rows [][]string) (*Batch, error) {
	return Rules{}.ParseTabular(rows)
}

// ParseTabular validates a cell grid whose first row is the header.
//
// The header must match ExpectedSpreadsheetHeader exactly, including order
// and case. Data row i (0-based) is reported as display row i+2. A blank row
// between data rows is a row with every field missing; blank rows after the
// last data row are ignored.
func (r Rules) ParseTabular(rows [][]string) (*Batch, error) {
	if len(rows) == 0 || !headerMatches(rows[0], ExpectedSpreadsheetHeader) {
		return nil, newImportError(KindHeaderMismatch, nil, "The file headers do not match the expected format")
	}

	data := rows[1:]
	for len(data) > 0 && isEmptyRow(data[len(data)-1]) {
		data = data[:len(data)-1]
	}

	batch := &Batch{}
	for i, row := range data {
		c := Candidate{
			Question: cellAt(row, 0),
			Option1:  cellAt(row, 1),
			Option2:  cellAt(row, 2),
			Option3:  cellAt(row, 3),
			Option4:  cellAt(row, 4),
			Answer:   cellAt(row, 5),
		}

		if missing := r.Check(c, SpreadsheetLabels); len(missing) > 0 {
			batch.Errors = append(batch.Errors, FieldError{
				Row:     i + 2,
				Fields:  missing,
				Message: "Missing fields",
			})
			continue
		}

		batch.Records = append(batch.Records, newRecord(c))
	}

	return batch.gate(), nil
}

func headerMatches(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// parseSpreadsheet is the registered ParseFunc for spreadsheets.
func parseSpreadsheet(data []byte, rules Rules) (*Batch, error) {
	rows, err := DecodeSpreadsheet(data)
	if err != nil {
		return nil, err
	}
	batch, err := rules.ParseTabular(rows)
	if err != nil {
		return nil, err
	}
	if !batch.Valid() {
		return batch, fieldFailure(batch, "Import failed! Missing fields")
	}
	return batch, nil
}

// fieldFailure wraps a failed batch's errors in a KindField ImportError.
func fieldFailure(b *Batch, msg string) error {
	return &ImportError{
		Kind:    KindField,
		Message: msg,
		Fields:  b.Errors,
	}
}
