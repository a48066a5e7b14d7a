package core

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// DecodeSpreadsheet reads the first sheet of an .xlsx workbook into a cell grid.
// Cells hold their displayed text. Legacy binary workbooks (.xls) cannot be
// decoded and are reported as parse errors.
func DecodeSpreadsheet(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, newImportError(KindParse, err, "Unable to read spreadsheet")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, newImportError(KindParse, nil, "Spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, newImportError(KindParse, err, "Unable to read sheet %q", sheets[0])
	}
	return rows, nil
}

// EncodeSpreadsheet writes records to a single-sheet workbook with the
// expected header row.
func EncodeSpreadsheet(records []QuestionRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	header := make([]interface{}, len(ExpectedSpreadsheetHeader))
	for i, h := range ExpectedSpreadsheetHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		row := []interface{}{rec.Question, rec.Option1, rec.Option2, rec.Option3, rec.Option4, rec.Answer}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
