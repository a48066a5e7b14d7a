package core

func init() {
	RegisterBuiltins()
}

// RegisterBuiltins registers the spreadsheet, document and delimited formats.
func RegisterBuiltins() {
	Register(FormatDefinition{
		Format:      FormatSpreadsheet,
		Kind:        KindSpreadsheetImport,
		Label:       "Excel workbook",
		Extensions:  []string{".xlsx", ".xls"},
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Parse:       parseSpreadsheet,
		Template:    func() ([]byte, error) { return EncodeSpreadsheet(SampleQuestions) },
	})

	Register(FormatDefinition{
		Format:      FormatDocument,
		Kind:        KindDocumentImport,
		Label:       "Word document",
		Extensions:  []string{".docx"},
		ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		Parse:       parseDocument,
		Template:    func() ([]byte, error) { return EncodeDocument(SampleQuestions) },
	})

	Register(FormatDefinition{
		Format:      FormatDelimited,
		Kind:        KindDelimitedImport,
		Label:       "CSV file",
		Extensions:  []string{".csv"},
		ContentType: "text/csv",
		Parse:       parseDelimitedText,
		Template:    func() ([]byte, error) { return EncodeDelimited(SampleQuestions) },
	})
}
