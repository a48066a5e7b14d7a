// Package core provides the business logic for quiz question imports.
//
// It has no transport dependencies and is used by the web server, the CLI
// and tests alike.
//
// # Formats
//
// Each importable format is registered with [Register] and found by file
// extension with [DetectFormat]:
//
//   - spreadsheet (.xlsx, .xls): first sheet, fixed header row, see [ParseTabular]
//   - structured-document (.docx): marker lines such as "Question:", see [ParseBlockText]
//   - delimited-text (.csv): header-keyed columns, see [ParseDelimited]
//
// Every parser returns a [Batch]. A batch with any [FieldError] carries no
// records: imports are all or nothing.
//
// # Importing
//
// [Service.Import] detects the format, reads the [Source], parses it and
// hands a [Commit] to the [Sink] only when every row passed. Failures are
// reported through the [Notifier] and returned as an [*ImportError] whose
// kind says why nothing was committed. Imports that share a session
// supersede each other: only the newest one may commit.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]. Each
// category has a code for support reference (IMP, HDR, VAL, FILE, UPL, DB,
// RATE).
package core
