package core

// error_messages.go maps technical errors to user-facing messages with a
// code support staff can look up.
//
// Codes by category:
//
//	IMP001       unsupported file type
//	HDR001       spreadsheet header mismatch
//	VAL001       rows or questions with missing fields
//	FILE001-007  file size, structure, encoding and content problems
//	UPL001-005   busy, superseded, cancelled and timed-out imports
//	DB001-007    store constraint, connection and write problems
//	RATE001      request throttling
//	ERR000       anything else; check the logs for the technical error
//
// An *ImportError is mapped by its kind first. Everything else is matched
// case-insensitively against errorPatterns, first match wins.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Support reference
}

var kindMessages = map[ErrorKind]UserMessage{
	KindUnsupportedFormat: {
		Message: "Unsupported file type",
		Action:  "Upload an .xlsx, .docx or .csv file",
		Code:    "IMP001",
	},
	KindHeaderMismatch: {
		Message: "The file headers do not match the expected format",
		Action:  "Use the header row Question, Option1, Option2, Option3, Option4, Answer",
		Code:    "HDR001",
	},
	KindField: {
		Message: "Import failed! Missing fields",
		Action:  "Fill in every question, option and a numeric answer",
		Code:    "VAL001",
	},
	KindStale: {
		Message: "A newer import replaced this one",
		Action:  "No action needed",
		Code:    "UPL002",
	},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is ordered: specific patterns before general ones.
var errorPatterns = []errorPattern{
	// Store constraint errors
	{"duplicate key", UserMessage{"A question with this ID already exists", "Import the file into a new quiz or remove the duplicates", "DB001"}},
	{"violates unique", UserMessage{"A duplicate value was found", "Review the file for repeated questions", "DB002"}},
	{"violates foreign key", UserMessage{"The target quiz does not exist", "Create the quiz before importing questions", "DB003"}},

	// Store connection errors
	{"connection refused", UserMessage{"Unable to connect to database", "Please try again in a few moments", "DB004"}},
	{"connection reset", UserMessage{"Database connection was interrupted", "Please try again", "DB005"}},
	{"deadlock", UserMessage{"Database was busy with conflicting operations", "Please try again", "DB007"}},

	// File errors
	{"file too large", UserMessage{"File exceeds the maximum size limit", "Split the questions across smaller files", "FILE001"}},
	{"encoding error", UserMessage{"File contains invalid characters", "Save the file as UTF-8", "FILE003"}},
	{"empty file", UserMessage{"The uploaded file is empty", "Add at least one question", "FILE004"}},
	{"no file provided", UserMessage{"No file was selected", "Choose a file to import", "FILE005"}},

	// Import process errors
	{"too many concurrent imports", UserMessage{"System is busy processing other imports", "Please wait a moment and try again", "UPL001"}},
	{"context canceled", UserMessage{"Import was cancelled", "Please try again", "UPL003"}},
	{"context deadline exceeded", UserMessage{"Import timed out", "Try a smaller file or check your connection", "UPL004"}},
	{"timeout", UserMessage{"Operation timed out", "Please try again later", "UPL005"}},

	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
}

// kindFallbacks apply when a parse, I/O or store error matched no pattern.
var kindFallbacks = map[ErrorKind]UserMessage{
	KindParse: {"The file could not be read", "Download the example file and compare its layout", "FILE002"},
	KindIO:    {"The file could not be read", "Select the file again", "FILE006"},
	KindStore: {"The questions could not be saved", "Please try again or contact support", "DB006"},
}

// defaultMessage is returned when nothing matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	msg := MapError(&ImportError{Kind: KindHeaderMismatch})
//	// msg.Code == "HDR001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	if msg, ok := kindMessages[KindOf(err)]; ok {
		return msg
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	if msg, ok := kindFallbacks[KindOf(err)]; ok {
		return msg
	}
	return defaultMessage
}

// FormatUserError creates a display string: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something other than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// alertMessage is the toast text for a failed import.
func alertMessage(err error) string {
	var ie *ImportError
	if errors.As(err, &ie) {
		switch ie.Kind {
		case KindField, KindHeaderMismatch:
			if ie.Message != "" {
				return ie.Message
			}
		case KindParse:
			if strings.HasPrefix(ie.Message, "Error parsing CSV file") {
				return "Error parsing CSV file. Please try again."
			}
		}
	}
	return MapError(err).Message
}
