package core

// error_messages.go maps technical errors to user-facing messages with codes
// that users can quote to support.
//
// # Classification Errors (HSC001-HSC099)
//
//	HSC001 - Classification unavailable: the model call failed or its answer
//	         held no code. No distinction is made between timeouts, transport
//	         failures and malformed answers.
//	         Action: Please try again in a few moments
//	         Patterns: "classification unavailable"
//
//	HSC002 - Description required
//	         Patterns: "description is required"
//
//	HSC003 - Question required
//	         Patterns: "question is required"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large          Patterns: "file too large", "request body too large"
//	FILE002 - Invalid file type       Patterns: "invalid file type"
//	FILE003 - No file                 Patterns: "no file provided"
//	FILE004 - Empty workbook          Patterns: "empty workbook"
//	FILE005 - Unreadable workbook     Patterns: "unreadable workbook"
//
// # Batch Errors (BAT001-BAT099)
//
//	BAT001 - System busy              Patterns: "too many concurrent batches"
//	BAT002 - Too many rows            Patterns: "too many rows"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Invalid request body     Patterns: "invalid request"
//	REQ002 - Request cancelled        Patterns: "context canceled"
//	REQ003 - Request timed out        Patterns: "context deadline exceeded"
//	REQ004 - Request body too large   Patterns: "request too large"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests       Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the logs (by request_id) for the
// original error.
//
// Patterns are matched case-insensitively with strings.Contains; the first
// match wins, so specific patterns go before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Classification
	{
		pattern: "classification unavailable",
		msg: UserMessage{
			Message: "Failed to retrieve HSC code",
			Action:  "Please try again in a few moments",
			Code:    "HSC001",
		},
	},
	{
		pattern: "description is required",
		msg: UserMessage{
			Message: "Description is required",
			Action:  "Enter a product description",
			Code:    "HSC002",
		},
	},
	{
		pattern: "question is required",
		msg: UserMessage{
			Message: "Question is required",
			Action:  "Type a question about the table",
			Code:    "HSC003",
		},
	},

	// Checked before the file patterns: oversized JSON bodies also carry the
	// "request body too large" text of http.MaxBytesError.
	{
		pattern: "request too large",
		msg: UserMessage{
			Message: "Request is too large",
			Action:  "Send fewer descriptions per request",
			Code:    "REQ004",
		},
	},

	// Files
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the workbook into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the workbook into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid file type",
		msg: UserMessage{
			Message: "Invalid file type. Only .xlsx files are supported.",
			Action:  "Save the spreadsheet as an Excel workbook (.xlsx)",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select an .xlsx file to upload",
			Code:    "FILE003",
		},
	},
	{
		pattern: "empty workbook",
		msg: UserMessage{
			Message: "The uploaded workbook has no rows",
			Action:  "Add a header row with a Description column and at least one product",
			Code:    "FILE004",
		},
	},
	{
		pattern: "unreadable workbook",
		msg: UserMessage{
			Message: "Failed to process Excel file",
			Action:  "Re-save the file in Excel and upload it again",
			Code:    "FILE005",
		},
	},

	// Batches
	{
		pattern: "too many concurrent batches",
		msg: UserMessage{
			Message: "System is busy processing other batches",
			Action:  "Please wait a moment and try again",
			Code:    "BAT001",
		},
	},
	{
		pattern: "too many rows",
		msg: UserMessage{
			Message: "The batch has too many rows",
			Action:  "Split the products into smaller batches",
			Code:    "BAT002",
		},
	},

	// Requests
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "The request could not be understood",
			Action:  "Check the request body format",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller batch or try again later",
			Code:    "REQ003",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// The first matching pattern wins; unknown errors map to ERR000.
//
//	msg := MapError(fmt.Errorf("%w: %w", ErrOracleUnavailable, io.ErrUnexpectedEOF))
//	// msg.Code == "HSC001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action" for display.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
