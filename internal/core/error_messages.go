package core

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// Errors produced by this module are matched by identity (errors.Is); driver
// errors are matched by pattern.
//
// # Mapping Errors (MAP001-MAP099)
//
//	MAP001 - Missing column: the query does not return a column the target needs
//	MAP002 - Conversion: a column value does not fit the target field
//	MAP003 - Enum: a value is not one of the field's symbolic names
//	MAP004 - Document: an embedded JSON column could not be decoded
//	MAP005 - Row count: a single-row query returned zero or several rows
//	MAP006 - Group key: the grouping field is missing or unusable
//	MAP007 - Target: the target type cannot be mapped
//	MAP008 - No rows: a single-row query matched nothing
//
// # Query Errors (QRY001-QRY099)
//
//	QRY001 - Query not found: no query is registered under the key
//	QRY002 - Arguments: wrong number of arguments or an unparsable argument
//	QRY003 - Definition: the query definition is invalid
//	QRY004 - Busy: no query slot freed up in time
//
// # Database Errors (DB004-DB099)
//
//	DB004 - Connection refused      Patterns: "connection refused"
//	DB005 - Connection reset        Patterns: "connection reset"
//	DB006 - Timeout                 Patterns: "timeout", context.DeadlineExceeded
//	DB007 - Deadlock                Patterns: "deadlock"
//	DB008 - SQL error               Patterns: "syntax error", "no such table", "does not exist"
//
// # Request Errors (REQ001)
//
//	REQ001 - Request cancelled      context.Canceled
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check application logs for the original error.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/rowmap/internal/mapper"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorTarget maps a sentinel error to a user message.
type errorTarget struct {
	target error
	msg    UserMessage
}

// errorTargets are checked first, in order, with errors.Is.
var errorTargets = []errorTarget{
	{mapper.ErrMissingColumn, UserMessage{
		Message: "The query result is missing a column the report needs",
		Action:  "Check the column aliases in the query against the target fields",
		Code:    "MAP001",
	}},
	{mapper.ErrConvert, UserMessage{
		Message: "A value in the result has an unexpected type",
		Action:  "Cast the column in the query to the type of the target field",
		Code:    "MAP002",
	}},
	{mapper.ErrEnum, UserMessage{
		Message: "A value is not in the allowed list",
		Action:  "Check the allowed values for this field",
		Code:    "MAP003",
	}},
	{mapper.ErrDecode, UserMessage{
		Message: "A JSON column could not be read",
		Action:  "Make sure the column holds a valid JSON document",
		Code:    "MAP004",
	}},
	{mapper.ErrNoRows, UserMessage{
		Message: "No matching row was found",
		Action:  "Check the arguments",
		Code:    "MAP008",
	}},
	{mapper.ErrRowCount, UserMessage{
		Message: "The query was expected to return exactly one row",
		Action:  "Check the arguments or narrow the query",
		Code:    "MAP005",
	}},
	{mapper.ErrKeyField, UserMessage{
		Message: "The rows could not be grouped",
		Action:  "Check the group_by field of the query definition",
		Code:    "MAP006",
	}},
	{mapper.ErrTarget, UserMessage{
		Message: "The report type cannot be filled from a query",
		Action:  "Check the struct tags of the target type",
		Code:    "MAP007",
	}},
	{ErrQueryNotFound, UserMessage{
		Message: "Query not found",
		Action:  "List the available queries and check the key",
		Code:    "QRY001",
	}},
	{ErrArgCount, UserMessage{
		Message: "Wrong number of arguments",
		Action:  "Pass one value for each parameter of the query",
		Code:    "QRY002",
	}},
	{ErrInvalidArg, UserMessage{
		Message: "An argument could not be read",
		Action:  "Use YYYY-MM-DD for dates and plain numbers for amounts",
		Code:    "QRY002",
	}},
	{ErrInvalidDefinition, UserMessage{
		Message: "The query definition is invalid",
		Action:  "Fix the query definition file and restart",
		Code:    "QRY003",
	}},
	{ErrBusy, UserMessage{
		Message: "The server is busy running other queries",
		Action:  "Wait a moment and try again",
		Code:    "QRY004",
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "Operation timed out",
		Action:  "Narrow the query or try again later",
		Code:    "DB006",
	}},
	{context.Canceled, UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "REQ001",
	}},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps driver error text (case-insensitive) to user messages.
// The first matching pattern wins, so more specific patterns come first.
var errorPatterns = []errorPattern{
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Narrow the query or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
	{
		pattern: "syntax error",
		msg: UserMessage{
			Message: "The query could not be executed",
			Action:  "Check the SQL of the query definition",
			Code:    "DB008",
		},
	},
	{
		pattern: "no such table",
		msg: UserMessage{
			Message: "The query could not be executed",
			Action:  "Check the SQL of the query definition",
			Code:    "DB008",
		},
	},
	{
		pattern: "does not exist",
		msg: UserMessage{
			Message: "The query could not be executed",
			Action:  "Check the SQL of the query definition",
			Code:    "DB008",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	_, err := svc.Run(ctx, "ar_aging")
//	msg := MapError(err)
//	// msg.Code == "MAP001" when a column alias is wrong
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, et := range errorTargets {
		if errors.Is(err, et.target) {
			return et.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
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
