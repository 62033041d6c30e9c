// Package core provides the business logic for spreadsheet-to-config sync operations.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// Operators can quote the code when reporting a failed run.
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Sheet unavailable: The sheet tab could not be read
//	         Action: Check the spreadsheet id, tab name and credentials
//	         Patterns: "sheet source unavailable"
//
//	SRC002 - Worksheet missing: The tab does not exist in the workbook
//	         Action: Rename the tab or update the kind's table name
//	         Patterns: "worksheet not found", "no such table"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid machine name
//	         Action: Use lower-case letters, digits and underscores
//	         Patterns: "invalid machine name"
//
//	VAL002 - Required field: Required field is empty
//	         Action: Fill in the column on the sheet
//	         Patterns: "required field"
//
//	VAL003 - Unparseable summary: Image effect summary not understood
//	         Action: Use "800×600" or "Width 800 Height 600"
//	         Patterns: "unparseable summary"
//
//	VAL004 - Unsupported field type
//	         Action: Use one of the supported field types
//	         Patterns: "unsupported field type"
//
//	VAL005 - Unknown state: Workflow transition references an unknown state
//	         Action: Add the state to the states tab of the same workflow
//	         Patterns: "unknown from state", "unknown to state"
//
// # Store Errors (STO001-STO099)
//
//	STO001 - Already exists: An entity with this id already exists
//	         Action: Flag the row for update instead of create
//	         Patterns: "already exists", "duplicate key"
//
//	STO002 - Not found: Entity to update does not exist
//	         Action: Flag the row for create
//	         Patterns: "entity not found"
//
//	STO003 - Store unavailable: Unable to reach the entity store
//	         Action: Please try again in a few moments
//	         Patterns: "connection refused", "connection reset"
//
//	STO004 - Timeout: Operation timed out
//	         Action: Try again later
//	         Patterns: "timeout", "context deadline exceeded"
//
// # Configuration Errors (CFG001-CFG099)
//
//	CFG001 - Configuration missing: A required setting is not set
//	         Action: Set the variable in the environment or .env file
//	         Patterns: "configuration missing"
//
//	KND001 - Unknown kind: The entity kind is not registered
//	         Action: Run "specsync kinds" for the list of kinds
//	         Patterns: "unknown kind"
//
//	RUN001 - Run in progress: Another sync run holds the store
//	         Action: Wait for the active run to finish and retry
//	         Patterns: "too many concurrent sync runs"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Check the log for the technical error
//
// Patterns are matched case-insensitively using strings.Contains. The first
// matching pattern wins, so more specific patterns come first.
package core

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

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Source Errors (SRC001-SRC002)
	// =========================================================================
	{
		pattern: "worksheet not found",
		msg: UserMessage{
			Message: "Sheet tab does not exist",
			Action:  "Rename the tab or update the kind's table name",
			Code:    "SRC002",
		},
	},
	{
		pattern: "no such table",
		msg: UserMessage{
			Message: "Sheet tab does not exist",
			Action:  "Rename the tab or update the kind's table name",
			Code:    "SRC002",
		},
	},
	{
		pattern: "sheet source unavailable",
		msg: UserMessage{
			Message: "The sheet could not be read",
			Action:  "Check the spreadsheet id, tab name and credentials",
			Code:    "SRC001",
		},
	},

	// =========================================================================
	// Validation Errors (VAL001-VAL005)
	// =========================================================================
	{
		pattern: "invalid machine name",
		msg: UserMessage{
			Message: "Invalid machine name",
			Action:  "Use lower-case letters, digits and underscores, not starting with a digit",
			Code:    "VAL001",
		},
	},
	{
		pattern: "required field",
		msg: UserMessage{
			Message: "Required field is empty",
			Action:  "Fill in the column on the sheet",
			Code:    "VAL002",
		},
	},
	{
		pattern: "unparseable summary",
		msg: UserMessage{
			Message: "Image effect summary not understood",
			Action:  `Use "800×600" or "Width 800 Height 600"`,
			Code:    "VAL003",
		},
	},
	{
		pattern: "unsupported field type",
		msg: UserMessage{
			Message: "Unsupported field type",
			Action:  "Use one of the supported field types",
			Code:    "VAL004",
		},
	},
	{
		pattern: "unknown from state",
		msg: UserMessage{
			Message: "Transition references an unknown state",
			Action:  "Add the state to the states tab of the same workflow",
			Code:    "VAL005",
		},
	},
	{
		pattern: "unknown to state",
		msg: UserMessage{
			Message: "Transition references an unknown state",
			Action:  "Add the state to the states tab of the same workflow",
			Code:    "VAL005",
		},
	},

	// =========================================================================
	// Store Errors (STO001-STO004)
	// =========================================================================
	{
		pattern: "already exists",
		msg: UserMessage{
			Message: "An entity with this id already exists",
			Action:  "Flag the row for update instead of create",
			Code:    "STO001",
		},
	},
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "An entity with this id already exists",
			Action:  "Flag the row for update instead of create",
			Code:    "STO001",
		},
	},
	{
		pattern: "entity not found",
		msg: UserMessage{
			Message: "Entity to update does not exist",
			Action:  "Flag the row for create",
			Code:    "STO002",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to reach the entity store",
			Action:  "Please try again in a few moments",
			Code:    "STO003",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Entity store connection was interrupted",
			Action:  "Please try again",
			Code:    "STO003",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try again later",
			Code:    "STO004",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try again later",
			Code:    "STO004",
		},
	},

	// =========================================================================
	// Configuration Errors (CFG001, KND001)
	// =========================================================================
	{
		pattern: "configuration missing",
		msg: UserMessage{
			Message: "A required setting is not configured",
			Action:  "Set the variable in the environment or .env file",
			Code:    "CFG001",
		},
	},
	{
		pattern: "unknown kind",
		msg: UserMessage{
			Message: "Unknown entity kind",
			Action:  `Run "specsync kinds" for the list of kinds`,
			Code:    "KND001",
		},
	},
	{
		pattern: "too many concurrent sync runs",
		msg: UserMessage{
			Message: "Another sync run is in progress",
			Action:  "Wait for the active run to finish and retry",
			Code:    "RUN001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the log for the technical error",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	return mapMessage(err.Error())
}

// MapReason maps an outcome reason the same way MapError maps errors.
func MapReason(reason string) UserMessage {
	if reason == "" {
		return UserMessage{}
	}
	return mapMessage(reason)
}

func mapMessage(text string) UserMessage {
	lower := strings.ToLower(text)
	for _, ep := range errorPatterns {
		if strings.Contains(lower, ep.pattern) {
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

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
