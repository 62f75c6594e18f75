package ingest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/borderops/ingestor/internal/fileparse"
)

// UserMessage is a user-friendly rendering of an error, with an actionable
// hint and a code support staff can reference.
type UserMessage struct {
	Code    string
	Message string
	Action  string
}

var defaultMessage = UserMessage{
	Code:    "ERR000",
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
}

type pattern struct {
	substr string
	msg    UserMessage
}

// patterns maps substrings of a technical error's text (checked
// case-insensitively) to a user message. Order matters: more specific
// patterns come first.
var patterns = []pattern{
	{"duplicate key", UserMessage{"STORE001", "A file with this content already exists", "No action needed; the existing file was reused"}},
	{"unique constraint", UserMessage{"TPL001", "A template with this ID already exists", "Choose a different template_id or edit the existing template"}},
	{"connection refused", UserMessage{"DB001", "Unable to reach the database", "Please try again in a few moments"}},
	{"connection reset", UserMessage{"DB002", "Database connection was interrupted", "Please try again"}},
	{"context deadline exceeded", UserMessage{"DB003", "The operation timed out", "Try again or reduce the file size"}},
}

// MapError converts a technical error into a user-facing message, dispatching
// on the §7 error kinds before falling back to substring matching on wrapped
// database errors, then the generic fallback.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var parseErr *fileparse.ParseError
	var storageErr *StorageError
	var authErr *AuthError
	var connectErr *ConnectError
	var configErr *ConfigError

	switch {
	case errors.As(err, &parseErr):
		return UserMessage{"FILE001", "The file could not be decoded", "Verify it is a valid .csv, .xlsx, or .xls file"}
	case errors.As(err, &storageErr):
		return UserMessage{"STORE002", "The file could not be stored", "Please try the upload again"}
	case errors.As(err, &authErr):
		return UserMessage{"MAILBOX001", "Mailbox authentication failed", "Check the configured IMAP credentials"}
	case errors.As(err, &connectErr):
		return UserMessage{"MAILBOX002", "Could not reach the mail server", "Check the configured IMAP host and port"}
	case errors.As(err, &configErr):
		return UserMessage{"CFG001", "Configuration is invalid", "Fix the reported setting and restart"}
	case errors.Is(err, ErrNotFound):
		return UserMessage{"NF001", "The requested record was not found", "Verify the id and try again"}
	case errors.Is(err, ErrTemplateConflict):
		return UserMessage{"TPL001", "A template with this ID already exists", "Choose a different template_id or edit the existing template"}
	case errors.Is(err, pgx.ErrNoRows):
		return UserMessage{"NF001", "The requested record was not found", "Verify the id and try again"}
	}

	errStr := strings.ToLower(err.Error())
	for _, p := range patterns {
		if strings.Contains(errStr, p.substr) {
			return p.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
