// Package core provides the migration engine.
//
// # Error Codes Reference
//
// This file maps technical failures to short messages with a code, logged next
// to the original error so an operator can tell at a glance what went wrong
// and what to do.
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Source unreadable: the SQLite file or a query failed
//	         Action: Check SQLITE_PATH and that the file is a movies database
//
// # Transform Errors (TRN001-TRN099)
//
//	TRN001 - Invalid value: a column could not be converted to its destination type
//	         Action: Fix the source row or set MIGRATE_SKIP_INVALID_ROWS=true
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Foreign key: a referenced row does not exist yet
//	        Action: Load parent tables first; re-run the full migration
//	        SQLSTATE 23503
//
//	DB002 - Unique constraint: a natural key already exists under another id
//	        Action: Compare the conflicting rows in both stores
//	        SQLSTATE 23505
//
//	DB003 - Constraint: a value was rejected by a NOT NULL or CHECK constraint
//	        Action: Check the destination schema against the source data
//	        SQLSTATE 23502, 23514, 22P02
//
//	DB004 - Connection: unable to reach PostgreSQL
//	        Action: Check POSTGRES_HOST/POSTGRES_PORT and credentials
//	        SQLSTATE class 08, 28; pattern "connection refused"
//
//	DB005 - Timeout: a statement took longer than allowed
//	        Action: Lower MIGRATE_BATCH_SIZE or raise MIGRATE_BATCH_TIMEOUT
//	        SQLSTATE 57014; pattern "deadline exceeded"
//
//	DB006 - Missing table: the destination schema is not provisioned
//	        Action: Apply the schema migrations before running the import
//	        SQLSTATE 42P01, 3F000
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - Cancelled: the run was stopped between batches
//	         Action: Re-run; committed batches are skipped automatically
//
// # Verification (VER001)
//
//	VER001 - Mismatch: source and destination disagree
//	         Action: Inspect the reported rows; re-run the migration if rows are missing
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: see the logged technical error
package core

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// UserMessage provides readable error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// sqlStateMessages maps PostgreSQL SQLSTATE codes to messages.
var sqlStateMessages = map[string]UserMessage{
	"23503": {Message: "Referenced row does not exist", Action: "Load parent tables first; re-run the full migration", Code: "DB001"},
	"23505": {Message: "A unique value already exists under another id", Action: "Compare the conflicting rows in both stores", Code: "DB002"},
	"23502": {Message: "A required column was NULL", Action: "Check the destination schema against the source data", Code: "DB003"},
	"23514": {Message: "A value violates a check constraint", Action: "Check the destination schema against the source data", Code: "DB003"},
	"22P02": {Message: "A value has an invalid text representation", Action: "Check the destination schema against the source data", Code: "DB003"},
	"57014": {Message: "Statement timed out", Action: "Lower MIGRATE_BATCH_SIZE or raise MIGRATE_BATCH_TIMEOUT", Code: "DB005"},
	"42P01": {Message: "Destination table does not exist", Action: "Apply the schema migrations before running the import", Code: "DB006"},
	"3F000": {Message: "Destination schema does not exist", Action: "Apply the schema migrations before running the import", Code: "DB006"},
}

// sqlStateClassMessages maps the two-character SQLSTATE class.
var sqlStateClassMessages = map[string]UserMessage{
	"08": {Message: "Unable to connect to database", Action: "Check POSTGRES_HOST/POSTGRES_PORT and credentials", Code: "DB004"},
	"28": {Message: "Database rejected the credentials", Action: "Check POSTGRES_USER and POSTGRES_PASSWORD", Code: "DB004"},
}

// errorPattern defines a pattern to match and its corresponding message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns are matched case-insensitively with strings.Contains for
// errors that carry no SQLSTATE. The first match wins.
var errorPatterns = []errorPattern{
	{
		pattern: "connection refused",
		msg:     UserMessage{Message: "Unable to connect to database", Action: "Check POSTGRES_HOST/POSTGRES_PORT and credentials", Code: "DB004"},
	},
	{
		pattern: "connection reset",
		msg:     UserMessage{Message: "Database connection was interrupted", Action: "Re-run; committed batches are skipped automatically", Code: "DB004"},
	},
	{
		pattern: "no such table",
		msg:     UserMessage{Message: "Source table does not exist", Action: "Check SQLITE_PATH and that the file is a movies database", Code: "SRC001"},
	},
}

var (
	msgSource    = UserMessage{Message: "Source store could not be read", Action: "Check SQLITE_PATH and that the file is a movies database", Code: "SRC001"}
	msgTransform = UserMessage{Message: "A source value could not be converted", Action: "Fix the source row or set MIGRATE_SKIP_INVALID_ROWS=true", Code: "TRN001"}
	msgTimeout   = UserMessage{Message: "Operation timed out", Action: "Lower MIGRATE_BATCH_SIZE or raise MIGRATE_BATCH_TIMEOUT", Code: "DB005"}
	msgCancelled = UserMessage{Message: "Run was cancelled", Action: "Re-run; committed batches are skipped automatically", Code: "RUN001"}
	msgMismatch  = UserMessage{Message: "Source and destination disagree", Action: "Inspect the reported rows; re-run the migration if rows are missing", Code: "VER001"}
	msgDefault   = UserMessage{Message: "An unexpected error occurred", Action: "See the logged technical error", Code: "ERR000"}
)

// Describe maps an error to a UserMessage.
// SQLSTATE codes win over the error's position in the taxonomy, so a foreign
// key violation inside a DestinationWriteError reports DB001.
func Describe(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if msg, ok := sqlStateMessages[pgErr.Code]; ok {
			return msg
		}
		if len(pgErr.Code) >= 2 {
			if msg, ok := sqlStateClassMessages[pgErr.Code[:2]]; ok {
				return msg
			}
		}
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return msgTimeout
	case errors.Is(err, context.Canceled):
		return msgCancelled
	case errors.Is(err, ErrVerificationFailed):
		return msgMismatch
	}

	var transformErr *TransformError
	if errors.As(err, &transformErr) {
		return msgTransform
	}

	errLower := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(errLower, p.pattern) {
			return p.msg
		}
	}

	var sourceErr *SourceReadError
	if errors.As(err, &sourceErr) {
		return msgSource
	}

	return msgDefault
}
