package core

import (
	"errors"
	"fmt"
)

// ErrVerificationFailed is returned by Report.Err when mismatches were found.
var ErrVerificationFailed = errors.New("verification failed")

// ErrUnknownTable is returned when a kind has no catalog entry.
var ErrUnknownTable = errors.New("unknown table")

// SourceReadError reports that the SQLite store could not be read.
// It is fatal for the affected table only.
type SourceReadError struct {
	Table EntityKind // empty when the store itself could not be opened
	Batch int // -1 when the query itself failed
	Err   error
}

func (e *SourceReadError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("source: %v", e.Err)
	}
	if e.Batch < 0 {
		return fmt.Sprintf("source read %s: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("source read %s batch %d: %v", e.Table, e.Batch, e.Err)
}

func (e *SourceReadError) Unwrap() error { return e.Err }

// TransformError reports a value that cannot be coerced to its column type.
type TransformError struct {
	Table  EntityKind
	Batch  int // -1 outside a migration batch
	Column string
	Value  any
	Row    Row
	Err    error
}

func (e *TransformError) Error() string {
	if e.Batch < 0 {
		return fmt.Sprintf("transform %s.%s value %v: %v", e.Table, e.Column, e.Value, e.Err)
	}
	return fmt.Sprintf("transform %s.%s (batch %d) value %v: %v", e.Table, e.Column, e.Batch, e.Value, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// DestinationWriteError reports that PostgreSQL rejected a batch for a reason
// other than an existing primary key. The batch transaction was rolled back.
type DestinationWriteError struct {
	Table EntityKind
	Batch int
	Rows  int
	Err   error
}

func (e *DestinationWriteError) Error() string {
	return fmt.Sprintf("destination write %s batch %d (%d rows): %v", e.Table, e.Batch, e.Rows, e.Err)
}

func (e *DestinationWriteError) Unwrap() error { return e.Err }

// MismatchKind classifies a verification discrepancy.
type MismatchKind string

const (
	MismatchCount   MismatchKind = "count"
	MismatchMissing MismatchKind = "missing"
	MismatchValue   MismatchKind = "value"
	MismatchInvalid MismatchKind = "invalid"
)

// VerificationMismatch is one reported discrepancy between the stores.
// It is a finding, not an error.
type VerificationMismatch struct {
	Table       EntityKind   `json:"table"`
	Kind        MismatchKind `json:"kind"`
	Key         string       `json:"key,omitempty"`
	Column      string       `json:"column,omitempty"`
	Source      string       `json:"source"`
	Destination string       `json:"destination"`
}

func (m VerificationMismatch) String() string {
	switch m.Kind {
	case MismatchCount:
		return fmt.Sprintf("table %s: %s rows in source, %s in destination", m.Table, m.Source, m.Destination)
	case MismatchMissing:
		return fmt.Sprintf("table %s: id %s present in source=%s destination=%s", m.Table, m.Key, m.Source, m.Destination)
	default:
		return fmt.Sprintf("table %s id %s column %s: source %s, destination %s", m.Table, m.Key, m.Column, m.Source, m.Destination)
	}
}
