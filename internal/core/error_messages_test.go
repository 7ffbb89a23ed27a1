package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:     "nil error returns empty",
			err:      nil,
			wantCode: "",
		},
		{
			name:        "foreign key inside write error",
			err:         &DestinationWriteError{Table: KindPersonFilmWork, Batch: 2, Rows: 100, Err: &pgconn.PgError{Code: "23503"}},
			wantCode:    "DB001",
			wantMessage: "Referenced row does not exist",
		},
		{
			name:        "unique violation",
			err:         fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}),
			wantCode:    "DB002",
			wantMessage: "A unique value already exists under another id",
		},
		{
			name:     "check violation",
			err:      &pgconn.PgError{Code: "23514"},
			wantCode: "DB003",
		},
		{
			name:        "connection class",
			err:         &pgconn.PgError{Code: "08006"},
			wantCode:    "DB004",
			wantMessage: "Unable to connect to database",
		},
		{
			name:     "statement cancelled",
			err:      &pgconn.PgError{Code: "57014"},
			wantCode: "DB005",
		},
		{
			name:     "missing destination table",
			err:      &pgconn.PgError{Code: "42P01"},
			wantCode: "DB006",
		},
		{
			name:        "connection refused pattern",
			err:         errors.New("dial tcp 127.0.0.1:5432: connect: CONNECTION REFUSED"),
			wantCode:    "DB004",
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "deadline exceeded",
			err:         &DestinationWriteError{Table: KindGenre, Err: context.DeadlineExceeded},
			wantCode:    "DB005",
			wantMessage: "Operation timed out",
		},
		{
			name:     "cancelled",
			err:      fmt.Errorf("run: %w", context.Canceled),
			wantCode: "RUN001",
		},
		{
			name:        "transform error",
			err:         &TransformError{Table: KindFilmWork, Column: "rating", Value: "n/a", Err: errors.New("invalid number")},
			wantCode:    "TRN001",
			wantMessage: "A source value could not be converted",
		},
		{
			name:     "source read error",
			err:      &SourceReadError{Table: KindGenre, Batch: -1, Err: errors.New("disk I/O error")},
			wantCode: "SRC001",
		},
		{
			name:     "missing source table",
			err:      &SourceReadError{Table: KindGenre, Batch: -1, Err: errors.New("SQL logic error: no such table: genre (1)")},
			wantCode: "SRC001",
		},
		{
			name:        "verification failed",
			err:         fmt.Errorf("values check: %w: 1 mismatch(es)", ErrVerificationFailed),
			wantCode:    "VER001",
			wantMessage: "Source and destination disagree",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Describe(tt.err)
			assert.Equal(t, tt.wantCode, got.Code)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, got.Message)
			}
			if tt.err != nil {
				assert.NotEmpty(t, got.Action, "every mapped error carries an action")
			}
		})
	}
}

func TestErrorTypesUnwrap(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "source read with batch",
			err:  &SourceReadError{Table: KindPerson, Batch: 3, Err: cause},
			want: "source read person batch 3: boom",
		},
		{
			name: "source read without batch",
			err:  &SourceReadError{Table: KindPerson, Batch: -1, Err: cause},
			want: "source read person: boom",
		},
		{
			name: "transform in batch",
			err:  &TransformError{Table: KindFilmWork, Batch: 1, Column: "rating", Value: "x", Err: cause},
			want: "transform film_work.rating (batch 1) value x: boom",
		},
		{
			name: "destination write",
			err:  &DestinationWriteError{Table: KindGenre, Batch: 0, Rows: 10, Err: cause},
			want: "destination write genre batch 0 (10 rows): boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.ErrorIs(t, tt.err, cause)
		})
	}
}
