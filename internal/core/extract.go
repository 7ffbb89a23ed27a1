package core

import (
	"context"
	"database/sql"
	"iter"
)

// DefaultBatchSize is used when an Extractor is built with a non-positive size.
const DefaultBatchSize = 100

// SQLiteSource reads catalog tables from the read-only SQLite store.
type SQLiteSource struct {
	db *sql.DB
}

// NewSQLiteSource wraps an open SQLite handle.
func NewSQLiteSource(db *sql.DB) *SQLiteSource {
	return &SQLiteSource{db: db}
}

// Count returns the number of rows in the table's source.
func (s *SQLiteSource) Count(ctx context.Context, def TableDefinition) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, def.SourceCountQuery()).Scan(&n); err != nil {
		return 0, &SourceReadError{Table: def.Kind, Batch: -1, Err: err}
	}
	return n, nil
}

// Rows streams the table's rows ordered by id through a single cursor.
// Stopping the iteration closes the cursor.
func (s *SQLiteSource) Rows(ctx context.Context, def TableDefinition) iter.Seq2[Row, error] {
	return func(yield func(Row, error) bool) {
		rows, err := s.db.QueryContext(ctx, def.SourceQuery())
		if err != nil {
			yield(nil, &SourceReadError{Table: def.Kind, Batch: -1, Err: err})
			return
		}
		defer rows.Close()

		cols, err := rows.Columns()
		if err != nil {
			yield(nil, &SourceReadError{Table: def.Kind, Batch: -1, Err: err})
			return
		}

		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}

		for rows.Next() {
			if err := rows.Scan(ptrs...); err != nil {
				yield(nil, &SourceReadError{Table: def.Kind, Batch: -1, Err: err})
				return
			}
			row := make(Row, len(cols))
			for i, col := range cols {
				row[col] = vals[i]
			}
			if !yield(row, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(nil, &SourceReadError{Table: def.Kind, Batch: -1, Err: err})
		}
	}
}

// Extractor groups source rows into bounded batches.
type Extractor struct {
	src       *SQLiteSource
	batchSize int
}

// NewExtractor creates an extractor over an open SQLite handle.
func NewExtractor(db *sql.DB, batchSize int) *Extractor {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Extractor{src: NewSQLiteSource(db), batchSize: batchSize}
}

// BatchSize returns the maximum number of rows per batch.
func (e *Extractor) BatchSize() int { return e.batchSize }

// Source returns the underlying row source.
func (e *Extractor) Source() *SQLiteSource { return e.src }

// Count returns the number of source rows for kind.
func (e *Extractor) Count(ctx context.Context, kind EntityKind) (int64, error) {
	def, ok := Get(kind)
	if !ok {
		return 0, &SourceReadError{Table: kind, Batch: -1, Err: ErrUnknownTable}
	}
	return e.src.Count(ctx, def)
}

// Extract returns a lazy, single-pass sequence of batches for kind. Every
// batch but the last holds exactly BatchSize rows; an empty table yields
// nothing. A read failure is yielded once as a *SourceReadError and ends the
// sequence.
func (e *Extractor) Extract(ctx context.Context, kind EntityKind) iter.Seq2[Batch, error] {
	return func(yield func(Batch, error) bool) {
		def, ok := Get(kind)
		if !ok {
			yield(Batch{}, &SourceReadError{Table: kind, Batch: -1, Err: ErrUnknownTable})
			return
		}

		batch := Batch{Rows: make([]Row, 0, e.batchSize)}
		for row, err := range e.src.Rows(ctx, def) {
			if err != nil {
				if srcErr, ok := err.(*SourceReadError); ok && len(batch.Rows) > 0 {
					srcErr.Batch = batch.Index
				}
				yield(Batch{Index: batch.Index}, err)
				return
			}
			batch.Rows = append(batch.Rows, row)
			if len(batch.Rows) < e.batchSize {
				continue
			}
			if !yield(batch, nil) {
				return
			}
			batch = Batch{Index: batch.Index + 1, Rows: make([]Row, 0, e.batchSize)}
		}

		if len(batch.Rows) > 0 {
			yield(batch, nil)
		}
	}
}
