package core

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/huandu/go-sqlbuilder"

	"github.com/JonMunkholm/moviesync/internal/logging"
)

// DefaultBatchTimeout bounds one batch transaction when none is configured.
const DefaultBatchTimeout = 30 * time.Second

// Loader writes record batches into the destination, one transaction per batch.
type Loader struct {
	db           TxStarter
	schema       string
	batchTimeout time.Duration
}

// NewLoader creates a loader writing into schema.
func NewLoader(db TxStarter, schema string, batchTimeout time.Duration) *Loader {
	if batchTimeout <= 0 {
		batchTimeout = DefaultBatchTimeout
	}
	return &Loader{db: db, schema: schema, batchTimeout: batchTimeout}
}

// LoadResult totals a LoadTable call.
type LoadResult struct {
	Batches  int
	Inserted int64
	Existing int64
}

// InsertQuery builds the multi-row insert for records. Rows whose id already
// exists are skipped by the database.
func (l *Loader) InsertQuery(def TableDefinition, records []Record) (string, []any) {
	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto(def.DestIdentifier(l.schema))
	ib.Cols(def.Columns()...)
	for _, rec := range records {
		ib.Values(rec.Values()...)
	}
	ib.SQL("ON CONFLICT (id) DO NOTHING")
	return ib.Build()
}

// LoadBatch inserts records in a single transaction and returns how many rows
// were actually inserted. On failure the transaction is rolled back and a
// *DestinationWriteError is returned.
//
// The transaction ignores cancellation of ctx and is bounded by the batch
// timeout instead, so a stop request never interrupts a batch mid-flight.
func (l *Loader) LoadBatch(ctx context.Context, def TableDefinition, batch int, records []Record) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	txCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.batchTimeout)
	defer cancel()

	wrap := func(err error) error {
		return &DestinationWriteError{Table: def.Kind, Batch: batch, Rows: len(records), Err: err}
	}

	tx, err := l.db.Begin(txCtx)
	if err != nil {
		return 0, wrap(fmt.Errorf("begin transaction: %w", err))
	}
	defer tx.Rollback(txCtx)

	query, args := l.InsertQuery(def, records)
	tag, err := tx.Exec(txCtx, query, args...)
	if err != nil {
		return 0, wrap(err)
	}

	if err := tx.Commit(txCtx); err != nil {
		return 0, wrap(fmt.Errorf("commit: %w", err))
	}

	return tag.RowsAffected(), nil
}

// LoadTable loads every batch of seq in order, stopping at the first error.
// Cancellation of ctx is checked between batches.
func (l *Loader) LoadTable(ctx context.Context, def TableDefinition, seq iter.Seq2[[]Record, error]) (LoadResult, error) {
	var res LoadResult
	log := logging.WithFields(ctx, "table", def.Kind)

	for records, err := range seq {
		if err != nil {
			return res, err
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		inserted, err := l.LoadBatch(ctx, def, res.Batches, records)
		if err != nil {
			return res, err
		}

		res.Inserted += inserted
		res.Existing += int64(len(records)) - inserted
		log.Debug("batch committed", "batch", res.Batches, "rows", len(records), "inserted", inserted)
		res.Batches++
	}

	return res, nil
}
