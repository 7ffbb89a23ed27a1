package core

import (
	"context"
	"iter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/moviesync/internal/logging"
)

// BatchSource yields raw batches for a table. Satisfied by *Extractor.
type BatchSource interface {
	Extract(ctx context.Context, kind EntityKind) iter.Seq2[Batch, error]
}

// BatchSink writes a batch of records. Satisfied by *Loader.
type BatchSink interface {
	LoadBatch(ctx context.Context, def TableDefinition, batch int, records []Record) (int64, error)
}

// Phase is the lifecycle state of one table migration.
type Phase string

const (
	PhaseStarting   Phase = "starting"
	PhaseExtracting Phase = "extracting"
	PhaseLoading    Phase = "loading"
	PhaseComplete   Phase = "complete"
	PhaseFailed     Phase = "failed"
	PhaseCancelled  Phase = "cancelled"
)

// Options tune a migration run.
type Options struct {
	TableTimeout  time.Duration // Bound on one table; zero means none
	Parallel      bool          // Run tables of equal rank concurrently
	PipelineDepth int           // Transformed batches buffered ahead of the loader
	SkipInvalid   bool          // Drop rows that fail to transform instead of aborting
}

// TableResult reports the outcome for one table.
type TableResult struct {
	Kind     EntityKind
	Phase    Phase
	Stats    *TableStats
	Duration time.Duration
	Err      error
}

// RunResult reports the outcome of a full run in load order.
type RunResult struct {
	Tables   []*TableResult
	Duration time.Duration
}

// Inserted returns the total rows written across all tables.
func (r *RunResult) Inserted() int64 {
	var n int64
	for _, t := range r.Tables {
		if t != nil {
			n += t.Stats.Inserted()
		}
	}
	return n
}

// Migrator copies every catalog table from a BatchSource into a BatchSink in
// dependency order.
type Migrator struct {
	src  BatchSource
	sink BatchSink
	opts Options
}

// NewMigrator creates a migrator.
func NewMigrator(src BatchSource, sink BatchSink, opts Options) *Migrator {
	if opts.PipelineDepth <= 0 {
		opts.PipelineDepth = 1
	}
	return &Migrator{src: src, sink: sink, opts: opts}
}

// Run migrates all tables stage by stage. A stage starts only after every
// table of the previous stage completed. The first failure stops the run;
// batches committed so far stay committed.
func (m *Migrator) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()
	res := &RunResult{}

	if err := ValidateCatalog(); err != nil {
		return res, err
	}

	log := logging.FromContext(ctx)

	for _, stage := range Stages() {
		if err := ctx.Err(); err != nil {
			res.Duration = time.Since(start)
			return res, err
		}

		results, err := m.runStage(ctx, stage)
		res.Tables = append(res.Tables, results...)
		if err != nil {
			res.Duration = time.Since(start)
			return res, err
		}
	}

	res.Duration = time.Since(start)
	log.Info("migration complete", "tables", len(res.Tables), "inserted", res.Inserted(), "duration", res.Duration)
	return res, nil
}

func (m *Migrator) runStage(ctx context.Context, stage []TableDefinition) ([]*TableResult, error) {
	results := make([]*TableResult, len(stage))

	if !m.opts.Parallel || len(stage) == 1 {
		for i, def := range stage {
			r, err := m.MigrateTable(ctx, def)
			results[i] = r
			if err != nil {
				return results[:i+1], err
			}
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, def := range stage {
		g.Go(func() error {
			r, err := m.MigrateTable(gctx, def)
			results[i] = r
			return err
		})
	}
	return results, g.Wait()
}

// MigrateTable streams one table through extract, transform and load. The
// producer reads and transforms batches while the consumer commits earlier
// ones. Cancellation of ctx takes effect at the next batch boundary.
func (m *Migrator) MigrateTable(ctx context.Context, def TableDefinition) (*TableResult, error) {
	start := time.Now()
	res := &TableResult{Kind: def.Kind, Phase: PhaseStarting, Stats: &TableStats{}}
	stats := res.Stats
	log := logging.WithFields(ctx, "table", def.Kind)

	tableCtx := ctx
	if m.opts.TableTimeout > 0 {
		var cancel context.CancelFunc
		tableCtx, cancel = context.WithTimeout(ctx, m.opts.TableTimeout)
		defer cancel()
	}

	log.Info("migrating table", "rank", def.Rank)
	res.Phase = PhaseExtracting

	g, gctx := errgroup.WithContext(tableCtx)
	batches := make(chan RecordBatch, m.opts.PipelineDepth)

	g.Go(func() error {
		defer close(batches)

		for batch, err := range m.src.Extract(gctx, def.Kind) {
			if err != nil {
				return err
			}
			stats.incExtracted(int64(len(batch.Rows)))

			records, skipped, err := def.TransformBatch(batch, m.opts.SkipInvalid)
			for _, terr := range skipped {
				log.Warn("skipping invalid row",
					"batch", terr.Batch,
					"column", terr.Column,
					"value", terr.Value,
					"row", terr.Row,
					"error", terr.Err,
				)
			}
			stats.incSkippedInvalid(int64(len(skipped)))
			if err != nil {
				return err
			}
			stats.incTransformed(int64(len(records.Records)))

			select {
			case batches <- records:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	g.Go(func() error {
		for rb := range batches {
			if err := gctx.Err(); err != nil {
				return err
			}
			if len(rb.Records) == 0 {
				continue
			}

			res.Phase = PhaseLoading
			inserted, err := m.sink.LoadBatch(gctx, def, rb.Index, rb.Records)
			if err != nil {
				return err
			}

			stats.incInserted(inserted)
			stats.incExisting(int64(len(rb.Records)) - inserted)
			stats.incBatches()
			log.Debug("batch committed", "batch", rb.Index, "rows", len(rb.Records), "inserted", inserted)
		}
		return nil
	})

	err := g.Wait()
	res.Duration = time.Since(start)

	switch {
	case err == nil:
		res.Phase = PhaseComplete
		log.Info("table complete", "stats", stats, "duration", res.Duration)
		return res, nil
	case ctx.Err() != nil:
		res.Phase = PhaseCancelled
		res.Err = ctx.Err()
		log.Warn("table cancelled", "stats", stats)
		return res, res.Err
	default:
		res.Phase = PhaseFailed
		res.Err = err
		msg := Describe(err)
		log.Error("table failed", "error", err, "code", msg.Code, "action", msg.Action, "stats", stats)
		return res, err
	}
}
