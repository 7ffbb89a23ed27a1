package core

import (
	"log/slog"
	"sync/atomic"
)

// TableStats counts rows as they move through one table's pipeline.
// Counters are updated from the producer and consumer goroutines.
type TableStats struct {
	extracted      atomic.Int64
	transformed    atomic.Int64
	skippedInvalid atomic.Int64
	inserted       atomic.Int64
	existing       atomic.Int64
	batches        atomic.Int64
}

// Extracted returns the number of rows read from the source.
func (s *TableStats) Extracted() int64 { return s.extracted.Load() }

// Transformed returns the number of rows converted to records.
func (s *TableStats) Transformed() int64 { return s.transformed.Load() }

// SkippedInvalid returns the number of rows dropped by the skip-invalid policy.
func (s *TableStats) SkippedInvalid() int64 { return s.skippedInvalid.Load() }

// Inserted returns the number of rows newly written to the destination.
func (s *TableStats) Inserted() int64 { return s.inserted.Load() }

// Existing returns the number of rows skipped because their id was present.
func (s *TableStats) Existing() int64 { return s.existing.Load() }

// Batches returns the number of committed batches.
func (s *TableStats) Batches() int64 { return s.batches.Load() }

// LogValue implements slog.LogValuer for structured logging.
func (s *TableStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("extracted", s.Extracted()),
		slog.Int64("transformed", s.Transformed()),
		slog.Int64("skipped_invalid", s.SkippedInvalid()),
		slog.Int64("inserted", s.Inserted()),
		slog.Int64("existing", s.Existing()),
		slog.Int64("batches", s.Batches()),
	)
}

func (s *TableStats) incExtracted(n int64) int64      { return s.extracted.Add(n) }
func (s *TableStats) incTransformed(n int64) int64    { return s.transformed.Add(n) }
func (s *TableStats) incSkippedInvalid(n int64) int64 { return s.skippedInvalid.Add(n) }
func (s *TableStats) incInserted(n int64) int64       { return s.inserted.Add(n) }
func (s *TableStats) incExisting(n int64) int64       { return s.existing.Add(n) }
func (s *TableStats) incBatches() int64               { return s.batches.Add(1) }
