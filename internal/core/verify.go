package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strconv"
	"time"

	"github.com/JonMunkholm/moviesync/internal/logging"
)

// RowSource reads a catalog table from one store, ordered by id.
// Satisfied by *SQLiteSource and *PostgresSource.
type RowSource interface {
	Count(ctx context.Context, def TableDefinition) (int64, error)
	Rows(ctx context.Context, def TableDefinition) iter.Seq2[Row, error]
}

// VerifyOptions tune a verification run.
type VerifyOptions struct {
	StopOnFirst       bool          // CheckValues stops at the first mismatch
	CountsStopOnFirst bool          // CheckCounts stops at the first mismatch
	TableTimeout      time.Duration // Bound on one table; zero means none
}

// Report collects the findings of one check.
type Report struct {
	Check         string
	TablesChecked int
	RowsCompared  int64
	Mismatches    []VerificationMismatch
}

// OK reports whether no mismatches were found.
func (r *Report) OK() bool { return len(r.Mismatches) == 0 }

// Err returns ErrVerificationFailed wrapped with the mismatch count, or nil.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%s check: %w: %d mismatch(es)", r.Check, ErrVerificationFailed, len(r.Mismatches))
}

// LogValue implements slog.LogValuer for structured logging.
func (r *Report) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("check", r.Check),
		slog.Int("tables", r.TablesChecked),
		slog.Int64("rows_compared", r.RowsCompared),
		slog.Int("mismatches", len(r.Mismatches)),
	)
}

// Verifier compares the source and destination stores table by table.
type Verifier struct {
	src  RowSource
	dst  RowSource
	opts VerifyOptions
}

// NewVerifier creates a verifier reading src as the reference side.
func NewVerifier(src, dst RowSource, opts VerifyOptions) *Verifier {
	return &Verifier{src: src, dst: dst, opts: opts}
}

func (v *Verifier) tableContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if v.opts.TableTimeout > 0 {
		return context.WithTimeout(ctx, v.opts.TableTimeout)
	}
	return context.WithCancel(ctx)
}

// CheckCounts compares row counts for every table in load order.
// Store errors abort the check; count differences are reported.
func (v *Verifier) CheckCounts(ctx context.Context) (*Report, error) {
	report := &Report{Check: "counts"}

	for _, def := range Ordered() {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		tctx, cancel := v.tableContext(ctx)
		srcN, srcErr := v.src.Count(tctx, def)
		dstN, dstErr := v.dst.Count(tctx, def)
		cancel()
		if err := errors.Join(srcErr, dstErr); err != nil {
			return report, fmt.Errorf("count %s: %w", def.Kind, err)
		}

		report.TablesChecked++
		if srcN == dstN {
			continue
		}

		m := VerificationMismatch{
			Table:       def.Kind,
			Kind:        MismatchCount,
			Source:      strconv.FormatInt(srcN, 10),
			Destination: strconv.FormatInt(dstN, 10),
		}
		report.Mismatches = append(report.Mismatches, m)
		logging.WithFields(ctx, "table", def.Kind).Warn("row count mismatch", "source", srcN, "destination", dstN)
		if v.opts.CountsStopOnFirst {
			break
		}
	}

	return report, nil
}

// CheckValues streams both stores ordered by id, canonicalises each row and
// compares them column by column. A row present on one side only is reported
// as a mismatch on id.
func (v *Verifier) CheckValues(ctx context.Context) (*Report, error) {
	report := &Report{Check: "values"}

	for _, def := range Ordered() {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		tctx, cancel := v.tableContext(ctx)
		stop, err := v.compareTable(tctx, def, report)
		cancel()
		if err != nil {
			return report, fmt.Errorf("compare %s: %w", def.Kind, err)
		}
		report.TablesChecked++
		if stop {
			break
		}
	}

	return report, nil
}

// rowCursor walks one side of a merge join.
type rowCursor struct {
	def  TableDefinition
	next func() (Row, error, bool)
	rec  Record
	done bool
}

// advance loads the next row. A row that fails to transform is returned as a
// *TransformError and leaves the cursor without a record.
func (c *rowCursor) advance() (*TransformError, error) {
	c.rec = nil
	row, err, ok := c.next()
	if !ok {
		c.done = true
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec, err := c.def.Transform(row)
	if err != nil {
		var terr *TransformError
		if errors.As(err, &terr) {
			return terr, nil
		}
		return nil, err
	}
	c.rec = rec
	return nil, nil
}

func (v *Verifier) compareTable(ctx context.Context, def TableDefinition, report *Report) (bool, error) {
	log := logging.WithFields(ctx, "table", def.Kind)

	srcNext, srcStop := iter.Pull2(v.src.Rows(ctx, def))
	defer srcStop()
	dstNext, dstStop := iter.Pull2(v.dst.Rows(ctx, def))
	defer dstStop()

	src := &rowCursor{def: def, next: srcNext}
	dst := &rowCursor{def: def, next: dstNext}

	// add records a mismatch and reports whether the check should stop.
	add := func(m VerificationMismatch) bool {
		report.Mismatches = append(report.Mismatches, m)
		log.Warn("value mismatch", "mismatch", m.String())
		return v.opts.StopOnFirst
	}

	// step advances c to its next valid record, reporting rows that do not
	// transform on the way.
	step := func(c *rowCursor, isSource bool) (bool, error) {
		for {
			terr, err := c.advance()
			if err != nil {
				return true, err
			}
			if terr == nil {
				return false, nil
			}
			m := VerificationMismatch{
				Table:       def.Kind,
				Kind:        MismatchInvalid,
				Key:         rowKey(terr.Row),
				Column:      terr.Column,
				Source:      "-",
				Destination: "-",
			}
			if isSource {
				m.Source = fmt.Sprintf("invalid %v", terr.Value)
			} else {
				m.Destination = fmt.Sprintf("invalid %v", terr.Value)
			}
			if add(m) {
				return true, nil
			}
		}
	}

	if stop, err := step(src, true); stop || err != nil {
		return stop, err
	}
	if stop, err := step(dst, false); stop || err != nil {
		return stop, err
	}

	cols := def.Columns()
	for !src.done || !dst.done {
		if err := ctx.Err(); err != nil {
			return true, err
		}

		var order int
		switch {
		case dst.done:
			order = -1
		case src.done:
			order = 1
		default:
			srcKey, dstKey := src.rec.Key(), dst.rec.Key()
			order = bytes.Compare(srcKey[:], dstKey[:])
		}

		switch {
		case order < 0:
			if add(VerificationMismatch{
				Table: def.Kind, Kind: MismatchMissing, Key: src.rec.Key().String(),
				Column: "id", Source: "present", Destination: "absent",
			}) {
				return true, nil
			}
			if stop, err := step(src, true); stop || err != nil {
				return stop, err
			}

		case order > 0:
			if add(VerificationMismatch{
				Table: def.Kind, Kind: MismatchMissing, Key: dst.rec.Key().String(),
				Column: "id", Source: "absent", Destination: "present",
			}) {
				return true, nil
			}
			if stop, err := step(dst, false); stop || err != nil {
				return stop, err
			}

		default:
			report.RowsCompared++
			srcVals, dstVals := src.rec.Values(), dst.rec.Values()
			for i, col := range cols {
				if equalValue(srcVals[i], dstVals[i]) {
					continue
				}
				if add(VerificationMismatch{
					Table: def.Kind, Kind: MismatchValue, Key: src.rec.Key().String(),
					Column: col, Source: formatValue(srcVals[i]), Destination: formatValue(dstVals[i]),
				}) {
					return true, nil
				}
			}
			if stop, err := step(src, true); stop || err != nil {
				return stop, err
			}
			if stop, err := step(dst, false); stop || err != nil {
				return stop, err
			}
		}
	}

	return false, nil
}

// rowKey renders the id of a raw row for reports.
func rowKey(row Row) string {
	if id, err := ParseUUID(row["id"]); err == nil {
		return id.String()
	}
	return fmt.Sprint(row["id"])
}
