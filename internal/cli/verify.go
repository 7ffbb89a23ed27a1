package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/moviesync/internal/config"
	"github.com/JonMunkholm/moviesync/internal/core"
	"github.com/JonMunkholm/moviesync/internal/logging"
	"github.com/JonMunkholm/moviesync/internal/store"
)

// NewVerifyCommand returns the command comparing both stores.
func NewVerifyCommand() *cobra.Command {
	var opts globalOptions

	cmd := &cobra.Command{
		Use:           "verify",
		Short:         "Check that PostgreSQL holds exactly the SQLite movies catalog",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, err := bootstrap(cmd, &opts)
			if err != nil {
				return withCode(ExitFailure, err)
			}

			reports, err := runVerify(ctx, cfg)
			for _, r := range reports {
				printReport(cmd.OutOrStdout(), r)
			}
			if err != nil {
				reportError(ctx, "verification aborted", err)
				return withCode(ExitFailure, err)
			}

			for _, r := range reports {
				if err := r.Err(); err != nil {
					reportError(ctx, "verification found mismatches", err)
					return withCode(ExitMismatch, err)
				}
			}

			logging.FromContext(ctx).Info("verification passed")
			return nil
		},
	}

	opts.bind(cmd)
	return cmd
}

// runVerify runs the count check and then the value check.
func runVerify(ctx context.Context, cfg *config.Config) ([]*core.Report, error) {
	src, err := store.OpenSource(ctx, cfg.Source)
	if err != nil {
		return nil, &core.SourceReadError{Batch: -1, Err: err}
	}
	defer src.Close()

	pool, err := store.OpenDestination(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	v := core.NewVerifier(
		core.NewSQLiteSource(src),
		core.NewPostgresSource(pool, cfg.Database.Schema),
		core.VerifyOptions{
			StopOnFirst:       cfg.Verify.StopOnFirst,
			CountsStopOnFirst: cfg.Verify.CountsStopOnFirst,
			TableTimeout:      cfg.Verify.TableTimeout,
		},
	)

	log := logging.FromContext(ctx)

	counts, err := v.CheckCounts(ctx)
	if err != nil {
		return []*core.Report{counts}, err
	}
	log.Info("count check finished", "report", counts)

	values, err := v.CheckValues(ctx)
	if err != nil {
		return []*core.Report{counts, values}, err
	}
	log.Info("value check finished", "report", values)

	return []*core.Report{counts, values}, nil
}

func printReport(w io.Writer, r *core.Report) {
	if r == nil {
		return
	}
	status := "OK"
	if !r.OK() {
		status = "FAILED"
	}
	fmt.Fprintf(w, "%s check: %s (%d tables", r.Check, status, r.TablesChecked)
	if r.RowsCompared > 0 {
		fmt.Fprintf(w, ", %d rows compared", r.RowsCompared)
	}
	fmt.Fprintln(w, ")")
	for _, m := range r.Mismatches {
		fmt.Fprintf(w, "  %s\n", m)
	}
}
