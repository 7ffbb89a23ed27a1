package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/moviesync/internal/config"
	"github.com/JonMunkholm/moviesync/internal/core"
	"github.com/JonMunkholm/moviesync/internal/store"
)

// NewMigrateCommand returns the command copying the SQLite store into PostgreSQL.
func NewMigrateCommand() *cobra.Command {
	var opts globalOptions

	cmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Copy the movies catalog from SQLite into PostgreSQL",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cfg, err := bootstrap(cmd, &opts)
			if err != nil {
				return withCode(ExitFailure, err)
			}

			res, err := runMigrate(ctx, cfg)
			if res != nil {
				printRunResult(cmd.OutOrStdout(), res)
			}
			if err != nil {
				reportError(ctx, "migration failed", err)
				return withCode(ExitFailure, err)
			}
			return nil
		},
	}

	opts.bind(cmd)
	return cmd
}

func runMigrate(ctx context.Context, cfg *config.Config) (*core.RunResult, error) {
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

	migrator := core.NewMigrator(
		core.NewExtractor(src, cfg.Migrate.BatchSize),
		core.NewLoader(pool, cfg.Database.Schema, cfg.Migrate.BatchTimeout),
		core.Options{
			TableTimeout:  cfg.Migrate.TableTimeout,
			Parallel:      cfg.Migrate.ParallelTables,
			PipelineDepth: cfg.Migrate.PipelineDepth,
			SkipInvalid:   cfg.Migrate.SkipInvalidRows,
		},
	)

	return migrator.Run(ctx)
}

func printRunResult(w io.Writer, res *core.RunResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TABLE\tPHASE\tEXTRACTED\tINSERTED\tEXISTING\tSKIPPED\tDURATION")
	for _, t := range res.Tables {
		if t == nil {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			t.Kind, t.Phase,
			t.Stats.Extracted(), t.Stats.Inserted(), t.Stats.Existing(), t.Stats.SkippedInvalid(),
			t.Duration.Round(time.Millisecond),
		)
	}
	tw.Flush()
}
