// Package cli builds the migrate and verify commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/moviesync/internal/config"
	"github.com/JonMunkholm/moviesync/internal/core"
	"github.com/JonMunkholm/moviesync/internal/logging"
)

// Process exit codes.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitMismatch = 2
)

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var e *exitError
	if errors.As(err, &e) {
		return e.code
	}
	if errors.Is(err, core.ErrVerificationFailed) {
		return ExitMismatch
	}
	return ExitFailure
}

// globalOptions are shared by both commands.
type globalOptions struct {
	envFile   string
	batchSize int
}

func (o *globalOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.envFile, "env-file", ".env", "Environment file to load before reading configuration")
	cmd.Flags().IntVar(&o.batchSize, "batch-size", 0, "Override MIGRATE_BATCH_SIZE")
}

// bootstrap loads the env file and configuration, installs the logger and
// tags the context with a fresh run ID.
func bootstrap(cmd *cobra.Command, opts *globalOptions) (context.Context, *config.Config, error) {
	if err := loadEnvFile(opts.envFile, cmd.Flags().Changed("env-file")); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	if opts.batchSize != 0 {
		cfg.Migrate.BatchSize = opts.batchSize
		if err := cfg.Validate(); err != nil {
			return nil, nil, fmt.Errorf("config validation: %w", err)
		}
	}

	logging.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.ContextWithRunID(ctx, uuid.NewString())

	logging.FromContext(ctx).Info("starting", "command", cmd.Name(), "config", cfg.String())
	return ctx, cfg, nil
}

// loadEnvFile loads path into the environment without overriding variables
// already set. A missing default file is ignored; a missing explicit file is
// an error.
func loadEnvFile(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil
	}
	return fmt.Errorf("load env file %s: %w", path, err)
}

// reportError logs err together with its support code.
func reportError(ctx context.Context, msg string, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	um := core.Describe(err)
	logging.FromContext(ctx).Error(msg, "error", err, "code", um.Code, "message", um.Message, "action", um.Action)
}

// Execute runs cmd and returns the process exit code.
func Execute(ctx context.Context, cmd *cobra.Command) int {
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	}
	return ExitCode(err)
}
