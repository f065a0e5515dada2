package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"mediabatch/internal/catalog"
	"mediabatch/internal/config"
	"mediabatch/internal/logging"
	"mediabatch/internal/migration"
	"mediabatch/internal/preflight"
	"mediabatch/internal/transfer"
)

type migrateFlags struct {
	source         string
	destination    string
	batchSize      int
	chunkSize      int
	failFast       bool
	skipUnreadable bool
	noVerify       bool
	dryRun         bool
	jsonOutput     bool
	noProgress     bool
}

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	var flags migrateFlags

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Deduplicate a media tree and copy it into numbered batch directories",
		Long: `Walk the source tree, keep one copy of each distinct media file, split the
unique files into numbered batch directories under the destination, and copy
them with bounded parallelism. --dry-run stops after planning.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			opts, err := flags.options(cmd, cfg)
			if err != nil {
				return err
			}

			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			unlock, err := migration.Lock(cfg.LockPath())
			if err != nil {
				return err
			}
			defer func() {
				if err := unlock(); err != nil {
					logging.WarnWithContext(logger, "release lock failed", "lock_release_failed",
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "remove the lock file if no run is active"),
					)
				}
			}()

			runnerOpts := []migration.RunnerOption{
				migration.WithLogger(logger),
				migration.WithPreflight(func(req preflight.Request) ([]preflight.Result, error) {
					results := preflight.RunAll(cfg, req)
					return results, preflight.Err(results)
				}),
			}
			store, err := ctx.openJournal()
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
				runnerOpts = append(runnerOpts, migration.WithJournal(store))
			}
			observer := newProgressObserver(cmd.ErrOrStderr(), !flags.noProgress && !flags.jsonOutput)
			runnerOpts = append(runnerOpts, migration.WithObserver(observer))

			runner, err := migration.NewRunner(opts, runnerOpts...)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			report, runErr := runner.Run(runCtx)
			finishProgress(observer)

			if flags.jsonOutput {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				renderReport(cmd.OutOrStdout(), report)
			}
			if errors.Is(runErr, context.Canceled) {
				return fmt.Errorf("migration interrupted: %w", runErr)
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&flags.source, "src", "", "Source directory to migrate")
	cmd.Flags().StringVar(&flags.destination, "dest", "", "Destination root for batch directories")
	cmd.Flags().IntVar(&flags.batchSize, "batch-size", 0, "Files per batch directory (default from config)")
	cmd.Flags().IntVar(&flags.chunkSize, "chunk-size", 0, "Parallel copies per batch (default from config)")
	cmd.Flags().BoolVar(&flags.failFast, "fail-fast", false, "Stop after the first file that exhausts its retries")
	cmd.Flags().BoolVar(&flags.skipUnreadable, "skip-unreadable", false, "Skip directories that cannot be listed instead of aborting")
	cmd.Flags().BoolVar(&flags.noVerify, "no-verify", false, "Skip re-hashing copies against the source fingerprint")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Walk and plan without copying")
	cmd.Flags().BoolVar(&flags.jsonOutput, "json", false, "Write the run report as JSON")
	cmd.Flags().BoolVar(&flags.noProgress, "no-progress", false, "Disable progress bars")
	_ = cmd.MarkFlagRequired("src")

	return cmd
}

func (f migrateFlags) options(cmd *cobra.Command, cfg *config.Config) (migration.Options, error) {
	source, err := expandFlagPath("--src", f.source)
	if err != nil {
		return migration.Options{}, err
	}
	var destination string
	if strings.TrimSpace(f.destination) != "" {
		if destination, err = expandFlagPath("--dest", f.destination); err != nil {
			return migration.Options{}, err
		}
	} else if !f.dryRun {
		return migration.Options{}, errors.New("--dest is required unless --dry-run is set")
	}

	opts, err := migration.OptionsFromConfig(cfg, source, destination)
	if err != nil {
		return migration.Options{}, err
	}
	if cmd.Flags().Changed("batch-size") {
		opts.BatchSize = f.batchSize
	}
	if cmd.Flags().Changed("chunk-size") {
		opts.ChunkSize = f.chunkSize
	}
	if opts.ChunkSize > opts.BatchSize {
		opts.ChunkSize = opts.BatchSize
	}
	if f.failFast {
		opts.FailurePolicy = transfer.FailFast
	}
	if f.skipUnreadable {
		opts.TraversalPolicy = catalog.TraversalSkip
	}
	if f.noVerify {
		opts.Verify = false
	}
	opts.DryRun = f.dryRun
	return opts, nil
}

func expandFlagPath(flag, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%s is required", flag)
	}
	expanded, err := config.ExpandPath(value)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", flag, err)
	}
	return expanded, nil
}
