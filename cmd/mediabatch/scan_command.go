package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mediabatch/internal/migration"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var (
		source         string
		skipUnreadable bool
		jsonOutput     bool
		showDuplicates bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Walk a media tree and report unique files and duplicates without copying",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			flags := migrateFlags{source: source, skipUnreadable: skipUnreadable, dryRun: true}
			opts, err := flags.options(cmd, cfg)
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}
			observer := newProgressObserver(cmd.ErrOrStderr(), !jsonOutput)
			runner, err := migration.NewRunner(opts,
				migration.WithLogger(logger),
				migration.WithObserver(observer),
			)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cat, err := runner.Scan(runCtx)
			finishScan(observer)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, cat)
			}
			renderScan(cmd.OutOrStdout(), cat, showDuplicates)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "src", "", "Source directory to scan")
	cmd.Flags().BoolVar(&skipUnreadable, "skip-unreadable", false, "Skip directories that cannot be listed instead of aborting")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Write the catalog as JSON")
	cmd.Flags().BoolVar(&showDuplicates, "duplicates", true, "List each duplicate and the file it duplicates")
	_ = cmd.MarkFlagRequired("src")

	return cmd
}
