package main

import (
	"strings"

	"github.com/spf13/cobra"

	"mediabatch/internal/journal"
)

func newJournalCommand(ctx *commandContext) *cobra.Command {
	journalCmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect recorded migration runs",
	}

	journalCmd.AddCommand(newJournalRunsCommand(ctx))
	journalCmd.AddCommand(newJournalShowCommand(ctx))

	return journalCmd
}

func newJournalRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.requireJournal()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				if runs == nil {
					runs = []*journal.Run{}
				}
				return writeJSON(cmd, runs)
			}
			renderRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Write runs as JSON")
	return cmd
}

type runDetail struct {
	Run   *journal.Run   `json:"run"`
	Files []journal.File `json:"files"`
}

func newJournalShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var showFiles bool

	cmd := &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Show one run and its catalogued files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.requireJournal()
			if err != nil {
				return err
			}
			defer store.Close()

			runID := strings.TrimSpace(args[0])
			run, err := store.GetRun(cmd.Context(), runID)
			if err != nil {
				return err
			}
			var files []journal.File
			if showFiles || jsonOutput {
				files, err = store.RunFiles(cmd.Context(), runID)
				if err != nil {
					return err
				}
			}
			if jsonOutput {
				if files == nil {
					files = []journal.File{}
				}
				return writeJSON(cmd, runDetail{Run: run, Files: files})
			}
			renderRun(cmd.OutOrStdout(), run, files)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Write the run and its files as JSON")
	cmd.Flags().BoolVar(&showFiles, "files", false, "List every catalogued file")
	return cmd
}
