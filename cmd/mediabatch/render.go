package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"mediabatch/internal/catalog"
	"mediabatch/internal/journal"
	"mediabatch/internal/migration"
)

func itoa(n int) string { return strconv.Itoa(n) }

func renderReport(out io.Writer, report *migration.Report) {
	title := "Migration"
	if report.DryRun {
		title = "Migration plan (dry run)"
	}
	fmt.Fprintf(out, "%s %s\n", title, report.RunID)
	fmt.Fprintf(out, "  %s -> %s\n", report.Source, report.Destination)

	pairs := [][2]string{
		{"Entries seen", itoa(report.Stats.EntriesSeen)},
		{"Media files", itoa(report.Stats.MediaCandidates)},
		{"Unique", itoa(report.Stats.Unique)},
		{"Duplicates", itoa(report.Stats.Duplicates)},
		{"Unreadable files", itoa(report.Stats.FingerprintFailures)},
		{"Skipped directories", itoa(len(report.Skipped))},
		{"Unique size", humanize.IBytes(report.Stats.UniqueBytes)},
		{"Batches", itoa(len(report.Batches))},
	}
	if !report.DryRun {
		pairs = append(pairs,
			[2]string{"Copied", itoa(report.Copied)},
			[2]string{"Failed", itoa(report.Failed)},
			[2]string{"Bytes copied", humanize.IBytes(report.BytesCopied)},
		)
	}
	pairs = append(pairs, [2]string{"Elapsed", report.Duration().Round(time.Millisecond).String()})
	fmt.Fprintln(out, renderSummary(pairs))

	if len(report.Batches) > 0 {
		rows := make([][]string, 0, len(report.Batches))
		for _, b := range report.Batches {
			rows = append(rows, []string{itoa(b.Number), b.Dir, itoa(b.Files), humanize.IBytes(b.Bytes)})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Batch", "Directory", "Files", "Size"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignRight, alignRight},
		))
	}

	if failed := failedPreflight(report); len(failed) > 0 {
		fmt.Fprintln(out, "Preflight failures:")
		for _, line := range failed {
			fmt.Fprintf(out, "  - %s\n", line)
		}
	}
	renderSkipped(out, report.Skipped)

	if len(report.Failures) > 0 {
		rows := make([][]string, 0, len(report.Failures))
		for _, f := range report.Failures {
			rows = append(rows, []string{f.Source, f.Destination, itoa(f.Attempts), f.Error})
		}
		fmt.Fprintln(out, "Failed copies:")
		fmt.Fprintln(out, renderTable(
			[]string{"Source", "Destination", "Attempts", "Error"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
		))
	}
}

func failedPreflight(report *migration.Report) []string {
	var lines []string
	for _, r := range report.Preflight {
		if !r.Passed {
			lines = append(lines, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	return lines
}

func renderSkipped(out io.Writer, skipped []catalog.SkippedDir) {
	if len(skipped) == 0 {
		return
	}
	fmt.Fprintln(out, "Skipped directories:")
	for _, s := range skipped {
		fmt.Fprintf(out, "  - %s (%s)\n", s.Path, s.Reason)
	}
}

func renderScan(out io.Writer, cat *catalog.Catalog, showDuplicates bool) {
	fmt.Fprintf(out, "Scan of %s\n", cat.Root)
	fmt.Fprintln(out, renderSummary([][2]string{
		{"Entries seen", itoa(cat.Stats.EntriesSeen)},
		{"Directories", itoa(cat.Stats.Directories)},
		{"Media files", itoa(cat.Stats.MediaCandidates)},
		{"Unique", itoa(cat.Stats.Unique)},
		{"Duplicates", itoa(cat.Stats.Duplicates)},
		{"Unreadable files", itoa(cat.Stats.FingerprintFailures)},
		{"Unique size", humanize.IBytes(cat.Stats.UniqueBytes)},
	}))
	renderSkipped(out, cat.Skipped)

	if showDuplicates && len(cat.Duplicates) > 0 {
		rows := make([][]string, 0, len(cat.Duplicates))
		for _, d := range cat.Duplicates {
			rows = append(rows, []string{d.SourcePath, d.RetainedPath, d.Fingerprint.Short()})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Duplicate", "Retained", "Fingerprint"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft},
		))
	}
}

func renderRuns(out io.Writer, runs []*journal.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded")
		return
	}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			string(run.Status),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Source,
			run.Destination,
			itoa(run.Unique),
			itoa(run.Copied),
			itoa(run.Failed),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Run", "Status", "Started", "Source", "Destination", "Unique", "Copied", "Failed"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
	))
}

func renderRun(out io.Writer, run *journal.Run, files []journal.File) {
	finished := "-"
	if run.FinishedAt != nil {
		finished = run.FinishedAt.Local().Format("2006-01-02 15:04:05")
	}
	fmt.Fprintf(out, "Run %s (%s)\n", run.ID, run.Status)
	fmt.Fprintln(out, renderSummary([][2]string{
		{"Source", run.Source},
		{"Destination", run.Destination},
		{"Dry run", yesNo(run.DryRun)},
		{"Started", run.StartedAt.Local().Format("2006-01-02 15:04:05")},
		{"Finished", finished},
		{"Unique", itoa(run.Unique)},
		{"Duplicates", itoa(run.Duplicates)},
		{"Batches", itoa(run.Batches)},
		{"Copied", itoa(run.Copied)},
		{"Failed", itoa(run.Failed)},
		{"Bytes copied", humanize.IBytes(run.BytesCopied)},
	}))
	if run.ErrorMessage != "" {
		fmt.Fprintf(out, "Error: %s\n", run.ErrorMessage)
	}
	if len(files) == 0 {
		return
	}
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		rows = append(rows, []string{
			itoa(f.Batch),
			f.SourcePath,
			f.DestinationName,
			humanize.IBytes(f.SizeBytes),
			string(f.Status),
			strings.TrimSpace(f.ErrorMessage),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Batch", "Source", "Name", "Size", "Status", "Error"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	))
}
