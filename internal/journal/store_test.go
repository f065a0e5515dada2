package journal_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"mediabatch/internal/batch"
	"mediabatch/internal/catalog"
	"mediabatch/internal/journal"
	"mediabatch/internal/media"
	"mediabatch/internal/testsupport"
)

func samplePlan(t *testing.T, n, capacity int) batch.Plan {
	t.Helper()
	records := make([]catalog.FileRecord, n)
	for i := range records {
		records[i] = catalog.FileRecord{
			SourcePath:      fmt.Sprintf("/src/%02d.jpg", i),
			DestinationName: fmt.Sprintf("%02d-id.jpg", i),
			SizeBytes:       uint64(100 + i),
			Fingerprint:     media.Fingerprint(fmt.Sprintf("%064x", i+1)),
		}
	}
	plan, err := batch.Build(records, capacity, 2)
	if err != nil {
		t.Fatalf("batch.Build: %v", err)
	}
	return plan
}

func TestRunLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := store.BeginRun(ctx, journal.RunInfo{
		ID:          "run-1",
		Source:      "/src",
		Destination: "/dest",
		BatchSize:   2,
		ChunkSize:   2,
		StartedAt:   started,
	}); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	plan := samplePlan(t, 3, 2)
	if err := store.RecordCatalog(ctx, "run-1", plan); err != nil {
		t.Fatalf("RecordCatalog: %v", err)
	}
	if err := store.RecordOutcomes(ctx, "run-1", []journal.Outcome{
		{SourcePath: "/src/00.jpg", Attempts: 1},
		{SourcePath: "/src/01.jpg", Attempts: 3, Err: errors.New("disk full")},
	}); err != nil {
		t.Fatalf("RecordOutcomes: %v", err)
	}
	if err := store.FinishRun(ctx, "run-1", journal.Summary{
		Unique:      3,
		Batches:     2,
		Copied:      1,
		Failed:      1,
		BytesCopied: 100,
	}); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	run, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != journal.RunFailed {
		t.Fatalf("expected failed status when a copy failed, got %q", run.Status)
	}
	if !run.StartedAt.Equal(started) || run.FinishedAt == nil {
		t.Fatalf("unexpected timestamps: %v %v", run.StartedAt, run.FinishedAt)
	}
	if run.Copied != 1 || run.Failed != 1 || run.Batches != 2 || run.BytesCopied != 100 {
		t.Fatalf("unexpected summary: %+v", run)
	}

	files, err := store.RunFiles(ctx, "run-1")
	if err != nil {
		t.Fatalf("RunFiles: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("expected 3 files, got %d", len(files))
	}
	if files[0].Status != journal.FileCopied || files[0].Batch != 1 || files[0].Seq != 1 {
		t.Fatalf("unexpected first file: %+v", files[0])
	}
	if files[1].Status != journal.FileFailed || files[1].Attempts != 3 || files[1].ErrorMessage != "disk full" {
		t.Fatalf("unexpected failed file: %+v", files[1])
	}
	if files[2].Status != journal.FilePending || files[2].Batch != 2 {
		t.Fatalf("unexpected pending file: %+v", files[2])
	}
	if files[2].Fingerprint != plan.Batches[1].Records[0].Fingerprint || files[2].SizeBytes != 102 {
		t.Fatalf("catalog fields not persisted: %+v", files[2])
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		if err := store.BeginRun(ctx, journal.RunInfo{
			ID:        id,
			Source:    "/src",
			BatchSize: 10,
			ChunkSize: 5,
			DryRun:    id == "mid",
			StartedAt: base.Add(time.Duration(i) * time.Hour),
		}); err != nil {
			t.Fatalf("BeginRun %s: %v", id, err)
		}
	}

	runs, err := store.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 3 || runs[0].ID != "new" || runs[2].ID != "old" {
		t.Fatalf("unexpected order: %v", runs)
	}
	if !runs[1].DryRun || runs[1].Status != journal.RunPlanned {
		t.Fatalf("expected dry run to be planned, got %+v", runs[1])
	}
	if runs[0].Status != journal.RunRunning {
		t.Fatalf("expected running status, got %q", runs[0].Status)
	}

	limited, err := store.ListRuns(ctx, 1)
	if err != nil {
		t.Fatalf("ListRuns limit: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "new" {
		t.Fatalf("unexpected limited runs: %v", limited)
	}
}

func TestGetRunNotFound(t *testing.T) {
	store := testsupport.MustOpenJournal(t, testsupport.NewConfig(t))

	if _, err := store.GetRun(context.Background(), "missing"); !errors.Is(err, journal.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.FinishRun(context.Background(), "missing", journal.Summary{}); !errors.Is(err, journal.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from FinishRun, got %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	store, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.BeginRun(context.Background(), journal.RunInfo{ID: "persisted", BatchSize: 1, ChunkSize: 1}); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := testsupport.MustOpenJournal(t, cfg)
	if _, err := reopened.GetRun(context.Background(), "persisted"); err != nil {
		t.Fatalf("expected run to survive reopen: %v", err)
	}
}

func TestRecordCatalogRejectsUnknownRun(t *testing.T) {
	store := testsupport.MustOpenJournal(t, testsupport.NewConfig(t))

	err := store.RecordCatalog(context.Background(), "ghost", samplePlan(t, 1, 1))
	if err == nil {
		t.Fatal("expected foreign key violation for unknown run")
	}
}
