package migration_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"

	"mediabatch/internal/batch"
	"mediabatch/internal/config"
	"mediabatch/internal/journal"
	"mediabatch/internal/migration"
	"mediabatch/internal/preflight"
	"mediabatch/internal/testsupport"
	"mediabatch/internal/transfer"
)

func testOptions(t *testing.T, batchSize, chunkSize int, extra ...testsupport.ConfigOption) migration.Options {
	t.Helper()
	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithBatchSize(batchSize, chunkSize)}, extra...)...)
	opts, err := migration.OptionsFromConfig(cfg, "/src", "/dest")
	if err != nil {
		t.Fatalf("OptionsFromConfig: %v", err)
	}
	return opts
}

func newRunner(t *testing.T, opts migration.Options, ropts ...migration.RunnerOption) *migration.Runner {
	t.Helper()
	runner, err := migration.NewRunner(opts, ropts...)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return runner
}

func TestRunSmallTreeEndToEnd(t *testing.T) {
	fs := afero.NewMemMapFs()
	testsupport.WriteTree(t, fs, "/src", map[string]string{
		"a.jpg":     "same bytes",
		"b.jpg":     "same bytes",
		"c.txt":     "not media",
		"sub/d.png": "other bytes",
	})

	report, err := newRunner(t, testOptions(t, 2, 2), migration.WithFs(fs)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Stats.Unique != 2 || report.Stats.Duplicates != 1 {
		t.Fatalf("unexpected stats: %+v", report.Stats)
	}
	if report.Copied != 2 || report.Failed != 0 || !report.OK() {
		t.Fatalf("unexpected copy counts: copied=%d failed=%d", report.Copied, report.Failed)
	}
	if report.BytesCopied != uint64(len("same bytes")+len("other bytes")) {
		t.Fatalf("unexpected bytes copied: %d", report.BytesCopied)
	}
	if len(report.Batches) != 1 || report.Batches[0].Dir != "/dest/1" || report.Batches[0].Files != 2 {
		t.Fatalf("unexpected batches: %+v", report.Batches)
	}

	if top := testsupport.ReadDirNames(t, fs, "/dest"); len(top) != 1 || top[0] != "1" {
		t.Fatalf("expected a single batch dir, got %v", top)
	}
	names := testsupport.ReadDirNames(t, fs, "/dest/1")
	if len(names) != 2 {
		t.Fatalf("expected 2 files in batch 1, got %v", names)
	}
	var sawA, sawD bool
	for _, name := range names {
		switch {
		case strings.HasPrefix(name, "a-") && strings.HasSuffix(name, ".jpg"):
			sawA = true
			data, _ := afero.ReadFile(fs, filepath.Join("/dest/1", name))
			if string(data) != "same bytes" {
				t.Fatalf("unexpected content for %s", name)
			}
		case strings.HasPrefix(name, "d-") && strings.HasSuffix(name, ".png"):
			sawD = true
		}
	}
	if !sawA || !sawD {
		t.Fatalf("expected renamed a.jpg and d.png, got %v", names)
	}
}

func TestRunLargeCatalogFillsThreeBatches(t *testing.T) {
	if testing.Short() {
		t.Skip("large catalog test skipped in short mode")
	}
	fs := afero.NewMemMapFs()
	for i := range 25_000 {
		testsupport.WriteFile(t, fs, fmt.Sprintf("/src/d%02d/f%05d.jpg", i%50, i), []byte(fmt.Sprintf("file-%d", i)))
	}

	report, err := newRunner(t, testOptions(t, 10_000, 50), migration.WithFs(fs)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Copied != 25_000 {
		t.Fatalf("expected 25000 copies, got %d", report.Copied)
	}

	want := map[string]int{"1": 10_000, "2": 10_000, "3": 5_000}
	top := testsupport.ReadDirNames(t, fs, "/dest")
	if len(top) != len(want) {
		t.Fatalf("expected %d batch dirs, got %v", len(want), top)
	}
	for dir, count := range want {
		if got := len(testsupport.ReadDirNames(t, fs, filepath.Join("/dest", dir))); got != count {
			t.Fatalf("batch %s: expected %d files, got %d", dir, count, got)
		}
	}
}

func TestRunDryRunDoesNotTouchDestination(t *testing.T) {
	fs := afero.NewMemMapFs()
	testsupport.WriteTree(t, fs, "/src", map[string]string{"a.jpg": "a", "b.mov": "b", "c.mp4": "c"})

	opts := testOptions(t, 2, 1)
	opts.DryRun = true
	report, err := newRunner(t, opts, migration.WithFs(fs)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Batches) != 2 || report.Batches[1].Files != 1 {
		t.Fatalf("unexpected planned batches: %+v", report.Batches)
	}
	if report.Copied != 0 {
		t.Fatalf("dry run copied %d files", report.Copied)
	}
	if exists, _ := afero.DirExists(fs, "/dest"); exists {
		t.Fatal("dry run created the destination")
	}
}

// openCountingFs fails Open of one path after it has been opened limit times.
type openCountingFs struct {
	afero.Fs
	path  string
	limit int32
	opens atomic.Int32
}

func (f *openCountingFs) Open(name string) (afero.File, error) {
	if filepath.Clean(name) == f.path && f.opens.Add(1) > f.limit {
		return nil, os.ErrPermission
	}
	return f.Fs.Open(name)
}

func TestRunReportsIncompleteMigrationAndJournals(t *testing.T) {
	base := afero.NewMemMapFs()
	testsupport.WriteTree(t, base, "/src", map[string]string{"a.jpg": "a", "b.jpg": "b"})
	// The walker opens a.jpg once to fingerprint it; every copy attempt fails.
	fs := &openCountingFs{Fs: base, path: "/src/a.jpg", limit: 1}

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenJournal(t, cfg)
	opts, err := migration.OptionsFromConfig(cfg, "/src", "/dest")
	if err != nil {
		t.Fatalf("OptionsFromConfig: %v", err)
	}

	report, err := newRunner(t, opts, migration.WithFs(fs), migration.WithJournal(store)).Run(context.Background())
	if !errors.Is(err, migration.ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete, got %v", err)
	}
	if report.Copied != 1 || report.Failed != 1 || report.OK() {
		t.Fatalf("unexpected report: copied=%d failed=%d", report.Copied, report.Failed)
	}
	if len(report.Failures) != 1 || report.Failures[0].Source != "/src/a.jpg" || report.Failures[0].Attempts != 3 {
		t.Fatalf("unexpected failures: %+v", report.Failures)
	}

	run, err := store.GetRun(context.Background(), report.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != journal.RunFailed || run.Copied != 1 || run.Failed != 1 {
		t.Fatalf("unexpected journal run: %+v", run)
	}
	files, err := store.RunFiles(context.Background(), report.RunID)
	if err != nil {
		t.Fatalf("RunFiles: %v", err)
	}
	if len(files) != 2 || files[0].Status != journal.FileFailed || files[1].Status != journal.FileCopied {
		t.Fatalf("unexpected journal files: %+v", files)
	}
}

func TestRunFailFastStopsEarly(t *testing.T) {
	base := afero.NewMemMapFs()
	testsupport.WriteTree(t, base, "/src", map[string]string{"a.jpg": "a", "b.jpg": "b", "c.jpg": "c"})
	fs := &openCountingFs{Fs: base, path: "/src/a.jpg", limit: 1}

	opts := testOptions(t, 1, 1, testsupport.WithFailFast())
	report, err := newRunner(t, opts, migration.WithFs(fs)).Run(context.Background())

	var cerr *transfer.CopyError
	if !errors.As(err, &cerr) || !errors.Is(err, migration.ErrIncomplete) {
		t.Fatalf("expected ErrIncomplete wrapping CopyError, got %v", err)
	}
	if report.Copied != 0 || report.Failed != 1 {
		t.Fatalf("expected run to stop after batch 1, got copied=%d failed=%d", report.Copied, report.Failed)
	}
	if exists, _ := afero.DirExists(fs, "/dest/2"); exists {
		t.Fatal("batch 2 should not have started")
	}
}

func TestRunPreflightFailureStopsBeforeCopy(t *testing.T) {
	fs := afero.NewMemMapFs()
	testsupport.WriteTree(t, fs, "/src", map[string]string{"a.jpg": "a"})

	var got preflight.Request
	check := func(req preflight.Request) ([]preflight.Result, error) {
		got = req
		results := []preflight.Result{{Name: "Destination free space", Detail: "too small"}}
		return results, preflight.Err(results)
	}

	report, err := newRunner(t, testOptions(t, 10, 5), migration.WithFs(fs), migration.WithPreflight(check)).Run(context.Background())
	if !errors.Is(err, preflight.ErrFailed) {
		t.Fatalf("expected preflight failure, got %v", err)
	}
	if got.NeedBytes != 1 || got.Destination != "/dest" {
		t.Fatalf("unexpected preflight request: %+v", got)
	}
	if len(report.Preflight) != 1 || report.Error == "" {
		t.Fatalf("expected preflight results in report: %+v", report)
	}
	if exists, _ := afero.DirExists(fs, "/dest/1"); exists {
		t.Fatal("no batch should be written after a failed preflight")
	}
}

type recordingObserver struct {
	mu      sync.Mutex
	scanned int
	planned int
	copied  int
}

func (o *recordingObserver) FileScanned(string, int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.scanned++
}

func (o *recordingObserver) Planned(plan batch.Plan) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.planned = plan.Files()
}

func (o *recordingObserver) FileCopied(transfer.Outcome) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.copied++
}

// cancelOnCopy cancels the run after its first successful copy.
type cancelOnCopy struct {
	migration.NopObserver
	cancel context.CancelFunc
}

func (o cancelOnCopy) FileCopied(out transfer.Outcome) {
	if out.OK() {
		o.cancel()
	}
}

func TestRunJournalsCopiesFinishedBeforeCancellation(t *testing.T) {
	fs := afero.NewMemMapFs()
	testsupport.WriteTree(t, fs, "/src", map[string]string{"a.jpg": "a", "b.jpg": "b"})

	cfg := testsupport.NewConfig(t, testsupport.WithBatchSize(1, 1))
	store := testsupport.MustOpenJournal(t, cfg)
	opts, err := migration.OptionsFromConfig(cfg, "/src", "/dest")
	if err != nil {
		t.Fatalf("OptionsFromConfig: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	report, err := newRunner(t, opts,
		migration.WithFs(fs),
		migration.WithJournal(store),
		migration.WithObserver(cancelOnCopy{cancel: cancel}),
	).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if report.Copied != 1 {
		t.Fatalf("expected one copy before cancellation, got %d", report.Copied)
	}

	files, err := store.RunFiles(context.Background(), report.RunID)
	if err != nil {
		t.Fatalf("RunFiles: %v", err)
	}
	if len(files) != 2 || files[0].Status != journal.FileCopied || files[1].Status != journal.FilePending {
		t.Fatalf("unexpected journal files: %+v", files)
	}
	run, err := store.GetRun(context.Background(), report.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != journal.RunFailed || run.Copied != 1 {
		t.Fatalf("unexpected journal run: %+v", run)
	}
}

func TestRunNotifiesObserver(t *testing.T) {
	fs := afero.NewMemMapFs()
	testsupport.WriteTree(t, fs, "/src", map[string]string{"a.jpg": "a", "b.jpg": "a", "c.heic": "c"})

	obs := &recordingObserver{}
	if _, err := newRunner(t, testOptions(t, 10, 5), migration.WithFs(fs), migration.WithObserver(obs)).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if obs.scanned != 3 || obs.planned != 2 || obs.copied != 2 {
		t.Fatalf("unexpected observer counts: %+v", obs)
	}
}

func TestRunCanceledContext(t *testing.T) {
	fs := afero.NewMemMapFs()
	testsupport.WriteTree(t, fs, "/src", map[string]string{"a.jpg": "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := newRunner(t, testOptions(t, 10, 5), migration.WithFs(fs)).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if report.FinishedAt.Before(report.StartedAt) {
		t.Fatal("expected finish time to be recorded")
	}
}

func TestScanDoesNotCopy(t *testing.T) {
	fs := afero.NewMemMapFs()
	testsupport.WriteTree(t, fs, "/src", map[string]string{"a.jpg": "a", "b.jpg": "a"})

	opts := testOptions(t, 10, 5)
	opts.Destination = ""
	opts.DryRun = true
	cat, err := newRunner(t, opts, migration.WithFs(fs)).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if cat.Len() != 1 || len(cat.Duplicates) != 1 {
		t.Fatalf("unexpected scan result: %+v", cat.Stats)
	}
}

func TestNewRunnerValidatesOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*migration.Options)
	}{
		{"missing source", func(o *migration.Options) { o.Source = "" }},
		{"missing destination", func(o *migration.Options) { o.Destination = "" }},
		{"zero batch", func(o *migration.Options) { o.BatchSize = 0 }},
		{"zero chunk", func(o *migration.Options) { o.ChunkSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions(t, 10, 5)
			tt.mutate(&opts)
			if _, err := migration.NewRunner(opts); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Migration.FailurePolicy = config.FailurePolicyFailFast
	cfg.Migration.TraversalPolicy = config.TraversalPolicySkip
	cfg.Migration.RetryDelayMS = 250

	opts, err := migration.OptionsFromConfig(&cfg, "/in", "/out")
	if err != nil {
		t.Fatalf("OptionsFromConfig: %v", err)
	}
	if opts.FailurePolicy != transfer.FailFast || opts.TraversalPolicy != "skip" {
		t.Fatalf("unexpected policies: %+v", opts)
	}
	if opts.RetryDelay != 250*time.Millisecond || opts.Attempts != 3 || opts.FanOut != 10 || !opts.Verify {
		t.Fatalf("unexpected tuning: %+v", opts)
	}
}

func TestLockIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "mediabatch.lock")

	unlock, err := migration.Lock(path)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if _, err := migration.Lock(path); !errors.Is(err, migration.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if err := unlock(); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	again, err := migration.Lock(path)
	if err != nil {
		t.Fatalf("Lock after unlock: %v", err)
	}
	_ = again()
}
