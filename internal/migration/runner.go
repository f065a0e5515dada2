package migration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"mediabatch/internal/batch"
	"mediabatch/internal/catalog"
	"mediabatch/internal/journal"
	"mediabatch/internal/logging"
	"mediabatch/internal/preflight"
	"mediabatch/internal/transfer"
)

// PreflightFunc checks a run before copying starts. A non-nil error stops the run.
type PreflightFunc func(req preflight.Request) ([]preflight.Result, error)

// Runner executes migrations.
type Runner struct {
	fs        afero.Fs
	opts      Options
	logger    *slog.Logger
	journal   Journal
	observer  Observer
	preflight PreflightFunc
	names     catalog.NameFunc
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithFs sets the filesystem for source and destination. Defaults to the host filesystem.
func WithFs(fs afero.Fs) RunnerOption {
	return func(r *Runner) {
		if fs != nil {
			r.fs = fs
		}
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithJournal records the run in j.
func WithJournal(j Journal) RunnerOption {
	return func(r *Runner) {
		if j != nil {
			r.journal = j
		}
	}
}

// WithObserver registers progress callbacks.
func WithObserver(o Observer) RunnerOption {
	return func(r *Runner) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithPreflight runs fn after planning and before the first copy.
func WithPreflight(fn PreflightFunc) RunnerOption {
	return func(r *Runner) {
		r.preflight = fn
	}
}

// WithNameFunc overrides destination name generation.
func WithNameFunc(fn catalog.NameFunc) RunnerOption {
	return func(r *Runner) {
		r.names = fn
	}
}

// NewRunner validates opts and constructs a Runner.
func NewRunner(opts Options, ropts ...RunnerOption) (*Runner, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	r := &Runner{
		fs:       afero.NewOsFs(),
		opts:     opts,
		journal:  nopJournal{},
		observer: NopObserver{},
	}
	for _, opt := range ropts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.NewNop()
	}
	return r, nil
}

func (r *Runner) walker() *catalog.Walker {
	return catalog.NewWalker(r.fs,
		catalog.WithFanOut(r.opts.FanOut),
		catalog.WithTraversalPolicy(r.opts.TraversalPolicy),
		catalog.WithNameFunc(r.names),
		catalog.WithProgress(r.observer.FileScanned),
		catalog.WithLogger(r.logger),
	)
}

// Scan walks the source tree without planning or copying.
func (r *Runner) Scan(ctx context.Context) (*catalog.Catalog, error) {
	return r.walker().Walk(ctx, r.opts.Source)
}

// Run performs one migration. The report is returned even when err is non-nil.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	runID := newRunID()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(r.logger, "migration"))

	report := &Report{
		RunID:       runID,
		Source:      r.opts.Source,
		Destination: r.opts.Destination,
		DryRun:      r.opts.DryRun,
		StartedAt:   time.Now(),
	}

	if err := r.journal.BeginRun(ctx, journal.RunInfo{
		ID:          runID,
		Source:      r.opts.Source,
		Destination: r.opts.Destination,
		DryRun:      r.opts.DryRun,
		BatchSize:   r.opts.BatchSize,
		ChunkSize:   r.opts.ChunkSize,
		StartedAt:   report.StartedAt,
	}); err != nil {
		return report, fmt.Errorf("journal: %w", err)
	}

	logger.Info("migration started",
		logging.String("source", r.opts.Source),
		logging.String("destination", r.opts.Destination),
		logging.Int("batch_size", r.opts.BatchSize),
		logging.Int("chunk_size", r.opts.ChunkSize),
		logging.Bool("dry_run", r.opts.DryRun),
	)

	err := r.run(ctx, logger, report)
	report.FinishedAt = time.Now()
	if err == nil && report.Failed > 0 {
		err = fmt.Errorf("%w: %d of %d files failed to copy", ErrIncomplete, report.Failed, report.Copied+report.Failed)
	}
	if err != nil {
		report.Error = err.Error()
	}

	r.finish(ctx, logger, report, err)
	return report, err
}

func (r *Runner) run(ctx context.Context, logger *slog.Logger, report *Report) error {
	cat, err := r.walker().Walk(ctx, r.opts.Source)
	if err != nil {
		return fmt.Errorf("walk %s: %w", r.opts.Source, err)
	}
	report.Stats = cat.Stats
	report.Skipped = cat.Skipped

	plan, err := batch.Build(cat.Records, r.opts.BatchSize, r.opts.ChunkSize)
	if err != nil {
		return fmt.Errorf("plan batches: %w", err)
	}
	report.applyPlan(plan, r.opts.Destination)
	r.observer.Planned(plan)
	logger.Info("batches planned",
		logging.Int("files", plan.Files()),
		logging.Int("batches", len(plan.Batches)),
		logging.Uint64("bytes", cat.TotalBytes()),
	)

	if err := r.journal.RecordCatalog(ctx, report.RunID, plan); err != nil {
		logging.WarnWithContext(logger, "journal catalog write failed", "journal_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the journal path and free space"),
			logging.String(logging.FieldImpact, "journal will lack this run's file list"),
		)
	}

	if r.opts.DryRun {
		return nil
	}

	if err := r.fs.MkdirAll(r.opts.Destination, 0o755); err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	if r.preflight != nil {
		results, err := r.preflight(preflight.Request{
			Source:      r.opts.Source,
			Destination: r.opts.Destination,
			NeedBytes:   cat.TotalBytes(),
		})
		report.Preflight = results
		if err != nil {
			return err
		}
	}

	executor := transfer.NewExecutor(r.fs,
		transfer.WithAttempts(r.opts.Attempts),
		transfer.WithRetryDelay(r.opts.RetryDelay),
		transfer.WithVerify(r.opts.Verify),
		transfer.WithFailurePolicy(r.opts.FailurePolicy),
		transfer.WithProgress(r.observer.FileCopied),
		transfer.WithLogger(r.logger),
	)
	outcomes, copyErr := executor.Copy(ctx, plan, r.opts.Destination)
	report.applyOutcomes(outcomes)

	// Outcomes of copies that finished are recorded even when ctx was canceled.
	if err := r.journal.RecordOutcomes(context.WithoutCancel(ctx), report.RunID, journalOutcomes(outcomes)); err != nil {
		logging.WarnWithContext(logger, "journal outcome write failed", "journal_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the journal path and free space"),
			logging.String(logging.FieldImpact, "journal file statuses stay pending"),
		)
	}

	var cerr *transfer.CopyError
	if errors.As(copyErr, &cerr) {
		return fmt.Errorf("%w: stopped after first failure: %w", ErrIncomplete, copyErr)
	}
	return copyErr
}

func (r *Runner) finish(ctx context.Context, logger *slog.Logger, report *Report, runErr error) {
	status := journal.RunCompleted
	switch {
	case runErr != nil:
		status = journal.RunFailed
	case report.DryRun:
		status = journal.RunPlanned
	}
	summary := journal.Summary{
		Status:              status,
		EntriesSeen:         report.Stats.EntriesSeen,
		Unique:              report.Stats.Unique,
		Duplicates:          report.Stats.Duplicates,
		FingerprintFailures: report.Stats.FingerprintFailures,
		SkippedDirs:         len(report.Skipped),
		Batches:             len(report.Batches),
		Copied:              report.Copied,
		Failed:              report.Failed,
		BytesCopied:         report.BytesCopied,
		Err:                 runErr,
		FinishedAt:          report.FinishedAt,
	}
	// The summary is written even when ctx was canceled.
	if err := r.journal.FinishRun(context.WithoutCancel(ctx), report.RunID, summary); err != nil {
		logging.WarnWithContext(logger, "journal summary write failed", "journal_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the journal path and free space"),
			logging.String(logging.FieldImpact, "journal shows this run as still running"),
		)
	}

	attrs := []logging.Attr{
		logging.Int("unique", report.Stats.Unique),
		logging.Int("duplicates", report.Stats.Duplicates),
		logging.Int("batches", len(report.Batches)),
		logging.Int("copied", report.Copied),
		logging.Int("failed", report.Failed),
		logging.Duration("elapsed", report.Duration()),
	}
	if runErr != nil {
		attrs = append(attrs, logging.Error(runErr))
		logging.ErrorWithContext(logger, "migration failed", "migration_failed", attrs...)
		return
	}
	logger.Info("migration completed", logging.Args(attrs...)...)
}

func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
