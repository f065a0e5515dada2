package transfer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"mediabatch/internal/batch"
	"mediabatch/internal/catalog"
	"mediabatch/internal/logging"
)

const (
	// DefaultAttempts is the total number of tries per file.
	DefaultAttempts = 3
	// DefaultRetryDelay is the base of the linear backoff between tries.
	DefaultRetryDelay = 100 * time.Millisecond
)

// Outcome is the result of copying one record.
type Outcome struct {
	Record      catalog.FileRecord
	Batch       int
	Destination string
	Attempts    int
	Bytes       int64
	Err         error
}

// OK reports whether the copy succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// ProgressFunc receives every outcome as soon as it is known. It may be called
// from several goroutines at once.
type ProgressFunc func(Outcome)

// Executor copies batches into a destination tree.
type Executor struct {
	fs       afero.Fs
	attempts int
	delay    time.Duration
	verify   bool
	policy   FailurePolicy
	progress ProgressFunc
	logger   *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithAttempts sets the total number of attempts per file.
func WithAttempts(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.attempts = n
		}
	}
}

// WithRetryDelay sets the base backoff; attempt k waits delay*k before attempt k+1.
func WithRetryDelay(d time.Duration) Option {
	return func(e *Executor) {
		if d >= 0 {
			e.delay = d
		}
	}
}

// WithVerify toggles digest verification of written bytes.
func WithVerify(verify bool) Option {
	return func(e *Executor) {
		e.verify = verify
	}
}

// WithFailurePolicy selects collect or fail-fast behaviour.
func WithFailurePolicy(policy FailurePolicy) Option {
	return func(e *Executor) {
		if policy != "" {
			e.policy = policy
		}
	}
}

// WithProgress registers an outcome callback.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Executor) {
		e.progress = fn
	}
}

// WithLogger sets the executor logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// NewExecutor constructs an Executor writing to fs. A nil fs means the host filesystem.
func NewExecutor(fs afero.Fs, opts ...Option) *Executor {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	e := &Executor{
		fs:       fs,
		attempts: DefaultAttempts,
		delay:    DefaultRetryDelay,
		verify:   true,
		policy:   FailCollect,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.NewComponentLogger(e.logger, "transfer")
	return e
}

// Copy runs every batch of plan below root in order. Under FailFast it stops
// after the first batch that produced a terminal failure and returns that
// failure; under FailCollect it returns a nil error and failures are reported
// through the outcomes.
func (e *Executor) Copy(ctx context.Context, plan batch.Plan, root string) ([]Outcome, error) {
	total := plan.Files()
	outcomes := make([]Outcome, 0, total)
	sampler := logging.NewProgressSampler(10)
	for _, b := range plan.Batches {
		batchOutcomes, err := e.CopyBatch(ctx, b, b.Dir(root))
		outcomes = append(outcomes, batchOutcomes...)
		if err != nil {
			return outcomes, err
		}
		if sampler.ShouldLog("copy", len(outcomes), total) {
			e.logger.Info("copy progress",
				logging.Int("batches_done", b.Number),
				logging.Int("batches_total", len(plan.Batches)),
				logging.Int("files_done", len(outcomes)),
				logging.Int("files_total", total),
			)
		}
	}
	return outcomes, nil
}

// CopyBatch copies b into dir, creating dir if needed. It always returns the
// outcomes it produced, including when it stops early. A batch whose copies
// all succeeded returns a nil error even if ctx was canceled meanwhile.
func (e *Executor) CopyBatch(ctx context.Context, b batch.Batch, dir string) ([]Outcome, error) {
	ctx = logging.WithBatch(ctx, b.Number)
	logger := logging.WithContext(ctx, e.logger)

	if err := e.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create batch directory %s: %w", dir, err)
	}
	logger.Info("batch copy started",
		logging.String("dir", dir),
		logging.Int("files", b.Len()),
		logging.Int("chunks", len(b.Chunks)),
	)

	chunks := b.Chunks
	if len(chunks) == 0 && b.Len() > 0 {
		chunks = [][]catalog.FileRecord{b.Records}
	}

	started := time.Now()
	outcomes := make([]Outcome, 0, b.Len())
	failed := 0
	for _, members := range chunks {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		results := e.copyChunk(ctx, b.Number, members, dir, logger)
		outcomes = append(outcomes, results...)

		var first *CopyError
		for _, res := range results {
			if res.Err == nil {
				continue
			}
			failed++
			if first == nil {
				errors.As(res.Err, &first)
			}
		}
		if first != nil && e.policy == FailFast {
			logging.ErrorWithContext(logger, "batch copy stopped", "copy_fail_fast",
				logging.String("dir", dir),
				logging.Int("copied", len(outcomes)-failed),
				logging.Int("failed", failed),
				logging.Error(first),
				logging.String(logging.FieldErrorHint, "fix the failing file and rerun into a fresh destination"),
			)
			return outcomes, first
		}
	}

	logger.Info("batch copy completed",
		logging.String("dir", dir),
		logging.Int("copied", len(outcomes)-failed),
		logging.Int("failed", failed),
		logging.Duration("elapsed", time.Since(started)),
	)
	if failed == 0 {
		return outcomes, nil
	}
	return outcomes, ctx.Err()
}

func (e *Executor) copyChunk(ctx context.Context, number int, members []catalog.FileRecord, dir string, logger *slog.Logger) []Outcome {
	results := make([]Outcome, len(members))
	var g errgroup.Group
	for i, rec := range members {
		g.Go(func() error {
			dst := filepath.Join(dir, rec.DestinationName)
			written, attempts, err := e.copyWithRetry(ctx, rec, dst)
			out := Outcome{
				Record:      rec,
				Batch:       number,
				Destination: dst,
				Attempts:    attempts,
				Bytes:       written,
			}
			if err != nil {
				out.Err = &CopyError{Source: rec.SourcePath, Destination: dst, Attempts: attempts, Err: err}
				logging.ErrorWithContext(logger, "copy failed", "copy_failed",
					logging.String("source", rec.SourcePath),
					logging.String("destination", dst),
					logging.Int("attempts", attempts),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check source readability and destination free space"),
				)
			} else {
				logger.Debug("file copied",
					logging.String("source", rec.SourcePath),
					logging.String("destination", dst),
					logging.Int("attempts", attempts),
				)
			}
			results[i] = out
			if e.progress != nil {
				e.progress(out)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Failures extracts the terminal copy errors from outcomes in order.
func Failures(outcomes []Outcome) []*CopyError {
	var out []*CopyError
	for _, o := range outcomes {
		var cerr *CopyError
		if errors.As(o.Err, &cerr) {
			out = append(out, cerr)
		}
	}
	return out
}
