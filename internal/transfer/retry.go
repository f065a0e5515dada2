package transfer

import (
	"context"
	"time"

	"mediabatch/internal/catalog"
	"mediabatch/internal/logging"
)

// copyWithRetry runs up to e.attempts attempts, sleeping delay*attempt between them.
func (e *Executor) copyWithRetry(ctx context.Context, rec catalog.FileRecord, dst string) (int64, int, error) {
	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= e.attempts; attempt++ {
		attempts = attempt
		written, err := e.copyOnce(rec, dst)
		if err == nil {
			return written, attempt, nil
		}
		lastErr = err
		if !retryable(err) || attempt == e.attempts {
			break
		}
		e.logger.Debug("copy attempt failed; retrying",
			logging.String("source", rec.SourcePath),
			logging.Int("attempt", attempt),
			logging.Error(err),
		)
		if err := sleepContext(ctx, e.delay*time.Duration(attempt)); err != nil {
			lastErr = err
			break
		}
	}
	return 0, attempts, lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
