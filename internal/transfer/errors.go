package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDigestMismatch means the bytes written differ from the catalog fingerprint.
	ErrDigestMismatch = errors.New("copy digest mismatch")
	// ErrSizeMismatch means the source changed size since it was catalogued.
	ErrSizeMismatch = errors.New("copy size mismatch")
	// ErrDestinationExists means the destination path is already taken. It is not retried.
	ErrDestinationExists = errors.New("destination already exists")
)

// CopyError reports a file that could not be copied within the attempt budget.
type CopyError struct {
	Source      string
	Destination string
	Attempts    int
	Err         error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("copy %s -> %s failed after %d attempt(s): %v", e.Source, e.Destination, e.Attempts, e.Err)
}

func (e *CopyError) Unwrap() error { return e.Err }

// FailurePolicy controls what happens after a terminal copy failure.
type FailurePolicy string

const (
	// FailCollect finishes every remaining copy and reports failures at the end.
	FailCollect FailurePolicy = "collect"
	// FailFast lets the in-flight chunk finish and then stops.
	FailFast FailurePolicy = "fail-fast"
)

// ParseFailurePolicy accepts the config spelling of a policy.
func ParseFailurePolicy(value string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(FailCollect):
		return FailCollect, nil
	case string(FailFast), "failfast", "fail_fast":
		return FailFast, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q", value)
	}
}

func retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrDestinationExists):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}
