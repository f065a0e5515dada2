package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotDirectory is returned when the walk root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// TraversalError reports a directory that could not be listed or an entry
// whose metadata could not be read.
type TraversalError struct {
	Op   string
	Path string
	Err  error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *TraversalError) Unwrap() error { return e.Err }

// TraversalPolicy decides what a TraversalError below the root does to the walk.
type TraversalPolicy string

const (
	// TraversalAbort fails the whole walk.
	TraversalAbort TraversalPolicy = "abort"
	// TraversalSkip drops the unreadable subtree and records it in Catalog.Skipped.
	TraversalSkip TraversalPolicy = "skip"
)

// ParseTraversalPolicy accepts the config spelling of a policy.
func ParseTraversalPolicy(value string) (TraversalPolicy, error) {
	switch TraversalPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", TraversalAbort:
		return TraversalAbort, nil
	case TraversalSkip:
		return TraversalSkip, nil
	default:
		return "", fmt.Errorf("unknown traversal policy %q", value)
	}
}
