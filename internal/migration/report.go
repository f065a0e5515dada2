package migration

import (
	"errors"
	"time"

	"mediabatch/internal/batch"
	"mediabatch/internal/catalog"
	"mediabatch/internal/preflight"
	"mediabatch/internal/transfer"
)

// ErrIncomplete is returned when at least one file could not be copied.
var ErrIncomplete = errors.New("migration incomplete")

// BatchSummary describes one planned destination directory.
type BatchSummary struct {
	Number int    `json:"number"`
	Dir    string `json:"dir"`
	Files  int    `json:"files"`
	Bytes  uint64 `json:"bytes"`
}

// Failure describes a file that exhausted its copy attempts.
type Failure struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Attempts    int    `json:"attempts"`
	Error       string `json:"error"`
}

// Report summarises a run.
type Report struct {
	RunID       string               `json:"run_id"`
	Source      string               `json:"source"`
	Destination string               `json:"destination"`
	DryRun      bool                 `json:"dry_run"`
	StartedAt   time.Time            `json:"started_at"`
	FinishedAt  time.Time            `json:"finished_at"`
	Stats       catalog.Stats        `json:"stats"`
	Skipped     []catalog.SkippedDir `json:"skipped,omitempty"`
	Batches     []BatchSummary       `json:"batches"`
	Preflight   []preflight.Result   `json:"preflight,omitempty"`
	Copied      int                  `json:"copied"`
	Failed      int                  `json:"failed"`
	BytesCopied uint64               `json:"bytes_copied"`
	Failures    []Failure            `json:"failures,omitempty"`
	Error       string               `json:"error,omitempty"`
}

// Duration returns the wall time of the run.
func (r *Report) Duration() time.Duration {
	if r == nil || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// OK reports whether every planned file was copied.
func (r *Report) OK() bool {
	return r != nil && r.Error == "" && r.Failed == 0
}

func (r *Report) applyPlan(plan batch.Plan, root string) {
	r.Batches = make([]BatchSummary, 0, len(plan.Batches))
	for _, b := range plan.Batches {
		dir := b.DirName
		if root != "" {
			dir = b.Dir(root)
		}
		r.Batches = append(r.Batches, BatchSummary{
			Number: b.Number,
			Dir:    dir,
			Files:  b.Len(),
			Bytes:  b.Bytes(),
		})
	}
}

func (r *Report) applyOutcomes(outcomes []transfer.Outcome) {
	for _, o := range outcomes {
		if o.OK() {
			r.Copied++
			if o.Bytes > 0 {
				r.BytesCopied += uint64(o.Bytes)
			}
			continue
		}
		r.Failed++
		r.Failures = append(r.Failures, Failure{
			Source:      o.Record.SourcePath,
			Destination: o.Destination,
			Attempts:    o.Attempts,
			Error:       o.Err.Error(),
		})
	}
}
