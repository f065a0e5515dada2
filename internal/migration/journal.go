package migration

import (
	"context"

	"mediabatch/internal/batch"
	"mediabatch/internal/journal"
	"mediabatch/internal/transfer"
)

// Journal is the audit sink a Runner writes to. *journal.Store satisfies it.
type Journal interface {
	BeginRun(ctx context.Context, info journal.RunInfo) error
	RecordCatalog(ctx context.Context, runID string, plan batch.Plan) error
	RecordOutcomes(ctx context.Context, runID string, outcomes []journal.Outcome) error
	FinishRun(ctx context.Context, runID string, summary journal.Summary) error
}

type nopJournal struct{}

func (nopJournal) BeginRun(context.Context, journal.RunInfo) error { return nil }

func (nopJournal) RecordCatalog(context.Context, string, batch.Plan) error { return nil }

func (nopJournal) RecordOutcomes(context.Context, string, []journal.Outcome) error { return nil }

func (nopJournal) FinishRun(context.Context, string, journal.Summary) error { return nil }

func journalOutcomes(outcomes []transfer.Outcome) []journal.Outcome {
	out := make([]journal.Outcome, 0, len(outcomes))
	for _, o := range outcomes {
		out = append(out, journal.Outcome{
			SourcePath: o.Record.SourcePath,
			Attempts:   o.Attempts,
			Err:        o.Err,
		})
	}
	return out
}
