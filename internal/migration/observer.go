package migration

import (
	"mediabatch/internal/batch"
	"mediabatch/internal/transfer"
)

// Observer receives progress while a run executes. FileScanned and FileCopied
// may be called from several goroutines at once.
type Observer interface {
	FileScanned(path string, size int64)
	Planned(plan batch.Plan)
	FileCopied(outcome transfer.Outcome)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) FileScanned(string, int64) {}

func (NopObserver) Planned(batch.Plan) {}

func (NopObserver) FileCopied(transfer.Outcome) {}
