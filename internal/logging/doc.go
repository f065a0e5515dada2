// Package logging assembles structured slog loggers and formatting helpers used
// across mediabatch.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so the walker, copy executor,
// and run orchestration tag their lines with the run ID and batch number. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
package logging
