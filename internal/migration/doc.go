// Package migration wires the walker, planner, and copy executor into a
// single run and produces the run Report.
//
// A Runner walks the source tree, plans batches, records the catalog in the
// journal, runs preflight checks, copies every batch, and records outcomes.
// Dry runs stop after planning. The Runner never decides process exit codes;
// it returns ErrIncomplete when any file failed so callers cannot mistake a
// partial migration for a successful one.
//
// Lock guards a state directory so two migrations cannot run concurrently on
// the same host.
package migration
