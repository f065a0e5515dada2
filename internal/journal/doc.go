// Package journal persists an audit trail of migration runs in SQLite.
//
// Each run records its source, destination, and tuning, the planned catalog
// (source path, generated name, size, fingerprint, and batch number of every
// unique file), the final per-file copy outcome, and a summary. The journal is
// write-mostly and read by the `mediabatch journal` commands; it is never
// consulted to skip work on a later run.
//
// The schema is embedded and versioned through a single schema_version row.
// A version mismatch fails Open with ErrSchemaMismatch; delete the database to
// start over. Writes retry on SQLITE_BUSY with a bounded backoff.
package journal
