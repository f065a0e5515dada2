// Package transfer copies planned batches into the destination tree.
//
// Batches run one after another and the chunks of a batch run one after
// another; the files inside a chunk are copied in parallel. Every attempt
// streams the source into a hidden temporary file next to the destination,
// hashing while writing, fsyncs it, verifies the digest against the catalog
// fingerprint, and renames it into place. A failed attempt removes its
// temporary file, so a destination path either holds a complete verified copy
// or nothing. Existing destination files are never replaced.
//
// Failed attempts are retried with a linear backoff that honours context
// cancellation. A file that exhausts its attempts yields a CopyError; the
// FailurePolicy decides whether the executor keeps going (collect) or stops
// after the current chunk (fail-fast).
package transfer
