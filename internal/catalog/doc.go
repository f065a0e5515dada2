// Package catalog walks a source tree and produces the ordered list of unique
// media files to migrate.
//
// The Walker lists each directory, processes its children in groups of at
// most FanOut entries concurrently, fingerprints media files, and recurses
// into subdirectories. Every directory task returns its own ordered candidate
// list; lists are merged at join points so no catalog is shared between
// goroutines. Once traversal completes the candidates are offered to the
// DedupIndex in enumeration order, so the retained copy of a duplicated file
// is the same on every run over the same tree.
//
// Each retained file receives a destination name from a NameFunc. The default
// keeps the source stem (NFC normalised) and extension and inserts a UUIDv7,
// which keeps names unique even when unrelated source directories hold files
// with the same name.
package catalog
