package catalog

import (
	"sync"

	"mediabatch/internal/media"
)

// DedupIndex is the set of fingerprints already admitted into a catalog.
// It is safe for concurrent use.
type DedupIndex struct {
	mu   sync.Mutex
	seen map[media.Fingerprint]struct{}
}

// NewDedupIndex returns an empty index.
func NewDedupIndex() *DedupIndex {
	return &DedupIndex{seen: make(map[media.Fingerprint]struct{})}
}

// Admit records fp and returns true if it had not been recorded before.
// Concurrent calls with the same fingerprint admit exactly one caller.
// The zero fingerprint is never admitted.
func (d *DedupIndex) Admit(fp media.Fingerprint) bool {
	if fp.IsZero() {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[fp]; ok {
		return false
	}
	d.seen[fp] = struct{}{}
	return true
}

// Contains reports whether fp has been admitted.
func (d *DedupIndex) Contains(fp media.Fingerprint) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.seen[fp]
	return ok
}

// Len returns the number of admitted fingerprints.
func (d *DedupIndex) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
