package catalog_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"mediabatch/internal/catalog"
	"mediabatch/internal/media"
)

func TestDedupIndexAdmitsOnce(t *testing.T) {
	index := catalog.NewDedupIndex()
	fp := media.Fingerprint("aa")

	if !index.Admit(fp) {
		t.Fatal("expected first admit to succeed")
	}
	if index.Admit(fp) {
		t.Fatal("expected second admit to be rejected")
	}
	if !index.Contains(fp) {
		t.Fatal("expected index to contain admitted fingerprint")
	}
	if index.Len() != 1 {
		t.Fatalf("expected len 1, got %d", index.Len())
	}
}

func TestDedupIndexRejectsZeroFingerprint(t *testing.T) {
	index := catalog.NewDedupIndex()
	if index.Admit("") {
		t.Fatal("zero fingerprint must never be admitted")
	}
	if index.Len() != 0 {
		t.Fatalf("expected empty index, got %d", index.Len())
	}
}

func TestDedupIndexConcurrentAdmitIsLinearizable(t *testing.T) {
	index := catalog.NewDedupIndex()
	fp := media.Fingerprint("deadbeef")

	var admitted atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if index.Admit(fp) {
				admitted.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := admitted.Load(); got != 1 {
		t.Fatalf("expected exactly one successful admit, got %d", got)
	}
}
