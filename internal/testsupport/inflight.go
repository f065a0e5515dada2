package testsupport

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/afero"
)

// InFlightFs counts files opened through Open that are not yet closed and
// records the highest count seen. Only paths accepted by match are counted.
type InFlightFs struct {
	afero.Fs
	match   func(name string) bool
	hold    time.Duration
	current atomic.Int64
	peak    atomic.Int64
}

// NewInFlightFs wraps base. Each counted Open waits hold before returning so
// concurrent callers overlap.
func NewInFlightFs(base afero.Fs, hold time.Duration, match func(name string) bool) *InFlightFs {
	return &InFlightFs{Fs: base, match: match, hold: hold}
}

// Peak returns the highest number of counted files open at once.
func (f *InFlightFs) Peak() int {
	return int(f.peak.Load())
}

func (f *InFlightFs) Open(name string) (afero.File, error) {
	if f.match == nil || !f.match(name) {
		return f.Fs.Open(name)
	}
	n := f.current.Add(1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.hold > 0 {
		time.Sleep(f.hold)
	}
	file, err := f.Fs.Open(name)
	if err != nil {
		f.current.Add(-1)
		return nil, err
	}
	return &countedFile{File: file, release: func() { f.current.Add(-1) }}, nil
}

type countedFile struct {
	afero.File
	once    sync.Once
	release func()
}

func (c *countedFile) Close() error {
	c.once.Do(c.release)
	return c.File.Close()
}
