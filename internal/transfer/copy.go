package transfer

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"

	"mediabatch/internal/catalog"
	"mediabatch/internal/media"
)

const copyBufferSize = 256 * 1024

// copyOnce performs a single attempt of copying rec to dst. The existence check
// and the rename are separate steps; destination names carry a UUIDv7, so no
// other writer is expected to create dst in between.
func (e *Executor) copyOnce(rec catalog.FileRecord, dst string) (int64, error) {
	in, err := e.fs.Open(rec.SourcePath)
	if err != nil {
		return 0, fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	dir := filepath.Dir(dst)
	tmp, err := afero.TempFile(e.fs, dir, "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = e.fs.Remove(tmpName)
		}
	}()

	hasher := media.NewHasher()
	buf := make([]byte, copyBufferSize)
	written, err := io.CopyBuffer(io.MultiWriter(tmp, hasher), in, buf)
	if err != nil {
		return written, fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		return written, fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return written, fmt.Errorf("close %s: %w", tmpName, err)
	}

	if written < 0 || uint64(written) != rec.SizeBytes {
		return written, fmt.Errorf("%w: catalogued %d bytes, copied %d bytes", ErrSizeMismatch, rec.SizeBytes, written)
	}
	if e.verify && !rec.Fingerprint.IsZero() {
		if got := media.FromHash(hasher); got != rec.Fingerprint {
			return written, fmt.Errorf("%w: want %s, got %s", ErrDigestMismatch, rec.Fingerprint.Short(), got.Short())
		}
	}

	if _, err := e.fs.Stat(dst); err == nil {
		return written, fmt.Errorf("%w: %s", ErrDestinationExists, dst)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return written, fmt.Errorf("stat destination: %w", err)
	}
	if err := e.fs.Rename(tmpName, dst); err != nil {
		return written, fmt.Errorf("rename into place: %w", err)
	}
	committed = true
	e.syncDir(dir)
	return written, nil
}

// syncDir flushes the directory entry for a completed rename. Failures are
// ignored since not every filesystem supports syncing directories.
func (e *Executor) syncDir(dir string) {
	d, err := e.fs.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
