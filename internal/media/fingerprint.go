package media

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"

	"github.com/spf13/afero"
	"github.com/zeebo/blake3"
)

// DigestSize is the fingerprint length in bytes before hex encoding.
const DigestSize = 32

const readBufferSize = 256 * 1024

// Fingerprint is a hex-encoded BLAKE3-256 content digest. The zero value means
// no fingerprint was computed.
type Fingerprint string

// IsZero reports whether the fingerprint is absent.
func (f Fingerprint) IsZero() bool {
	return f == ""
}

// Short returns an abbreviated form for log lines.
func (f Fingerprint) Short() string {
	if len(f) <= 12 {
		return string(f)
	}
	return string(f[:12])
}

func (f Fingerprint) String() string {
	return string(f)
}

// ParseFingerprint validates a hex digest read back from storage.
func ParseFingerprint(value string) (Fingerprint, error) {
	raw, err := hex.DecodeString(value)
	if err != nil {
		return "", fmt.Errorf("parse fingerprint: %w", err)
	}
	if len(raw) != DigestSize {
		return "", fmt.Errorf("parse fingerprint: want %d bytes, got %d", DigestSize, len(raw))
	}
	return Fingerprint(value), nil
}

// NewHasher returns the hash used for fingerprints so callers can digest a
// stream they are already reading.
func NewHasher() hash.Hash {
	return blake3.New()
}

// FromHash encodes the current digest of h.
func FromHash(h hash.Hash) Fingerprint {
	return Fingerprint(hex.EncodeToString(h.Sum(nil)))
}

// Sum digests everything readable from r.
func Sum(r io.Reader) (Fingerprint, int64, error) {
	h := NewHasher()
	buf := make([]byte, readBufferSize)
	n, err := io.CopyBuffer(h, r, buf)
	if err != nil {
		return "", n, err
	}
	return FromHash(h), n, nil
}

// FingerprintError reports a file that could not be digested.
type FingerprintError struct {
	Path string
	Err  error
}

func (e *FingerprintError) Error() string {
	return fmt.Sprintf("fingerprint %s: %v", e.Path, e.Err)
}

func (e *FingerprintError) Unwrap() error { return e.Err }

// IsFingerprintError reports whether err carries a FingerprintError.
func IsFingerprintError(err error) bool {
	var e *FingerprintError
	return errors.As(err, &e)
}

// Fingerprinter digests files on a filesystem.
type Fingerprinter struct {
	fs afero.Fs
}

// NewFingerprinter constructs a Fingerprinter reading from fs. A nil fs means
// the host filesystem.
func NewFingerprinter(fs afero.Fs) *Fingerprinter {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Fingerprinter{fs: fs}
}

// Fingerprint reads path to the end and returns its digest.
func (f *Fingerprinter) Fingerprint(ctx context.Context, path string) (Fingerprint, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return "", err
		}
	}
	file, err := f.fs.Open(path)
	if err != nil {
		return "", &FingerprintError{Path: path, Err: err}
	}
	defer file.Close()

	fp, _, err := Sum(file)
	if err != nil {
		return "", &FingerprintError{Path: path, Err: err}
	}
	return fp, nil
}
