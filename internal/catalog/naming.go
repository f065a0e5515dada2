package catalog

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// NameFunc derives a destination file name from a source base name. The result
// must keep the source extension and must not contain path separators.
type NameFunc func(source string) string

// UniqueName returns stem-<uuidv7>.ext for the base name of source. The stem
// is normalised to NFC so names copied off macOS volumes compare equal on
// other filesystems.
func UniqueName(source string) string {
	base := norm.NFC.String(filepath.Base(source))
	ext := filepath.Ext(base)
	stem := sanitizeStem(strings.TrimSuffix(base, ext))

	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	if stem == "" {
		return id.String() + ext
	}
	return stem + "-" + id.String() + ext
}

func sanitizeStem(stem string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, strings.TrimSpace(stem))
}
