package media

import (
	"path/filepath"
	"strings"
)

// Kind groups supported extensions for reporting.
type Kind string

const (
	KindNone  Kind = ""
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Supported media extensions (lowercase, without the leading dot).
var mediaExtensions = map[string]Kind{
	"jpg":  KindImage,
	"jpeg": KindImage,
	"png":  KindImage,
	"heic": KindImage,
	"mp4":  KindVideo,
	"mov":  KindVideo,
}

// Extension returns the lowercased extension of name without the leading dot.
// Only the final path element is considered; a name without a dot has no
// extension.
func Extension(name string) string {
	base := filepath.Base(name)
	idx := strings.LastIndexByte(base, '.')
	if idx < 0 {
		return ""
	}
	return strings.ToLower(base[idx+1:])
}

// KindOf reports the media kind of name, or KindNone when the extension is not
// supported.
func KindOf(name string) Kind {
	ext := Extension(name)
	if ext == "" {
		return KindNone
	}
	return mediaExtensions[ext]
}

// IsMedia reports whether name carries a supported media extension.
func IsMedia(name string) bool {
	return KindOf(name) != KindNone
}

// SupportedExtensions returns the allow-list in a stable order.
func SupportedExtensions() []string {
	return []string{"jpg", "jpeg", "png", "heic", "mp4", "mov"}
}
