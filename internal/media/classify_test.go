package media_test

import (
	"testing"

	"mediabatch/internal/media"
)

func TestIsMedia(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"photo.jpg", true},
		{"photo.JPG", true},
		{"photo.Jpeg", true},
		{"shot.png", true},
		{"IMG_0001.HEIC", true},
		{"clip.mp4", true},
		{"clip.MOV", true},
		{"archive.tar.jpg", true},
		{"/library/2019/trip/clip.mov", true},
		{"notes.txt", false},
		{"README", false},
		{"photo.jpg.bak", false},
		{"movie.mkv", false},
		{"trailing.", false},
		{"dir.jpg/readme", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := media.IsMedia(tt.name); got != tt.want {
				t.Fatalf("IsMedia(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	if got := media.KindOf("a.heic"); got != media.KindImage {
		t.Fatalf("expected image, got %q", got)
	}
	if got := media.KindOf("a.Mp4"); got != media.KindVideo {
		t.Fatalf("expected video, got %q", got)
	}
	if got := media.KindOf("a.doc"); got != media.KindNone {
		t.Fatalf("expected none, got %q", got)
	}
}

func TestSupportedExtensionsAreClassified(t *testing.T) {
	for _, ext := range media.SupportedExtensions() {
		if !media.IsMedia("file." + ext) {
			t.Fatalf("extension %q listed but not classified as media", ext)
		}
	}
}
