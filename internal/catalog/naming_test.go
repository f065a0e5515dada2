package catalog_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"mediabatch/internal/catalog"
)

func TestUniqueNameKeepsStemAndExtension(t *testing.T) {
	name := catalog.UniqueName("/photos/2019/IMG_0001.JPG")

	if !strings.HasPrefix(name, "IMG_0001-") {
		t.Fatalf("expected stem prefix, got %q", name)
	}
	if filepath.Ext(name) != ".JPG" {
		t.Fatalf("expected source extension, got %q", name)
	}
	id := strings.TrimSuffix(strings.TrimPrefix(name, "IMG_0001-"), ".JPG")
	parsed, err := uuid.Parse(id)
	if err != nil {
		t.Fatalf("expected uuid in name %q: %v", name, err)
	}
	if parsed.Version() != 7 {
		t.Fatalf("expected uuid v7, got v%d", parsed.Version())
	}
}

func TestUniqueNameDiffersForSameSource(t *testing.T) {
	seen := make(map[string]struct{})
	for range 1000 {
		name := catalog.UniqueName("clip.mov")
		if _, ok := seen[name]; ok {
			t.Fatalf("duplicate name generated: %q", name)
		}
		seen[name] = struct{}{}
	}
}

func TestUniqueNameNormalisesToNFC(t *testing.T) {
	decomposed := "Cafe\u0301.heic"
	name := catalog.UniqueName(decomposed)
	if !strings.HasPrefix(name, "Caf\u00e9-") {
		t.Fatalf("expected NFC stem, got %q", name)
	}
}

func TestUniqueNameWithoutStem(t *testing.T) {
	name := catalog.UniqueName(".jpg")
	if strings.HasPrefix(name, "-") {
		t.Fatalf("unexpected leading separator in %q", name)
	}
	if filepath.Ext(name) != ".jpg" {
		t.Fatalf("expected extension kept, got %q", name)
	}
}
