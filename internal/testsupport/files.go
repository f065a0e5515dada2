package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// WriteFile writes data to path on fs, creating parent directories.
func WriteFile(t testing.TB, fs afero.Fs, path string, data []byte) {
	t.Helper()

	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteTree writes every path -> content pair below root.
func WriteTree(t testing.TB, fs afero.Fs, root string, files map[string]string) {
	t.Helper()

	for rel, content := range files {
		WriteFile(t, fs, filepath.Join(root, filepath.FromSlash(rel)), []byte(content))
	}
}

// ReadDirNames lists the entry names of dir, failing the test on error.
func ReadDirNames(t testing.TB, fs afero.Fs, dir string) []string {
	t.Helper()

	infos, err := afero.ReadDir(fs, dir)
	if err != nil {
		t.Fatalf("read dir %s: %v", dir, err)
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	return names
}
