package preflight

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"
)

// AccessMode selects the permissions CheckDirectoryAccess requires.
type AccessMode int

const (
	// ReadOnly requires read and search permission.
	ReadOnly AccessMode = iota
	// ReadWrite additionally requires write permission.
	ReadWrite
)

// statfs returns total and available bytes for the filesystem holding path.
var statfs = realStatfs

func realStatfs(path string) (uint64, uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	total := stat.Blocks * uint64(stat.Bsize)
	free := stat.Bavail * uint64(stat.Bsize)
	return total, free, nil
}

// CheckDirectoryAccess verifies that the directory exists and has the requested permissions.
func CheckDirectoryAccess(name, path string, mode AccessMode) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}

	want := uint32(unix.R_OK | unix.X_OK)
	label := "read ok"
	if mode == ReadWrite {
		want |= unix.W_OK
		label = "read/write ok"
	}
	if err := unix.Access(path, want); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, label)}
}

// CheckFreeSpace verifies that the filesystem holding path has at least need bytes available.
func CheckFreeSpace(name, path string, need uint64) Result {
	_, free, err := statfs(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	if free < need {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s free, %s required)",
			path, humanize.IBytes(free), humanize.IBytes(need))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s free, %s required)",
		path, humanize.IBytes(free), humanize.IBytes(need))}
}

// CheckNotNested verifies that destination is neither source nor inside it.
func CheckNotNested(name, source, destination string) Result {
	src := resolve(source)
	dst := resolve(destination)
	rel, err := filepath.Rel(src, dst)
	if err == nil && (rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))) {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: inside source %s)", destination, source)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (outside source)", destination)}
}

// resolve returns an absolute, symlink-free form of path when it exists.
func resolve(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}
