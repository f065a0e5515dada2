package preflight

import (
	"errors"
	"fmt"
	"strings"

	"mediabatch/internal/config"
)

// ErrFailed wraps every failed preflight run.
var ErrFailed = errors.New("preflight failed")

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Request names the directories of one migration and the bytes it will write.
type Request struct {
	Source      string
	Destination string
	NeedBytes   uint64
}

// RunAll executes the applicable checks. The destination must already exist.
func RunAll(cfg *config.Config, req Request) []Result {
	results := []Result{
		CheckDirectoryAccess("Source directory", req.Source, ReadOnly),
		CheckDirectoryAccess("Destination directory", req.Destination, ReadWrite),
		CheckNotNested("Destination placement", req.Source, req.Destination),
	}
	if cfg == nil || cfg.Preflight.CheckFreeSpace {
		need := req.NeedBytes
		if cfg != nil {
			need += cfg.FreeSpaceMargin()
		}
		results = append(results, CheckFreeSpace("Destination free space", req.Destination, need))
	}
	return results
}

// Err returns nil when every result passed, otherwise an ErrFailed-wrapped
// summary naming each failed check.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrFailed, strings.Join(failed, "; "))
}
