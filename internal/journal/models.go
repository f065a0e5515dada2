package journal

import (
	"errors"
	"time"

	"mediabatch/internal/media"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	RunPlanned   RunStatus = "planned"
)

// FileStatus is the copy state of one catalogued file.
type FileStatus string

const (
	FilePending FileStatus = "pending"
	FileCopied  FileStatus = "copied"
	FileFailed  FileStatus = "failed"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("journal: run not found")

// RunInfo describes a run when it starts.
type RunInfo struct {
	ID          string
	Source      string
	Destination string
	DryRun      bool
	BatchSize   int
	ChunkSize   int
	StartedAt   time.Time
}

// Summary is written when a run ends.
type Summary struct {
	Status              RunStatus
	EntriesSeen         int
	Unique              int
	Duplicates          int
	FingerprintFailures int
	SkippedDirs         int
	Batches             int
	Copied              int
	Failed              int
	BytesCopied         uint64
	Err                 error
	FinishedAt          time.Time
}

// Run is a stored run row.
type Run struct {
	ID                  string     `json:"id"`
	Source              string     `json:"source"`
	Destination         string     `json:"destination"`
	Status              RunStatus  `json:"status"`
	DryRun              bool       `json:"dry_run"`
	BatchSize           int        `json:"batch_size"`
	ChunkSize           int        `json:"chunk_size"`
	StartedAt           time.Time  `json:"started_at"`
	FinishedAt          *time.Time `json:"finished_at,omitempty"`
	EntriesSeen         int        `json:"entries_seen"`
	Unique              int        `json:"unique"`
	Duplicates          int        `json:"duplicates"`
	FingerprintFailures int        `json:"fingerprint_failures"`
	SkippedDirs         int        `json:"skipped_dirs"`
	Batches             int        `json:"batches"`
	Copied              int        `json:"copied"`
	Failed              int        `json:"failed"`
	BytesCopied         uint64     `json:"bytes_copied"`
	ErrorMessage        string     `json:"error,omitempty"`
}

// File is a stored catalog row.
type File struct {
	Seq             int               `json:"seq"`
	SourcePath      string            `json:"source_path"`
	DestinationName string            `json:"destination_name"`
	SizeBytes       uint64            `json:"size_bytes"`
	Fingerprint     media.Fingerprint `json:"fingerprint"`
	Batch           int               `json:"batch"`
	Status          FileStatus        `json:"status"`
	Attempts        int               `json:"attempts"`
	ErrorMessage    string            `json:"error,omitempty"`
}

// Outcome is the copy result of one file keyed by its source path.
type Outcome struct {
	SourcePath string
	Attempts   int
	Err        error
}
