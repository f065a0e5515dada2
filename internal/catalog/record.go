package catalog

import "mediabatch/internal/media"

// FileRecord is one retained, unique media file.
type FileRecord struct {
	SourcePath      string            `json:"source_path"`
	DestinationName string            `json:"destination_name"`
	SizeBytes       uint64            `json:"size_bytes"`
	Fingerprint     media.Fingerprint `json:"fingerprint"`
}

// Duplicate describes a media file dropped because its content was already retained.
type Duplicate struct {
	SourcePath   string            `json:"source_path"`
	RetainedPath string            `json:"retained_path,omitempty"`
	Fingerprint  media.Fingerprint `json:"fingerprint"`
}

// SkippedDir is a subtree left out of the catalog under TraversalSkip.
type SkippedDir struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Stats summarises one traversal.
type Stats struct {
	EntriesSeen         int    `json:"entries_seen"`
	Directories         int    `json:"directories"`
	MediaCandidates     int    `json:"media_candidates"`
	Unique              int    `json:"unique"`
	Duplicates          int    `json:"duplicates"`
	FingerprintFailures int    `json:"fingerprint_failures"`
	IgnoredEntries      int    `json:"ignored_entries"`
	UniqueBytes         uint64 `json:"unique_bytes"`
}

// Catalog is the ordered set of unique files discovered under Root.
type Catalog struct {
	Root       string       `json:"root"`
	Records    []FileRecord `json:"records"`
	Duplicates []Duplicate  `json:"duplicates,omitempty"`
	Skipped    []SkippedDir `json:"skipped,omitempty"`
	Stats      Stats        `json:"stats"`
}

// Len returns the number of retained records.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Records)
}

// TotalBytes sums the discovery-time size of every retained record.
func (c *Catalog) TotalBytes() uint64 {
	if c == nil {
		return 0
	}
	var total uint64
	for _, rec := range c.Records {
		total += rec.SizeBytes
	}
	return total
}
