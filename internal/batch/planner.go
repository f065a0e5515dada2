package batch

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"mediabatch/internal/catalog"
)

// ErrInvalidCapacity is returned for a non-positive batch capacity or chunk size.
var ErrInvalidCapacity = errors.New("batch capacity and chunk size must be positive")

// NameCollisionError reports two records that would share a destination path.
type NameCollisionError struct {
	Batch int
	Name  string
	First string
	Other string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("batch %d: destination name %q used by %s and %s", e.Batch, e.Name, e.First, e.Other)
}

// Batch is a contiguous run of catalog records sharing one destination directory.
type Batch struct {
	Number  int                    `json:"number"`
	DirName string                 `json:"dir_name"`
	Records []catalog.FileRecord   `json:"records"`
	Chunks  [][]catalog.FileRecord `json:"-"`
}

// Len returns the number of records in the batch.
func (b Batch) Len() int {
	return len(b.Records)
}

// Bytes sums the record sizes in the batch.
func (b Batch) Bytes() uint64 {
	var total uint64
	for _, rec := range b.Records {
		total += rec.SizeBytes
	}
	return total
}

// Dir returns the batch directory below root.
func (b Batch) Dir(root string) string {
	return filepath.Join(root, b.DirName)
}

// Plan is the ordered list of batches for one run.
type Plan struct {
	Capacity  int     `json:"capacity"`
	ChunkSize int     `json:"chunk_size"`
	Batches   []Batch `json:"batches"`
}

// Files returns the total number of planned records.
func (p Plan) Files() int {
	total := 0
	for _, b := range p.Batches {
		total += b.Len()
	}
	return total
}

// Build splits records into batches of up to capacity in catalog order and
// each batch into chunks of up to chunkSize.
func Build(records []catalog.FileRecord, capacity, chunkSize int) (Plan, error) {
	if capacity <= 0 || chunkSize <= 0 {
		return Plan{}, fmt.Errorf("%w: capacity=%d chunk_size=%d", ErrInvalidCapacity, capacity, chunkSize)
	}

	plan := Plan{Capacity: capacity, ChunkSize: chunkSize}
	if len(records) == 0 {
		return plan, nil
	}

	groups := chunk(records, capacity)
	plan.Batches = make([]Batch, 0, len(groups))
	for i, members := range groups {
		number := i + 1
		if err := checkNames(number, members); err != nil {
			return Plan{}, err
		}
		plan.Batches = append(plan.Batches, Batch{
			Number:  number,
			DirName: strconv.Itoa(number),
			Records: members,
			Chunks:  chunk(members, chunkSize),
		})
	}
	return plan, nil
}

// chunk splits items into consecutive groups of at most size. The groups alias
// items with capped capacity so appending to one never overwrites the next.
func chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end:end])
	}
	return out
}

func checkNames(number int, records []catalog.FileRecord) error {
	seen := make(map[string]string, len(records))
	for _, rec := range records {
		if first, ok := seen[rec.DestinationName]; ok {
			return &NameCollisionError{Batch: number, Name: rec.DestinationName, First: first, Other: rec.SourcePath}
		}
		seen[rec.DestinationName] = rec.SourcePath
	}
	return nil
}
