package catalog

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"mediabatch/internal/logging"
	"mediabatch/internal/media"
)

// DefaultFanOut is the number of sibling entries processed concurrently.
const DefaultFanOut = 10

// ProgressFunc is called once per fingerprinted file. It may be invoked from
// several goroutines at once.
type ProgressFunc func(path string, size int64)

// Walker builds a Catalog from a directory tree.
type Walker struct {
	fs            afero.Fs
	fingerprinter *media.Fingerprinter
	fanOut        int
	policy        TraversalPolicy
	names         NameFunc
	index         *DedupIndex
	progress      ProgressFunc
	logger        *slog.Logger
}

// Option configures a Walker.
type Option func(*Walker)

// WithFanOut bounds the number of sibling entries processed concurrently.
func WithFanOut(n int) Option {
	return func(w *Walker) {
		if n > 0 {
			w.fanOut = n
		}
	}
}

// WithTraversalPolicy selects how unreadable subtrees are handled.
func WithTraversalPolicy(policy TraversalPolicy) Option {
	return func(w *Walker) {
		if policy != "" {
			w.policy = policy
		}
	}
}

// WithNameFunc overrides destination name generation.
func WithNameFunc(fn NameFunc) Option {
	return func(w *Walker) {
		if fn != nil {
			w.names = fn
		}
	}
}

// WithDedupIndex shares an index across walks, e.g. to exclude files already
// present elsewhere.
func WithDedupIndex(index *DedupIndex) Option {
	return func(w *Walker) {
		if index != nil {
			w.index = index
		}
	}
}

// WithProgress registers a callback for fingerprinted files.
func WithProgress(fn ProgressFunc) Option {
	return func(w *Walker) {
		w.progress = fn
	}
}

// WithLogger sets the walker logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Walker) {
		w.logger = logger
	}
}

// NewWalker constructs a Walker over fs. A nil fs means the host filesystem.
func NewWalker(fs afero.Fs, opts ...Option) *Walker {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	w := &Walker{
		fs:            fs,
		fingerprinter: media.NewFingerprinter(fs),
		fanOut:        DefaultFanOut,
		policy:        TraversalAbort,
		names:         UniqueName,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.index == nil {
		w.index = NewDedupIndex()
	}
	w.logger = logging.NewComponentLogger(w.logger, "walker")
	return w
}

type candidate struct {
	path        string
	size        int64
	fingerprint media.Fingerprint
}

// dirResult is the ordered outcome of walking one subtree.
type dirResult struct {
	candidates          []candidate
	skipped             []SkippedDir
	entries             int
	directories         int
	mediaCandidates     int
	fingerprintFailures int
	ignored             int
}

func (r *dirResult) merge(other dirResult) {
	r.candidates = append(r.candidates, other.candidates...)
	r.skipped = append(r.skipped, other.skipped...)
	r.entries += other.entries
	r.directories += other.directories
	r.mediaCandidates += other.mediaCandidates
	r.fingerprintFailures += other.fingerprintFailures
	r.ignored += other.ignored
}

// Walk traverses root and returns the catalog of unique media files in
// enumeration order. A root that cannot be read always fails the walk.
func (w *Walker) Walk(ctx context.Context, root string) (*Catalog, error) {
	root = filepath.Clean(root)
	info, err := w.fs.Stat(root)
	if err != nil {
		return nil, &TraversalError{Op: "stat", Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &TraversalError{Op: "stat", Path: root, Err: ErrNotDirectory}
	}

	w.logger.Info("walk started",
		logging.String("root", root),
		logging.Int("fan_out", w.fanOut),
		logging.String("traversal_policy", string(w.policy)),
	)

	result, err := w.walkDir(ctx, root, true)
	if err != nil {
		return nil, err
	}

	cat := w.admit(root, result)
	w.logger.Info("walk completed",
		logging.String("root", root),
		logging.Int("entries", cat.Stats.EntriesSeen),
		logging.Int("media", cat.Stats.MediaCandidates),
		logging.Int("unique", cat.Stats.Unique),
		logging.Int("duplicates", cat.Stats.Duplicates),
		logging.Int("skipped_dirs", len(cat.Skipped)),
	)
	return cat, nil
}

func (w *Walker) walkDir(ctx context.Context, dir string, isRoot bool) (dirResult, error) {
	if err := ctx.Err(); err != nil {
		return dirResult{}, err
	}

	entries, err := afero.ReadDir(w.fs, dir)
	if err != nil {
		terr := &TraversalError{Op: "readdir", Path: dir, Err: err}
		if isRoot || w.policy != TraversalSkip {
			return dirResult{}, terr
		}
		logging.WarnWithContext(w.logger, "directory skipped", "walk_dir_skipped",
			logging.String("path", dir),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check directory permissions and rerun to include it"),
			logging.String(logging.FieldImpact, "files below this directory are not migrated"),
		)
		return dirResult{skipped: []SkippedDir{{Path: dir, Reason: err.Error()}}}, nil
	}
	w.logger.Debug("directory listed", logging.String("path", dir), logging.Int("entries", len(entries)))

	results := make([]dirResult, len(entries))
	for start := 0; start < len(entries); start += w.fanOut {
		end := min(start+w.fanOut, len(entries))
		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				res, err := w.visit(gctx, dir, entries[i])
				if err != nil {
					return err
				}
				results[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return dirResult{}, err
		}
	}

	out := dirResult{directories: 1}
	for _, res := range results {
		out.merge(res)
	}
	return out, nil
}

func (w *Walker) visit(ctx context.Context, dir string, info os.FileInfo) (dirResult, error) {
	path := filepath.Join(dir, info.Name())
	mode := info.Mode()

	switch {
	case mode.IsDir():
		res, err := w.walkDir(ctx, path, false)
		if err != nil {
			return dirResult{}, err
		}
		res.entries++
		return res, nil
	case !mode.IsRegular():
		w.logger.Debug("non-regular entry ignored", logging.String("path", path), logging.String("mode", mode.Type().String()))
		return dirResult{entries: 1, ignored: 1}, nil
	case !media.IsMedia(info.Name()):
		return dirResult{entries: 1, ignored: 1}, nil
	}

	res := dirResult{entries: 1, mediaCandidates: 1}
	fp, err := w.fingerprinter.Fingerprint(ctx, path)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return dirResult{}, err
		}
		logging.WarnWithContext(w.logger, "fingerprint failed", "fingerprint_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the file is readable"),
			logging.String(logging.FieldImpact, "file excluded from migration"),
		)
		res.fingerprintFailures = 1
		return res, nil
	}
	if w.progress != nil {
		w.progress(path, info.Size())
	}
	res.candidates = []candidate{{path: path, size: info.Size(), fingerprint: fp}}
	return res, nil
}

// admit offers candidates to the index in enumeration order.
func (w *Walker) admit(root string, result dirResult) *Catalog {
	cat := &Catalog{
		Root:    root,
		Records: make([]FileRecord, 0, len(result.candidates)),
		Skipped: result.skipped,
		Stats: Stats{
			EntriesSeen:         result.entries,
			Directories:         result.directories,
			MediaCandidates:     result.mediaCandidates,
			FingerprintFailures: result.fingerprintFailures,
			IgnoredEntries:      result.ignored,
		},
	}

	retained := make(map[media.Fingerprint]string, len(result.candidates))
	for _, c := range result.candidates {
		if !w.index.Admit(c.fingerprint) {
			cat.Duplicates = append(cat.Duplicates, Duplicate{
				SourcePath:   c.path,
				RetainedPath: retained[c.fingerprint],
				Fingerprint:  c.fingerprint,
			})
			w.logger.Debug("duplicate dropped",
				logging.String("path", c.path),
				logging.String("fingerprint", c.fingerprint.Short()),
			)
			continue
		}
		retained[c.fingerprint] = c.path
		size := uint64(0)
		if c.size > 0 {
			size = uint64(c.size)
		}
		cat.Records = append(cat.Records, FileRecord{
			SourcePath:      c.path,
			DestinationName: w.names(filepath.Base(c.path)),
			SizeBytes:       size,
			Fingerprint:     c.fingerprint,
		})
		cat.Stats.UniqueBytes += size
	}
	cat.Stats.Unique = len(cat.Records)
	cat.Stats.Duplicates = len(cat.Duplicates)
	return cat
}
