package migration

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"mediabatch/internal/catalog"
	"mediabatch/internal/config"
	"mediabatch/internal/transfer"
)

// Options are the resolved inputs of one run.
type Options struct {
	Source          string
	Destination     string
	BatchSize       int
	ChunkSize       int
	FanOut          int
	Attempts        int
	RetryDelay      time.Duration
	FailurePolicy   transfer.FailurePolicy
	TraversalPolicy catalog.TraversalPolicy
	Verify          bool
	DryRun          bool
}

// OptionsFromConfig builds run options from configuration defaults.
func OptionsFromConfig(cfg *config.Config, source, destination string) (Options, error) {
	if cfg == nil {
		return Options{}, errors.New("config is nil")
	}
	failure, err := transfer.ParseFailurePolicy(cfg.Migration.FailurePolicy)
	if err != nil {
		return Options{}, err
	}
	traversal, err := catalog.ParseTraversalPolicy(cfg.Migration.TraversalPolicy)
	if err != nil {
		return Options{}, err
	}
	opts := Options{
		Source:          source,
		Destination:     destination,
		BatchSize:       cfg.Migration.BatchSize,
		ChunkSize:       cfg.Migration.ChunkSize,
		FanOut:          cfg.Migration.WalkFanOut,
		Attempts:        cfg.Migration.CopyAttempts,
		RetryDelay:      cfg.RetryDelay(),
		FailurePolicy:   failure,
		TraversalPolicy: traversal,
		Verify:          cfg.Migration.VerifyCopies,
	}
	return opts, nil
}

func (o *Options) validate() error {
	if strings.TrimSpace(o.Source) == "" {
		return errors.New("source directory is required")
	}
	if strings.TrimSpace(o.Destination) == "" && !o.DryRun {
		return errors.New("destination directory is required")
	}
	if o.BatchSize <= 0 || o.ChunkSize <= 0 {
		return fmt.Errorf("batch size (%d) and chunk size (%d) must be positive", o.BatchSize, o.ChunkSize)
	}
	o.Source = filepath.Clean(o.Source)
	if o.Destination != "" {
		o.Destination = filepath.Clean(o.Destination)
	}
	return nil
}
