package testsupport

import (
	"path/filepath"
	"testing"

	"mediabatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	cfg *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Preflight free-space checks are off so tests do not depend on the host disk.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "state", "logs")
	cfgVal.Journal.Path = filepath.Join(base, "state", "journal.db")
	cfgVal.Migration.RetryDelayMS = 1
	cfgVal.Preflight.CheckFreeSpace = false

	builder := &configBuilder{cfg: &cfgVal}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithBatchSize overrides batch capacity and chunk size.
func WithBatchSize(batchSize, chunkSize int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Migration.BatchSize = batchSize
		b.cfg.Migration.ChunkSize = chunkSize
	}
}

// WithFailFast switches the copy failure policy to fail-fast.
func WithFailFast() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Migration.FailurePolicy = config.FailurePolicyFailFast
	}
}
