package config

const (
	defaultStateDir           = "~/.local/share/mediabatch"
	defaultLogDirName         = "logs"
	defaultJournalName        = "journal.db"
	defaultBatchSize          = 10_000
	defaultChunkSize          = 50
	defaultWalkFanOut         = 10
	defaultCopyAttempts       = 3
	defaultRetryDelayMS       = 100
	defaultFreeSpaceMarginMiB = 512
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"

	// FailurePolicyCollect finishes every copy and reports failures at the end.
	FailurePolicyCollect = "collect"
	// FailurePolicyFailFast stops after the chunk in which the first failure occurred.
	FailurePolicyFailFast = "fail-fast"

	// TraversalPolicyAbort fails the whole run when a directory cannot be listed.
	TraversalPolicyAbort = "abort"
	// TraversalPolicySkip skips unreadable subtrees and reports them.
	TraversalPolicySkip = "skip"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Migration: Migration{
			BatchSize:       defaultBatchSize,
			ChunkSize:       defaultChunkSize,
			WalkFanOut:      defaultWalkFanOut,
			CopyAttempts:    defaultCopyAttempts,
			RetryDelayMS:    defaultRetryDelayMS,
			FailurePolicy:   FailurePolicyCollect,
			TraversalPolicy: TraversalPolicyAbort,
			VerifyCopies:    true,
		},
		Journal: Journal{
			Enabled: true,
		},
		Preflight: Preflight{
			CheckFreeSpace:     true,
			FreeSpaceMarginMiB: defaultFreeSpaceMarginMiB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
