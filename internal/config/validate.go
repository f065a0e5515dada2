package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMigration(); err != nil {
		return err
	}
	if err := c.validatePolicies(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMigration() error {
	if err := ensurePositive([]namedValue{
		{"migration.batch_size", c.Migration.BatchSize},
		{"migration.chunk_size", c.Migration.ChunkSize},
		{"migration.walk_fan_out", c.Migration.WalkFanOut},
		{"migration.copy_attempts", c.Migration.CopyAttempts},
	}); err != nil {
		return err
	}
	if c.Migration.RetryDelayMS < 0 {
		return errors.New("migration.retry_delay_ms must be >= 0")
	}
	if c.Migration.ChunkSize > c.Migration.BatchSize {
		return fmt.Errorf("migration.chunk_size (%d) must not exceed migration.batch_size (%d)", c.Migration.ChunkSize, c.Migration.BatchSize)
	}
	return nil
}

func (c *Config) validatePolicies() error {
	switch c.Migration.FailurePolicy {
	case FailurePolicyCollect, FailurePolicyFailFast:
	default:
		return fmt.Errorf("migration.failure_policy must be %q or %q, got %q", FailurePolicyCollect, FailurePolicyFailFast, c.Migration.FailurePolicy)
	}
	switch c.Migration.TraversalPolicy {
	case TraversalPolicyAbort, TraversalPolicySkip:
	default:
		return fmt.Errorf("migration.traversal_policy must be %q or %q, got %q", TraversalPolicyAbort, TraversalPolicySkip, c.Migration.TraversalPolicy)
	}
	return nil
}

type namedValue struct {
	name  string
	value int
}

// ensurePositive checks values in order so the first offending key is reported deterministically.
func ensurePositive(values []namedValue) error {
	for _, v := range values {
		if v.value <= 0 {
			return fmt.Errorf("%s must be positive", v.name)
		}
	}
	return nil
}
