// Package config loads, normalizes, and validates mediabatch configuration.
//
// It supplies repository defaults (batch capacity 10,000, copy chunks of 50,
// walk fan-out of 10, three copy attempts with a 100ms linear backoff),
// expands user paths including tilde shortcuts, reads TOML files, and honours
// the MEDIABATCH_STATE_DIR environment override.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical policy names, and clear validation errors.
package config
