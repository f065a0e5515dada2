// Package main hosts the mediabatch CLI entrypoint and command graph.
//
// The Cobra-based command tree resolves configuration once per invocation,
// builds the structured logger, and hands resolved options to the migration
// runner. Commands render reports as tables for terminals or as indented JSON
// for scripts.
//
// Keep this package lean: new behaviour belongs in the internal packages
// first and is surfaced here through flags or dedicated commands.
package main
