// Package preflight provides readiness checks run before any file is copied.
//
// The migrate command runs RunAll after the catalog is built, when the number
// of bytes to copy is known. If any check fails the run stops before the
// first batch directory is created, so a doomed migration never leaves a
// half-filled destination behind.
//
// Checks cover source readability, destination writability, destination free
// space against the catalog size plus a configurable margin, and that the
// destination does not live inside the source tree.
package preflight
