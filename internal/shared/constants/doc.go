// Package constants centralizes defaults shared across the CLI and the probes.
//
// Ports, timeouts, redirect bounds and weakness thresholds live here so cmd/
// and internal/checker agree on them without importing each other.
package constants
