// Package logging assembles the structured slog loggers used across hhapply
// commands.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with the pipeline name and run identifier. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
//
// The diagnostic log written here is separate from the per-pipeline run logs
// (see internal/runlog); those carry the fixed line format the classifier and
// external tooling consume, while this package carries operator diagnostics.
package logging
