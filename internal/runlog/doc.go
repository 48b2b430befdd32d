// Package runlog owns the per-pipeline run-log files and the dated review
// artifacts derived from them.
//
// Run logs carry one line per processed vacancy in a fixed format:
//
//	2024-01-01 10:00:00 - INFO  - Page=00 idx=03: 123456 Go Developer Acme APPLIED ...
//
// The format is shared with the external applier scripts, so the classifier
// and any line-oriented tooling can read both interchangeably. Each pipeline
// truncates its own log at the start of a run; dated artifacts accumulate by
// appending.
package runlog
