// Package classify partitions applier run-log lines into the dated review
// artifacts: manual-review entries and skipped-with-reason entries.
//
// Manual extraction selects lines containing any configured phrase
// (case-insensitive) and appends them verbatim, one pass per phrase, so a line
// matching two phrases appears once per phrase. Skipped extraction locates the
// skip-marker phrase, normalizes the text after it into "reason identifier"
// tokens, deduplicates, and sorts. Lines carrying the marker but no usable
// tail are counted as malformed rather than emitted garbled.
//
// Classification accepts either raw lines read back from a run log or the
// structured records an in-process applier run hands over directly; both paths
// produce identical artifacts.
package classify
