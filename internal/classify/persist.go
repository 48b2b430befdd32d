package classify

import (
	"errors"
	"fmt"
	"time"

	"hhapply/internal/runlog"
)

// Artifact filename prefixes under paths.results_dir.
const (
	ManualArtifactPrefix  = "manual_applies"
	SkippedArtifactPrefix = "skipped_applies"
)

// ErrNoMatches is returned by Persist when an extraction found nothing and
// allow_empty_result is off.
var ErrNoMatches = errors.New("no matching lines")

// PersistOptions locate and name the dated artifact files.
type PersistOptions struct {
	ResultsDir string
	Now        time.Time
	DateLayout string
	// AllowEmpty keeps a run successful when an extraction matches nothing.
	// When false, an empty manual extraction fails before the skipped
	// extraction runs, mirroring a strict step chain.
	AllowEmpty bool
}

// Artifacts reports where the classification landed.
type Artifacts struct {
	ManualPath   string
	SkippedPath  string
	ManualAdded  int
	SkippedAdded int
}

// Persist appends the classification result to the dated artifacts. Manual
// lines append verbatim and may repeat across runs; skipped entries are
// additionally deduplicated against lines already in the day's artifact.
func Persist(result Result, opts PersistOptions) (Artifacts, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	layout := opts.DateLayout
	if layout == "" {
		layout = "0201"
	}

	artifacts := Artifacts{
		ManualPath:  runlog.ArtifactPath(opts.ResultsDir, ManualArtifactPrefix, now, layout),
		SkippedPath: runlog.ArtifactPath(opts.ResultsDir, SkippedArtifactPrefix, now, layout),
	}

	if err := runlog.AppendLines(artifacts.ManualPath, result.Manual); err != nil {
		return artifacts, err
	}
	artifacts.ManualAdded = len(result.Manual)
	if !opts.AllowEmpty && len(result.Manual) == 0 {
		return artifacts, fmt.Errorf("manual extraction: %w", ErrNoMatches)
	}

	added, err := runlog.AppendNewLines(artifacts.SkippedPath, result.Skipped)
	if err != nil {
		return artifacts, err
	}
	artifacts.SkippedAdded = len(added)
	if !opts.AllowEmpty && len(result.Skipped) == 0 {
		return artifacts, fmt.Errorf("skipped extraction: %w", ErrNoMatches)
	}

	return artifacts, nil
}
