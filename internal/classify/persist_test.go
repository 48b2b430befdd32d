package classify_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"hhapply/internal/classify"
	"hhapply/internal/runlog"
)

var testDay = time.Date(2024, 12, 24, 12, 0, 0, 0, time.UTC)

func persistOpts(dir string) classify.PersistOptions {
	return classify.PersistOptions{
		ResultsDir: dir,
		Now:        testDay,
		DateLayout: "0201",
		AllowEmpty: true,
	}
}

func TestPersistManualLineVerbatim(t *testing.T) {
	dir := t.TempDir()
	rules := classify.DefaultRules()
	input := "2024 01 01 00:00:00 INFO process test applied to JobX"

	result := rules.Classify([]string{input})
	artifacts, err := classify.Persist(result, persistOpts(dir))
	if err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	manual, err := runlog.ReadLines(artifacts.ManualPath)
	if err != nil {
		t.Fatalf("read manual artifact: %v", err)
	}
	if len(manual) != 1 || manual[0] != input {
		t.Fatalf("expected exactly the input line, got %v", manual)
	}
	if artifacts.ManualAdded != 1 {
		t.Fatalf("expected 1 manual line added, got %d", artifacts.ManualAdded)
	}

	if _, err := os.Stat(artifacts.SkippedPath); !os.IsNotExist(err) {
		t.Fatalf("expected skipped artifact untouched, stat err=%v", err)
	}
}

func TestPersistSkippedEntryDedupedAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	rules := classify.DefaultRules()
	input := "t1 t2 t3 t4 t5 t6 t7 t8 SKIPPED due to blacklist words badword JobY"

	result := rules.Classify([]string{input})
	artifacts, err := classify.Persist(result, persistOpts(dir))
	if err != nil {
		t.Fatalf("first Persist failed: %v", err)
	}
	if artifacts.SkippedAdded != 1 {
		t.Fatalf("expected 1 skipped entry added, got %d", artifacts.SkippedAdded)
	}

	// The same line classified again on the same day must not repeat.
	again, err := classify.Persist(result, persistOpts(dir))
	if err != nil {
		t.Fatalf("second Persist failed: %v", err)
	}
	if again.SkippedAdded != 0 {
		t.Fatalf("expected duplicate entry dropped, got %d added", again.SkippedAdded)
	}

	skipped, err := runlog.ReadLines(artifacts.SkippedPath)
	if err != nil {
		t.Fatalf("read skipped artifact: %v", err)
	}
	if len(skipped) != 1 || skipped[0] != "badword JobY" {
		t.Fatalf("expected single entry %q, got %v", "badword JobY", skipped)
	}
}

func TestPersistZeroMatchesSucceedsWhenAllowed(t *testing.T) {
	dir := t.TempDir()
	rules := classify.DefaultRules()

	result := rules.Classify([]string{"nothing interesting here"})
	artifacts, err := classify.Persist(result, persistOpts(dir))
	if err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	for _, path := range []string{artifacts.ManualPath, artifacts.SkippedPath} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("expected no artifact at %s, stat err=%v", path, err)
		}
	}
}

func TestPersistStrictModeFailsOnEmptyManual(t *testing.T) {
	dir := t.TempDir()
	rules := classify.DefaultRules()
	opts := persistOpts(dir)
	opts.AllowEmpty = false

	result := rules.Classify([]string{"x y z SKIPPED due to blacklist words word 42"})
	_, err := classify.Persist(result, opts)
	if !errors.Is(err, classify.ErrNoMatches) {
		t.Fatalf("expected ErrNoMatches, got %v", err)
	}

	// Strict manual failure halts before the skipped extraction writes.
	skippedPath := runlog.ArtifactPath(dir, classify.SkippedArtifactPrefix, testDay, "0201")
	if _, statErr := os.Stat(skippedPath); !os.IsNotExist(statErr) {
		t.Fatalf("expected skipped artifact untouched after strict failure, stat err=%v", statErr)
	}
}

func TestPersistArtifactNamesFollowDateLayout(t *testing.T) {
	dir := t.TempDir()
	rules := classify.DefaultRules()
	opts := persistOpts(dir)
	opts.DateLayout = "02012006"

	result := rules.Classify([]string{"has process test inside"})
	artifacts, err := classify.Persist(result, opts)
	if err != nil {
		t.Fatalf("Persist failed: %v", err)
	}
	if filepath.Base(artifacts.ManualPath) != "manual_applies_24122024.log" {
		t.Fatalf("unexpected artifact name: %s", artifacts.ManualPath)
	}
}
