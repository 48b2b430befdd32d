package classify_test

import (
	"reflect"
	"testing"

	"hhapply/internal/classify"
)

func TestClassifySelectsManualPatternLines(t *testing.T) {
	rules := classify.DefaultRules()
	lines := []string{
		"2024-01-01 10:00:00 - ERROR - Page=00 idx=01: 111 Dev Acme apply FAILED with error: Process TEST required on https://hh.ru/vacancy/111",
		"2024-01-01 10:00:01 - INFO  - Page=00 idx=02: 222 Dev Beta APPLIED successfully, negotiation url: https://hh.ru/negotiations/5",
		"2024-01-01 10:00:02 - ERROR - Page=00 idx=03: 333 Dev Gamma apply FAILED with error: External apply required on https://example.com/jobs/333",
	}

	result := rules.Classify(lines)

	if result.Report.Manual != 2 {
		t.Fatalf("expected 2 manual lines, got %d", result.Report.Manual)
	}
	if result.Manual[0] != lines[0] || result.Manual[1] != lines[2] {
		t.Fatalf("expected verbatim matched lines, got %v", result.Manual)
	}
	for _, line := range result.Manual {
		if line == lines[1] {
			t.Fatalf("non-matching line leaked into manual output: %q", line)
		}
	}
}

func TestClassifyLineMatchingBothPatternsAppearsOncePerPattern(t *testing.T) {
	rules := classify.DefaultRules()
	line := "process test and External Apply Required in one line"

	result := rules.Classify([]string{line})

	if len(result.Manual) != 2 {
		t.Fatalf("expected one entry per pattern pass, got %v", result.Manual)
	}
	if result.Manual[0] != line || result.Manual[1] != line {
		t.Fatalf("expected the same line twice, got %v", result.Manual)
	}
}

func TestClassifySkipEntriesAreDedupedAndSorted(t *testing.T) {
	rules := classify.DefaultRules()
	lines := []string{
		"2024-01-01 10:00:00 - INFO  - Page=00 idx=01: 999 Z Dev Acme SKIPPED due to blacklist words senior 999",
		"2024-01-01 10:00:01 - INFO  - Page=00 idx=02: 111 A Dev Beta SKIPPED due to blacklist words lead 111",
		"2024-01-01 10:00:02 - INFO  - Page=01 idx=00: 999 Z Dev Acme SKIPPED due to blacklist words senior 999",
	}

	result := rules.Classify(lines)

	want := []string{"lead 111", "senior 999"}
	if !reflect.DeepEqual(result.Skipped, want) {
		t.Fatalf("expected sorted unique entries %v, got %v", want, result.Skipped)
	}
	if result.Report.Skipped != 2 {
		t.Fatalf("expected 2 unique skip entries, got %d", result.Report.Skipped)
	}
}

func TestClassifyMarkerTailKeepsReasonBeforeIdentifier(t *testing.T) {
	rules := classify.DefaultRules()
	line := "a b c skipped due to blacklist words reason_word id_token"

	result := rules.Classify([]string{line})

	if len(result.Skipped) != 1 || result.Skipped[0] != "reason_word id_token" {
		t.Fatalf("expected entry %q, got %v", "reason_word id_token", result.Skipped)
	}
}

func TestClassifyNormalizesWhitespaceInMarkerTail(t *testing.T) {
	rules := classify.DefaultRules()
	line := "x y z SKIPPED due to blacklist words   badword \t JobY  "

	result := rules.Classify([]string{line})

	if len(result.Skipped) != 1 || result.Skipped[0] != "badword JobY" {
		t.Fatalf("expected normalized entry, got %v", result.Skipped)
	}
}

func TestClassifyCountsMalformedMarkerLines(t *testing.T) {
	rules := classify.DefaultRules()
	lines := []string{
		"header SKIPPED due to blacklist words",
		"header SKIPPED due to blacklist words onlytoken",
		"header SKIPPED due to blacklist words word 42",
	}

	result := rules.Classify(lines)

	if result.Report.Malformed != 2 {
		t.Fatalf("expected 2 malformed lines, got %d", result.Report.Malformed)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != "word 42" {
		t.Fatalf("expected only the conforming entry, got %v", result.Skipped)
	}
}

func TestClassifyZeroMatchesYieldsEmptyResult(t *testing.T) {
	rules := classify.DefaultRules()
	lines := []string{
		"2024-01-01 10:00:00 - INFO  - Page=00 idx=00: 1 Dev Acme APPLIED successfully, negotiation url: u",
	}

	result := rules.Classify(lines)

	if len(result.Manual) != 0 || len(result.Skipped) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
	if result.Report.Total != 1 {
		t.Fatalf("expected total count 1, got %d", result.Report.Total)
	}
}

func TestFromRecordsMatchesLineClassification(t *testing.T) {
	rules := classify.DefaultRules()
	records := []classify.Record{
		{Line: "2024-01-01 10:00:00 - INFO  - Page=00 idx=00: 11 Dev Acme SKIPPED due to blacklist words senior 11", Skip: true, Reason: "senior", Identifier: "11"},
		{Line: "2024-01-01 10:00:01 - ERROR - Page=00 idx=01: 22 Dev Beta apply FAILED with error: process test required on url"},
		{Line: "2024-01-01 10:00:02 - INFO  - Page=00 idx=02: 33 Dev Gamma APPLIED successfully, negotiation url: u"},
	}
	lines := make([]string, len(records))
	for i, record := range records {
		lines[i] = record.Line
	}

	fromRecords := rules.FromRecords(records)
	fromLines := rules.Classify(lines)

	if !reflect.DeepEqual(fromRecords.Manual, fromLines.Manual) {
		t.Fatalf("manual mismatch: %v vs %v", fromRecords.Manual, fromLines.Manual)
	}
	if !reflect.DeepEqual(fromRecords.Skipped, fromLines.Skipped) {
		t.Fatalf("skipped mismatch: %v vs %v", fromRecords.Skipped, fromLines.Skipped)
	}
}

func TestFromRecordsFlagsIncompleteSkips(t *testing.T) {
	rules := classify.DefaultRules()
	records := []classify.Record{
		{Line: "line", Skip: true, Reason: "", Identifier: "42"},
	}

	result := rules.FromRecords(records)

	if result.Report.Malformed != 1 {
		t.Fatalf("expected malformed count 1, got %d", result.Report.Malformed)
	}
	if len(result.Skipped) != 0 {
		t.Fatalf("expected no entries, got %v", result.Skipped)
	}
}
