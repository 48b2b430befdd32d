package classify

import (
	"sort"
	"strings"
)

// Default extraction rules, shared with the sample config.
const (
	DefaultSkipMarker = "skipped due to blacklist words"
)

// DefaultManualPatterns returns the phrases that route a line to manual review.
func DefaultManualPatterns() []string {
	return []string{"process test", "external apply required"}
}

// Rules configure how run-log lines are partitioned.
type Rules struct {
	// ManualPatterns are case-insensitive substrings; each pattern performs
	// its own pass over the log.
	ManualPatterns []string
	// SkipMarker is the case-insensitive phrase that marks a blacklist skip.
	// The text after the marker is "reason... identifier".
	SkipMarker string
}

// DefaultRules returns the rules used when the config does not override them.
func DefaultRules() Rules {
	return Rules{
		ManualPatterns: DefaultManualPatterns(),
		SkipMarker:     DefaultSkipMarker,
	}
}

// Report summarizes one classification pass.
type Report struct {
	// Total is the number of lines scanned.
	Total int
	// Manual is the number of manual-review lines selected (one per pattern match).
	Manual int
	// Skipped is the number of unique skip entries after deduplication.
	Skipped int
	// Malformed counts marker lines whose tail held fewer than two tokens.
	Malformed int
}

// Result carries the partitioned lines ready for artifact appends.
type Result struct {
	// Manual holds matched lines verbatim, in pattern-pass order.
	Manual []string
	// Skipped holds deduplicated "reason identifier" entries in lexicographic order.
	Skipped []string
	Report  Report
}

// Record is the structured outcome hand-off from an in-process applier run.
// It replaces the file round-trip: Line is the rendered run-log text, and for
// blacklist skips the reason and identifier arrive as explicit fields instead
// of being re-parsed out of the line.
type Record struct {
	Line       string
	Skip       bool
	Reason     string
	Identifier string
}

// Classify partitions raw run-log lines.
func (r Rules) Classify(lines []string) Result {
	result := Result{Report: Report{Total: len(lines)}}

	result.Manual = r.extractManual(lines)
	result.Report.Manual = len(result.Manual)

	entries := make([]string, 0, len(lines))
	for _, line := range lines {
		entry, ok, matched := r.skipEntry(line)
		if !matched {
			continue
		}
		if !ok {
			result.Report.Malformed++
			continue
		}
		entries = append(entries, entry)
	}
	result.Skipped = dedupeSorted(entries)
	result.Report.Skipped = len(result.Skipped)

	return result
}

// FromRecords partitions structured applier outcomes. Manual matching still
// inspects the rendered line so the phrase configuration behaves identically
// in both modes; skip entries come straight from the structured fields.
func (r Rules) FromRecords(records []Record) Result {
	result := Result{Report: Report{Total: len(records)}}

	lines := make([]string, len(records))
	for i, record := range records {
		lines[i] = record.Line
	}
	result.Manual = r.extractManual(lines)
	result.Report.Manual = len(result.Manual)

	entries := make([]string, 0, len(records))
	for _, record := range records {
		if !record.Skip {
			continue
		}
		entry := strings.Join(strings.Fields(record.Reason+" "+record.Identifier), " ")
		if record.Reason == "" || record.Identifier == "" {
			result.Report.Malformed++
			continue
		}
		entries = append(entries, entry)
	}
	result.Skipped = dedupeSorted(entries)
	result.Report.Skipped = len(result.Skipped)

	return result
}

func (r Rules) extractManual(lines []string) []string {
	var manual []string
	for _, pattern := range r.ManualPatterns {
		needle := strings.ToLower(strings.TrimSpace(pattern))
		if needle == "" {
			continue
		}
		for _, line := range lines {
			if strings.Contains(strings.ToLower(line), needle) {
				manual = append(manual, line)
			}
		}
	}
	return manual
}

// skipEntry reports whether line carries the skip marker and, when it does,
// the normalized "reason identifier" entry built from the marker tail. ok is
// false for marker lines whose tail has fewer than two tokens.
func (r Rules) skipEntry(line string) (entry string, ok, matched bool) {
	marker := strings.ToLower(strings.TrimSpace(r.SkipMarker))
	if marker == "" {
		return "", false, false
	}
	idx := strings.Index(strings.ToLower(line), marker)
	if idx < 0 {
		return "", false, false
	}
	tail := strings.Fields(line[idx+len(marker):])
	if len(tail) < 2 {
		return "", false, true
	}
	return strings.Join(tail, " "), true, true
}

func dedupeSorted(entries []string) []string {
	if len(entries) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(entries))
	unique := make([]string, 0, len(entries))
	for _, entry := range entries {
		if _, exists := seen[entry]; exists {
			continue
		}
		seen[entry] = struct{}{}
		unique = append(unique, entry)
	}
	sort.Strings(unique)
	return unique
}
