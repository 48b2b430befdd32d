package tracker

import (
	"context"
	"fmt"
	"time"

	"hhapply/internal/hh"
	"hhapply/internal/notion"
	"hhapply/internal/runlog"
)

// negotiationTimeLayouts covers the created_at forms hh.ru emits. The API
// writes numeric zones without a colon; RFC 3339 is accepted as a fallback.
var negotiationTimeLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
}

// ManualSummary counts the result of one manual-apply import.
type ManualSummary struct {
	Seen    int
	Skipped int
	Added   int
	Failed  int
}

// AddManual walks the negotiation history newest first and records every
// negotiation created at or after since as an application page. Older
// entries are skipped but the walk continues, because ordering inside a page
// is not guaranteed across vacancy updates. In test mode negotiations are
// only logged.
func (t *Tracker) AddManual(ctx context.Context, since time.Time, testRun bool) (ManualSummary, error) {
	var summary ManualSummary
	if !t.recorder.Enabled() {
		t.writeLine(runlog.LevelInfo, "NOTION: Notion is disabled")
	}

	first, err := t.hh.Negotiations(ctx, 0)
	if err != nil {
		t.writeErrorf("Error fetching negotiations page 0: %v", err)
		return summary, fmt.Errorf("fetch first negotiations page: %w", err)
	}
	t.writeInfof("Got %d negotiations, %d pages", first.Found, first.Pages)

	totalPages := first.Pages
	if totalPages < 1 {
		totalPages = 1
	}

	current := first
	for page := 0; page < totalPages; page++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if page > 0 {
			fetched, err := t.hh.Negotiations(ctx, page)
			if err != nil {
				t.writeErrorf("Error fetching negotiations page %d: %v", page, err)
				continue
			}
			current = fetched
		}
		t.writeInfof("Page=%d got %d negotiations", page, len(current.Items))

		for idx, negotiation := range current.Items {
			summary.Seen++
			createdAt, err := parseNegotiationTime(negotiation.CreatedAt)
			if err != nil {
				summary.Failed++
				t.writeErrorf("Page=%02d idx=%02d: %s %v", page, idx, negotiation.ID, err)
				continue
			}
			if createdAt.Before(since) {
				summary.Skipped++
				continue
			}

			name, employer, jobPost := vacancyFields(negotiation.Vacancy)
			basic := fmt.Sprintf("Page=%02d idx=%02d: %s %s %s %s", page, idx, negotiation.CreatedAt, negotiation.ID, name, employer)
			t.writeLine(runlog.LevelInfo, basic)
			if testRun || !t.recorder.Enabled() {
				continue
			}

			pageID, err := t.recorder.RecordApply(ctx, notion.ApplyRecord{
				Company:        employer,
				Position:       name,
				JobPostURL:     jobPost,
				NegotiationURL: "/negotiations/" + negotiation.ID,
				AppliedAt:      createdAt,
			})
			if err != nil {
				summary.Failed++
				t.writeErrorf("%s NOTION: Could not create a page: %v", basic, err)
				continue
			}
			summary.Added++
			t.writeInfof("%s NOTION: Page created with id: %s", basic, pageID)
		}
	}
	return summary, nil
}

func parseNegotiationTime(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range negotiationTimeLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("parse negotiation time %q: %w", value, lastErr)
}

func vacancyFields(vacancy *hh.Vacancy) (name, employer, jobPost string) {
	if vacancy == nil {
		return "", "", ""
	}
	return vacancy.Name, vacancy.Employer.Name, vacancy.AlternateURL
}
