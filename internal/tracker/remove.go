package tracker

import (
	"context"
	"fmt"

	"hhapply/internal/hh"
)

// RemoveSummary counts the result of one removal sweep.
type RemoveSummary struct {
	Candidates int
	Removed    int
	Failed     int
}

// RemoveWrong withdraws every negotiation whose Notion page is marked Wrong
// and archives the page. The negotiation is withdrawn first; a page is only
// archived after hh.ru confirms the withdrawal.
func (t *Tracker) RemoveWrong(ctx context.Context) (RemoveSummary, error) {
	var summary RemoveSummary
	if !t.recorder.Enabled() {
		return summary, ErrNotionDisabled
	}

	pages, err := t.recorder.WrongPages(ctx)
	if err != nil {
		t.writeErrorf("Couldn't query database: %v", err)
		return summary, fmt.Errorf("query wrong pages: %w", err)
	}
	t.writeInfof("Received %d results", len(pages))

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Candidates++
		id, err := hh.NegotiationIDFromURL(page.NegotiationURL)
		if err != nil {
			summary.Failed++
			t.writeErrorf("Page %s: %v", page.ID, err)
			continue
		}
		if err := t.hh.DeleteNegotiation(ctx, id); err != nil {
			summary.Failed++
			t.writeErrorf("Couldn't delete negotiation %s: %v", id, err)
			continue
		}
		if err := t.recorder.ArchivePage(ctx, page.ID); err != nil {
			summary.Failed++
			t.writeErrorf("Couldn't remove page %s: %v", page.ID, err)
			continue
		}
		summary.Removed++
		t.writeInfof("Removed page %s", page.ID)
	}
	return summary, nil
}
