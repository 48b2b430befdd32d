package tracker

import (
	"context"
	"fmt"

	"hhapply/internal/hh"
)

// RejectionSummary counts the result of one rejection sweep.
type RejectionSummary struct {
	Checked  int
	Rejected int
	Failed   int
}

// ProcessRejections walks every Notion page still marked Applied, checks the
// negotiation state on hh.ru, and flips rejected ones to Unsuccessful.
// Per-page failures are logged and counted without stopping the sweep.
func (t *Tracker) ProcessRejections(ctx context.Context) (RejectionSummary, error) {
	var summary RejectionSummary
	if !t.recorder.Enabled() {
		return summary, ErrNotionDisabled
	}

	pages, err := t.recorder.AppliedPages(ctx)
	if err != nil {
		t.writeErrorf("Couldn't query database: %v", err)
		return summary, fmt.Errorf("query applied pages: %w", err)
	}
	t.writeInfof("Received %d results", len(pages))

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Checked++
		rejected, err := t.negotiationRejected(ctx, page.NegotiationURL)
		if err != nil {
			summary.Failed++
			t.writeErrorf("Page %s with HH url %s: %v", page.ID, page.NegotiationURL, err)
			continue
		}
		if !rejected {
			t.writeInfof("Page %s with HH url %s: application is not rejected", page.ID, page.NegotiationURL)
			continue
		}
		if err := t.recorder.MarkUnsuccessful(ctx, page.ID); err != nil {
			summary.Failed++
			t.writeErrorf("Couldn't update page %s: %v", page.ID, err)
			continue
		}
		summary.Rejected++
		t.writeInfof("Updated page %s: status set to Unsuccessful", page.ID)
	}
	return summary, nil
}

func (t *Tracker) negotiationRejected(ctx context.Context, negotiationURL string) (bool, error) {
	id, err := hh.NegotiationIDFromURL(negotiationURL)
	if err != nil {
		return false, err
	}
	negotiation, err := t.hh.Negotiation(ctx, id)
	if err != nil {
		return false, err
	}
	return negotiation.State.ID == "discard", nil
}
