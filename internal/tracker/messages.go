package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hhapply/internal/notion"
)

// MessageSummary reports one chat copy.
type MessageSummary struct {
	PageID string
	Copied int
}

// CopyMessages appends the negotiation chat to the Notion page tracking it.
// The first message is the cover letter the page already represents, so it
// is dropped.
func (t *Tracker) CopyMessages(ctx context.Context, negotiationID string) (MessageSummary, error) {
	var summary MessageSummary
	if !t.recorder.Enabled() {
		return summary, ErrNotionDisabled
	}
	negotiationID = strings.TrimSpace(negotiationID)
	if negotiationID == "" {
		return summary, errors.New("negotiation id required")
	}

	pageID, err := t.recorder.PageByNegotiation(ctx, "/negotiations/"+negotiationID)
	if err != nil {
		return summary, fmt.Errorf("find page for negotiation %s: %w", negotiationID, err)
	}
	summary.PageID = pageID

	messages, err := t.hh.NegotiationMessages(ctx, negotiationID)
	if err != nil {
		return summary, err
	}
	if len(messages) > 0 {
		messages = messages[1:]
	}
	if len(messages) == 0 {
		return summary, nil
	}

	converted := make([]notion.Message, 0, len(messages))
	for _, message := range messages {
		converted = append(converted, notion.Message{
			Text:          message.Text,
			FromApplicant: message.Author.ParticipantType == "applicant",
		})
	}
	if err := t.recorder.AppendMessages(ctx, pageID, converted); err != nil {
		return summary, err
	}
	summary.Copied = len(converted)
	return summary, nil
}
