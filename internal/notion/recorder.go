package notion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hhapply/internal/config"
)

// ApplyRecord describes one application to be stored as a database page.
type ApplyRecord struct {
	Company        string
	Position       string
	JobPostURL     string
	NegotiationURL string
	AppliedAt      time.Time
}

// PageRef points at an existing database page and the negotiation it tracks.
type PageRef struct {
	ID             string
	NegotiationURL string
}

// Message is one negotiation chat entry to be appended to a page body.
type Message struct {
	Text          string
	FromApplicant bool
}

// Recorder is the Notion surface used by the apply and tracking flows.
type Recorder interface {
	// Enabled reports whether calls reach a real Notion workspace.
	Enabled() bool
	// RecordApply creates a database page for a fresh application.
	RecordApply(ctx context.Context, record ApplyRecord) (string, error)
	// AppliedPages lists pages still marked Applied that carry a
	// negotiation URL.
	AppliedPages(ctx context.Context) ([]PageRef, error)
	// WrongPages lists pages marked Wrong that carry a negotiation URL.
	WrongPages(ctx context.Context) ([]PageRef, error)
	// MarkUnsuccessful flips a page STATUS to Unsuccessful.
	MarkUnsuccessful(ctx context.Context, pageID string) error
	// ArchivePage removes a page from the database view.
	ArchivePage(ctx context.Context, pageID string) error
	// PageByNegotiation finds the page tracking the given negotiation URL.
	PageByNegotiation(ctx context.Context, negotiationURL string) (string, error)
	// AppendMessages adds negotiation chat messages to the page body.
	AppendMessages(ctx context.Context, pageID string, messages []Message) error
	// Check verifies the configured database is reachable.
	Check(ctx context.Context) error
}

// ErrNotFound reports a query that matched no database page.
var ErrNotFound = errors.New("notion page not found")

// NoopRecorder returns the recorder used when the integration is disabled.
func NoopRecorder() Recorder { return noopRecorder{} }

// NewRecorder builds a recorder from the [notion] configuration section.
// When the integration is disabled a noop recorder is returned.
func NewRecorder(cfg *config.Config) (Recorder, error) {
	if !cfg.Notion.Enabled {
		return noopRecorder{}, nil
	}
	token := strings.TrimSpace(cfg.Notion.Token)
	if token == "" {
		return nil, errors.New("notion token required")
	}
	databaseID := strings.TrimSpace(cfg.Notion.DatabaseID)
	if databaseID == "" {
		return nil, errors.New("notion database id required")
	}

	timeout := time.Duration(cfg.Notion.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := &http.Client{Timeout: timeout}
	if proxy := strings.TrimSpace(cfg.Notion.ProxyURL); proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("parse notion proxy url: %w", err)
		}
		httpClient.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	return &client{
		baseURL:      strings.TrimRight(strings.TrimSpace(cfg.Notion.BaseURL), "/"),
		token:        token,
		databaseID:   databaseID,
		resumePageID: strings.TrimSpace(cfg.Notion.ResumePageID),
		httpClient:   httpClient,
	}, nil
}

type noopRecorder struct{}

func (noopRecorder) Enabled() bool { return false }

func (noopRecorder) RecordApply(context.Context, ApplyRecord) (string, error) { return "", nil }

func (noopRecorder) AppliedPages(context.Context) ([]PageRef, error) { return nil, nil }

func (noopRecorder) WrongPages(context.Context) ([]PageRef, error) { return nil, nil }

func (noopRecorder) MarkUnsuccessful(context.Context, string) error { return nil }

func (noopRecorder) ArchivePage(context.Context, string) error { return nil }

func (noopRecorder) PageByNegotiation(context.Context, string) (string, error) {
	return "", ErrNotFound
}

func (noopRecorder) AppendMessages(context.Context, string, []Message) error { return nil }

func (noopRecorder) Check(context.Context) error { return nil }
