package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const notionVersion = "2022-06-28"

type client struct {
	baseURL      string
	token        string
	databaseID   string
	resumePageID string
	httpClient   *http.Client
}

var _ Recorder = (*client)(nil)

func (c *client) Enabled() bool { return true }

func (c *client) RecordApply(ctx context.Context, record ApplyRecord) (string, error) {
	properties := map[string]any{
		"COMPANY": map[string]any{
			"title": []any{map[string]any{"text": map[string]any{"content": record.Company}}},
		},
		"POSITION": map[string]any{
			"rich_text": []any{map[string]any{"type": "text", "text": map[string]any{"content": record.Position}}},
		},
		"APPLICATION DATE": map[string]any{
			"date": map[string]any{"start": record.AppliedAt.Format("2006-01-02")},
		},
		"JOB POST": map[string]any{"url": record.JobPostURL},
		"STATUS":   map[string]any{"status": map[string]any{"name": "Applied"}},
		"HH negotiation url": map[string]any{
			"url": record.NegotiationURL,
		},
	}
	if c.resumePageID != "" {
		properties["RESUME USED"] = map[string]any{
			"relation": []any{map[string]any{"id": c.resumePageID}},
		}
	}
	payload := map[string]any{
		"parent":     map[string]any{"database_id": c.databaseID},
		"properties": properties,
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/pages", payload, &created); err != nil {
		return "", fmt.Errorf("create page for %s: %w", record.JobPostURL, err)
	}
	return created.ID, nil
}

func (c *client) AppliedPages(ctx context.Context) ([]PageRef, error) {
	pages, err := c.queryByStatus(ctx, "Applied")
	if err != nil {
		return nil, fmt.Errorf("query applied pages: %w", err)
	}
	return pages, nil
}

func (c *client) WrongPages(ctx context.Context) ([]PageRef, error) {
	pages, err := c.queryByStatus(ctx, "Wrong")
	if err != nil {
		return nil, fmt.Errorf("query wrong pages: %w", err)
	}
	return pages, nil
}

func (c *client) MarkUnsuccessful(ctx context.Context, pageID string) error {
	payload := map[string]any{
		"properties": map[string]any{
			"STATUS": map[string]any{"status": map[string]any{"name": "Unsuccessful"}},
		},
	}
	if err := c.do(ctx, http.MethodPatch, "/pages/"+pageID, payload, nil); err != nil {
		return fmt.Errorf("mark page %s unsuccessful: %w", pageID, err)
	}
	return nil
}

func (c *client) ArchivePage(ctx context.Context, pageID string) error {
	payload := map[string]any{"archived": true}
	if err := c.do(ctx, http.MethodPatch, "/pages/"+pageID, payload, nil); err != nil {
		return fmt.Errorf("archive page %s: %w", pageID, err)
	}
	return nil
}

func (c *client) PageByNegotiation(ctx context.Context, negotiationURL string) (string, error) {
	payload := map[string]any{
		"filter": map[string]any{
			"and": []any{
				map[string]any{
					"property": "HH negotiation url",
					"url":      map[string]any{"equals": negotiationURL},
				},
			},
		},
	}
	var response queryResponse
	if err := c.do(ctx, http.MethodPost, "/databases/"+c.databaseID+"/query", payload, &response); err != nil {
		return "", fmt.Errorf("query page by negotiation %s: %w", negotiationURL, err)
	}
	if len(response.Results) == 0 {
		return "", fmt.Errorf("negotiation %s: %w", negotiationURL, ErrNotFound)
	}
	return response.Results[0].ID, nil
}

func (c *client) AppendMessages(ctx context.Context, pageID string, messages []Message) error {
	for _, message := range messages {
		color := "default"
		if !message.FromApplicant {
			color = "gray_background"
		}
		payload := map[string]any{
			"children": []any{
				map[string]any{
					"object": "block",
					"type":   "paragraph",
					"paragraph": map[string]any{
						"rich_text": []any{
							map[string]any{"type": "text", "text": map[string]any{"content": message.Text}},
						},
						"color": color,
					},
				},
				map[string]any{
					"object":  "block",
					"type":    "divider",
					"divider": map[string]any{},
				},
			},
		}
		if err := c.do(ctx, http.MethodPatch, "/blocks/"+pageID+"/children", payload, nil); err != nil {
			return fmt.Errorf("append message to page %s: %w", pageID, err)
		}
	}
	return nil
}

func (c *client) Check(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/databases/"+c.databaseID, nil, nil); err != nil {
		return fmt.Errorf("check notion database: %w", err)
	}
	return nil
}

type queryResponse struct {
	Results []struct {
		ID         string `json:"id"`
		Properties struct {
			NegotiationURL struct {
				URL string `json:"url"`
			} `json:"HH negotiation url"`
		} `json:"properties"`
	} `json:"results"`
}

func (c *client) queryByStatus(ctx context.Context, status string) ([]PageRef, error) {
	payload := map[string]any{
		"filter": map[string]any{
			"and": []any{
				map[string]any{
					"property": "STATUS",
					"status":   map[string]any{"equals": status},
				},
				map[string]any{
					"property": "HH negotiation url",
					"url":      map[string]any{"is_not_empty": true},
				},
			},
		},
	}
	var response queryResponse
	if err := c.do(ctx, http.MethodPost, "/databases/"+c.databaseID+"/query", payload, &response); err != nil {
		return nil, err
	}
	pages := make([]PageRef, 0, len(response.Results))
	for _, result := range response.Results {
		pages = append(pages, PageRef{
			ID:             result.ID,
			NegotiationURL: result.Properties.NegotiationURL.URL,
		})
	}
	return pages, nil
}

func (c *client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode notion payload: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build notion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", notionVersion)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute notion request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("notion %s %s returned %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(text)))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode notion response: %w", err)
	}
	return nil
}
