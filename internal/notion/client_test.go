package notion_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hhapply/internal/config"
	"hhapply/internal/notion"
)

func newTestRecorder(t *testing.T, handler http.Handler, mutate func(*config.Config)) notion.Recorder {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Notion.Enabled = true
	cfg.Notion.BaseURL = server.URL
	cfg.Notion.Token = "notion-token"
	cfg.Notion.DatabaseID = "db-1"
	cfg.Notion.ResumePageID = "resume-page"
	if mutate != nil {
		mutate(&cfg)
	}

	recorder, err := notion.NewRecorder(&cfg)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	return recorder
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	data, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("read request body: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	return payload
}

func dig(t *testing.T, value any, keys ...string) any {
	t.Helper()
	for _, key := range keys {
		object, ok := value.(map[string]any)
		if !ok {
			t.Fatalf("expected object before key %q, got %T", key, value)
		}
		value, ok = object[key]
		if !ok {
			t.Fatalf("missing key %q", key)
		}
	}
	return value
}

func TestNewRecorderDisabledIsNoop(t *testing.T) {
	cfg := config.Default()
	cfg.Notion.Enabled = false

	recorder, err := notion.NewRecorder(&cfg)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	if recorder.Enabled() {
		t.Fatal("disabled recorder must report Enabled() == false")
	}
	if _, err := recorder.RecordApply(context.Background(), notion.ApplyRecord{}); err != nil {
		t.Fatalf("noop RecordApply: %v", err)
	}
	if _, err := recorder.PageByNegotiation(context.Background(), "/negotiations/1"); !errors.Is(err, notion.ErrNotFound) {
		t.Fatalf("noop PageByNegotiation should report ErrNotFound, got %v", err)
	}
}

func TestRecordApplyCreatesPage(t *testing.T) {
	recorder := newTestRecorder(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/pages" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer notion-token" {
			t.Fatalf("Authorization = %q", got)
		}
		if got := r.Header.Get("Notion-Version"); got == "" {
			t.Fatal("missing Notion-Version header")
		}
		payload := decodeBody(t, r)
		if got := dig(t, payload, "parent", "database_id"); got != "db-1" {
			t.Fatalf("database_id = %v", got)
		}
		title := dig(t, payload, "properties", "COMPANY", "title").([]any)
		if got := dig(t, title[0], "text", "content"); got != "Acme" {
			t.Fatalf("company = %v", got)
		}
		if got := dig(t, payload, "properties", "APPLICATION DATE", "date", "start"); got != "2024-12-24" {
			t.Fatalf("application date = %v", got)
		}
		if got := dig(t, payload, "properties", "STATUS", "status", "name"); got != "Applied" {
			t.Fatalf("status = %v", got)
		}
		if got := dig(t, payload, "properties", "HH negotiation url", "url"); got != "https://api.hh.ru/negotiations/555" {
			t.Fatalf("negotiation url = %v", got)
		}
		relation := dig(t, payload, "properties", "RESUME USED", "relation").([]any)
		if got := dig(t, relation[0], "id"); got != "resume-page" {
			t.Fatalf("resume relation = %v", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "page-1"}`))
	}), nil)

	pageID, err := recorder.RecordApply(context.Background(), notion.ApplyRecord{
		Company:        "Acme",
		Position:       "Go Developer",
		JobPostURL:     "https://hh.ru/vacancy/101",
		NegotiationURL: "https://api.hh.ru/negotiations/555",
		AppliedAt:      time.Date(2024, 12, 24, 10, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("RecordApply: %v", err)
	}
	if pageID != "page-1" {
		t.Fatalf("page id = %q", pageID)
	}
}

func TestRecordApplyOmitsResumeRelationWhenUnset(t *testing.T) {
	recorder := newTestRecorder(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := decodeBody(t, r)
		properties := dig(t, payload, "properties").(map[string]any)
		if _, present := properties["RESUME USED"]; present {
			t.Fatal("RESUME USED must be omitted without a resume page id")
		}
		_, _ = w.Write([]byte(`{"id": "page-1"}`))
	}), func(cfg *config.Config) {
		cfg.Notion.ResumePageID = ""
	})

	if _, err := recorder.RecordApply(context.Background(), notion.ApplyRecord{AppliedAt: time.Now()}); err != nil {
		t.Fatalf("RecordApply: %v", err)
	}
}

func TestAppliedPagesQueriesByStatus(t *testing.T) {
	recorder := newTestRecorder(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/databases/db-1/query" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		payload := decodeBody(t, r)
		conditions := dig(t, payload, "filter", "and").([]any)
		if len(conditions) != 2 {
			t.Fatalf("expected 2 filter conditions, got %d", len(conditions))
		}
		if got := dig(t, conditions[0], "status", "equals"); got != "Applied" {
			t.Fatalf("status filter = %v", got)
		}
		if got := dig(t, conditions[1], "url", "is_not_empty"); got != true {
			t.Fatalf("url filter = %v", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": [
			{"id": "page-1", "properties": {"HH negotiation url": {"url": "/negotiations/1"}}},
			{"id": "page-2", "properties": {"HH negotiation url": {"url": "/negotiations/2"}}}
		]}`))
	}), nil)

	pages, err := recorder.AppliedPages(context.Background())
	if err != nil {
		t.Fatalf("AppliedPages: %v", err)
	}
	if len(pages) != 2 || pages[0].ID != "page-1" || pages[1].NegotiationURL != "/negotiations/2" {
		t.Fatalf("unexpected pages: %+v", pages)
	}
}

func TestWrongPagesFilter(t *testing.T) {
	recorder := newTestRecorder(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := decodeBody(t, r)
		conditions := dig(t, payload, "filter", "and").([]any)
		if got := dig(t, conditions[0], "status", "equals"); got != "Wrong" {
			t.Fatalf("status filter = %v", got)
		}
		_, _ = w.Write([]byte(`{"results": []}`))
	}), nil)

	pages, err := recorder.WrongPages(context.Background())
	if err != nil {
		t.Fatalf("WrongPages: %v", err)
	}
	if len(pages) != 0 {
		t.Fatalf("unexpected pages: %+v", pages)
	}
}

func TestMarkUnsuccessfulPatchesStatus(t *testing.T) {
	recorder := newTestRecorder(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/pages/page-1" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		payload := decodeBody(t, r)
		if got := dig(t, payload, "properties", "STATUS", "status", "name"); got != "Unsuccessful" {
			t.Fatalf("status = %v", got)
		}
		_, _ = w.Write([]byte(`{}`))
	}), nil)

	if err := recorder.MarkUnsuccessful(context.Background(), "page-1"); err != nil {
		t.Fatalf("MarkUnsuccessful: %v", err)
	}
}

func TestArchivePage(t *testing.T) {
	recorder := newTestRecorder(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := decodeBody(t, r)
		if got := dig(t, payload, "archived"); got != true {
			t.Fatalf("archived = %v", got)
		}
		_, _ = w.Write([]byte(`{}`))
	}), nil)

	if err := recorder.ArchivePage(context.Background(), "page-1"); err != nil {
		t.Fatalf("ArchivePage: %v", err)
	}
}

func TestPageByNegotiation(t *testing.T) {
	recorder := newTestRecorder(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := decodeBody(t, r)
		conditions := dig(t, payload, "filter", "and").([]any)
		if got := dig(t, conditions[0], "url", "equals"); got != "/negotiations/555" {
			t.Fatalf("url filter = %v", got)
		}
		_, _ = w.Write([]byte(`{"results": [{"id": "page-9", "properties": {"HH negotiation url": {"url": "/negotiations/555"}}}]}`))
	}), nil)

	pageID, err := recorder.PageByNegotiation(context.Background(), "/negotiations/555")
	if err != nil {
		t.Fatalf("PageByNegotiation: %v", err)
	}
	if pageID != "page-9" {
		t.Fatalf("page id = %q", pageID)
	}
}

func TestPageByNegotiationNotFound(t *testing.T) {
	recorder := newTestRecorder(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": []}`))
	}), nil)

	_, err := recorder.PageByNegotiation(context.Background(), "/negotiations/404")
	if !errors.Is(err, notion.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAppendMessagesColorsEmployerReplies(t *testing.T) {
	var colors []string
	recorder := newTestRecorder(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/blocks/page-1/children" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		payload := decodeBody(t, r)
		children := dig(t, payload, "children").([]any)
		if len(children) != 2 {
			t.Fatalf("expected paragraph and divider, got %d blocks", len(children))
		}
		colors = append(colors, dig(t, children[0], "paragraph", "color").(string))
		if got := dig(t, children[1], "type"); got != "divider" {
			t.Fatalf("second block = %v", got)
		}
		_, _ = w.Write([]byte(`{}`))
	}), nil)

	err := recorder.AppendMessages(context.Background(), "page-1", []notion.Message{
		{Text: "hello", FromApplicant: true},
		{Text: "thanks", FromApplicant: false},
	})
	if err != nil {
		t.Fatalf("AppendMessages: %v", err)
	}
	if len(colors) != 2 || colors[0] != "default" || colors[1] != "gray_background" {
		t.Fatalf("unexpected colors: %v", colors)
	}
}

func TestErrorsIncludeResponseBody(t *testing.T) {
	recorder := newTestRecorder(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message": "validation_error"}`))
	}), nil)

	err := recorder.Check(context.Background())
	if err == nil {
		t.Fatal("expected error on non-200 response")
	}
	if !strings.Contains(err.Error(), "400") || !strings.Contains(err.Error(), "validation_error") {
		t.Fatalf("unexpected error: %v", err)
	}
}
