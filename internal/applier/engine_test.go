package applier_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hhapply/internal/applier"
	"hhapply/internal/blacklist"
	"hhapply/internal/hh"
	"hhapply/internal/notion"
	"hhapply/internal/runlog"
)

var testNow = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

type stubSource struct {
	pages map[int]*hh.VacancyPage
	errs  map[int]error
	calls []int
}

func (s *stubSource) FetchPage(ctx context.Context, page int) (*hh.VacancyPage, error) {
	s.calls = append(s.calls, page)
	if err, failed := s.errs[page]; failed {
		return nil, err
	}
	if result, ok := s.pages[page]; ok {
		return result, nil
	}
	return &hh.VacancyPage{}, nil
}

type applyResult struct {
	url string
	err error
}

type stubSender struct {
	results map[string]applyResult
	calls   []hh.ApplyRequest
}

func (s *stubSender) Apply(ctx context.Context, request hh.ApplyRequest) (string, error) {
	s.calls = append(s.calls, request)
	result := s.results[request.VacancyID]
	return result.url, result.err
}

type stubRecorder struct {
	notion.Recorder
	records []notion.ApplyRecord
	err     error
}

func (s *stubRecorder) Enabled() bool { return true }

func (s *stubRecorder) RecordApply(ctx context.Context, record notion.ApplyRecord) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.records = append(s.records, record)
	return "page-" + record.NegotiationURL[strings.LastIndex(record.NegotiationURL, "/")+1:], nil
}

func vacancy(id, name, employer string) hh.Vacancy {
	return hh.Vacancy{
		ID:           id,
		Name:         name,
		AlternateURL: "https://hh.ru/vacancy/" + id,
		Employer:     hh.Employer{Name: employer},
	}
}

func newRunLog(t *testing.T) *runlog.Writer {
	t.Helper()
	writer, err := runlog.NewWriter(filepath.Join(t.TempDir(), "send_applies.log"))
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	t.Cleanup(func() { _ = writer.Close() })
	return writer
}

func runEngine(t *testing.T, opts applier.Options) ([]applier.Outcome, []string) {
	t.Helper()
	writer := newRunLog(t)
	opts.RunLog = writer
	opts.Now = func() time.Time { return testNow }

	engine, err := applier.New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	outcomes, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	lines, err := runlog.ReadLines(writer.Path())
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	return outcomes, lines
}

func TestRunAppliesAndRecords(t *testing.T) {
	source := &stubSource{pages: map[int]*hh.VacancyPage{
		0: {Found: 2, Pages: 1, Items: []hh.Vacancy{
			vacancy("101", "Go Developer", "Acme"),
			vacancy("102", "Backend Engineer", "Globex"),
		}},
	}}
	sender := &stubSender{results: map[string]applyResult{
		"101": {url: "https://api.hh.ru/negotiations/1"},
		"102": {url: "https://api.hh.ru/negotiations/2"},
	}}
	recorder := &stubRecorder{Recorder: notion.NoopRecorder()}

	outcomes, lines := runEngine(t, applier.Options{
		Source:      source,
		Sender:      sender,
		Recorder:    recorder,
		ResumeID:    "resume-1",
		CoverLetter: "hello",
	})

	want := []string{
		"2024-01-01 10:00:00 - INFO  - Got 2 vacancies, 1 pages",
		"2024-01-01 10:00:00 - INFO  - Page=0 got 2 vacancies",
		"2024-01-01 10:00:00 - INFO  - Page=00 idx=00: 101 Go Developer Acme APPLIED successfully, GOT negotiation url: https://api.hh.ru/negotiations/1",
		"2024-01-01 10:00:00 - INFO  - Page=00 idx=00: 101 Go Developer Acme NOTION: Page created with id: page-1",
		"2024-01-01 10:00:00 - INFO  - Page=00 idx=01: 102 Backend Engineer Globex APPLIED successfully, GOT negotiation url: https://api.hh.ru/negotiations/2",
		"2024-01-01 10:00:00 - INFO  - Page=00 idx=01: 102 Backend Engineer Globex NOTION: Page created with id: page-2",
		"2024-01-01 10:00:00 - INFO  - " + strings.Repeat("-", 60) + "Done",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d:\n%s", len(want), len(lines), strings.Join(lines, "\n"))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}

	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	for i, outcome := range outcomes {
		if outcome.Status != applier.StatusApplied {
			t.Fatalf("outcome %d status = %q", i, outcome.Status)
		}
	}
	if outcomes[0].URL != "https://api.hh.ru/negotiations/1" || outcomes[0].Line != want[2] {
		t.Fatalf("unexpected first outcome: %+v", outcomes[0])
	}

	if len(sender.calls) != 2 || sender.calls[0].Message != "hello" || sender.calls[0].ResumeID != "resume-1" {
		t.Fatalf("unexpected sender calls: %+v", sender.calls)
	}
	if len(recorder.records) != 2 || recorder.records[0].Company != "Acme" || recorder.records[0].JobPostURL != "https://hh.ru/vacancy/101" {
		t.Fatalf("unexpected notion records: %+v", recorder.records)
	}
}

func TestRunSkipsBlacklistedVacancies(t *testing.T) {
	source := &stubSource{pages: map[int]*hh.VacancyPage{
		0: {Found: 3, Pages: 1, Items: []hh.Vacancy{
			vacancy("201", "Senior Go Developer", "Acme"),
			vacancy("202", "Go Developer", "Globex"),
			vacancy("203", "Backend Engineer", "Initech"),
		}},
	}}
	sender := &stubSender{results: map[string]applyResult{
		"203": {url: "https://api.hh.ru/negotiations/3"},
	}}

	outcomes, lines := runEngine(t, applier.Options{
		Source:    source,
		Sender:    sender,
		Blacklist: blacklist.New([]string{"senior"}, []string{"202"}),
		ResumeID:  "resume-1",
	})

	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	if outcomes[0].Status != applier.StatusSkippedWords || outcomes[0].Reason != "senior" {
		t.Fatalf("unexpected first outcome: %+v", outcomes[0])
	}
	if outcomes[1].Status != applier.StatusSkippedID {
		t.Fatalf("unexpected second outcome: %+v", outcomes[1])
	}
	if outcomes[2].Status != applier.StatusApplied {
		t.Fatalf("unexpected third outcome: %+v", outcomes[2])
	}

	if !strings.HasSuffix(lines[2], "Page=00 idx=00: 201 Senior Go Developer Acme SKIPPED due to blacklist words senior 201") {
		t.Fatalf("unexpected word skip line: %q", lines[2])
	}
	if !strings.HasSuffix(lines[3], "Page=00 idx=01: 202 Go Developer Globex SKIPPED due to blacklist ID") {
		t.Fatalf("unexpected id skip line: %q", lines[3])
	}
	if len(sender.calls) != 1 || sender.calls[0].VacancyID != "203" {
		t.Fatalf("unexpected sender calls: %+v", sender.calls)
	}
}

func TestRunTestModeNeverApplies(t *testing.T) {
	source := &stubSource{pages: map[int]*hh.VacancyPage{
		0: {Found: 2, Pages: 1, Items: []hh.Vacancy{
			vacancy("301", "Senior Go Developer", "Acme"),
			vacancy("302", "Go Developer", "Globex"),
		}},
	}}
	sender := &stubSender{}

	outcomes, lines := runEngine(t, applier.Options{
		Source:    source,
		Sender:    sender,
		Blacklist: blacklist.New([]string{"senior"}, nil),
		TestRun:   true,
	})

	if len(sender.calls) != 0 {
		t.Fatalf("test run must not apply, got calls %+v", sender.calls)
	}
	if outcomes[0].Status != applier.StatusSkippedWords || outcomes[1].Status != applier.StatusTestRun {
		t.Fatalf("unexpected outcomes: %+v", outcomes)
	}
	if !strings.HasSuffix(lines[3], "Page=00 idx=01: 302 Go Developer Globex TEST RUN") {
		t.Fatalf("unexpected test run line: %q", lines[3])
	}
}

func TestRunStopsOnLimitExceeded(t *testing.T) {
	source := &stubSource{pages: map[int]*hh.VacancyPage{
		0: {Found: 4, Pages: 2, Items: []hh.Vacancy{
			vacancy("401", "Go Developer", "Acme"),
			vacancy("402", "Go Developer", "Globex"),
		}},
		1: {Found: 4, Pages: 2, Items: []hh.Vacancy{
			vacancy("403", "Go Developer", "Initech"),
		}},
	}}
	sender := &stubSender{results: map[string]applyResult{
		"401": {url: "https://api.hh.ru/negotiations/1"},
		"402": {err: fmt.Errorf("hh api returned 403: %w", hh.ErrLimitExceeded)},
	}}

	outcomes, lines := runEngine(t, applier.Options{
		Source:   source,
		Sender:   sender,
		ResumeID: "resume-1",
	})

	if len(outcomes) != 2 {
		t.Fatalf("expected walk to stop after limit, got %d outcomes", len(outcomes))
	}
	if outcomes[1].Status != applier.StatusLimitExceeded {
		t.Fatalf("unexpected outcome: %+v", outcomes[1])
	}
	if len(source.calls) != 1 {
		t.Fatalf("page 1 must not be fetched after limit, calls %v", source.calls)
	}

	limitLine := lines[len(lines)-2]
	if !strings.HasSuffix(limitLine, "Page=00 idx=01: 402 Go Developer Globex LIMIT EXCEEDED. Stopping...") {
		t.Fatalf("unexpected limit line: %q", limitLine)
	}
	if !strings.Contains(limitLine, "- ERROR -") {
		t.Fatalf("limit line must be an error: %q", limitLine)
	}
	if !strings.HasSuffix(lines[len(lines)-1], "Done") {
		t.Fatalf("expected trailing Done line, got %q", lines[len(lines)-1])
	}
}

func TestRunRendersFailureOutcomes(t *testing.T) {
	source := &stubSource{pages: map[int]*hh.VacancyPage{
		0: {Found: 3, Pages: 1, Items: []hh.Vacancy{
			vacancy("501", "Go Developer", "Acme"),
			vacancy("502", "Go Developer", "Globex"),
			vacancy("503", "Go Developer", "Initech"),
		}},
	}}
	sender := &stubSender{results: map[string]applyResult{
		"501": {err: fmt.Errorf("hh api returned 400: %w", hh.ErrTestRequired)},
		"502": {err: &hh.ExternalApplyError{URL: "https://employer.example/form"}},
		"503": {err: &hh.APIError{StatusCode: 400, Description: "Archived vacancy"}},
	}}

	outcomes, lines := runEngine(t, applier.Options{
		Source:   source,
		Sender:   sender,
		ResumeID: "resume-1",
	})

	if outcomes[0].Status != applier.StatusProcessTest || outcomes[0].URL != "https://hh.ru/vacancy/501" {
		t.Fatalf("unexpected process test outcome: %+v", outcomes[0])
	}
	if outcomes[1].Status != applier.StatusExternalApply || outcomes[1].URL != "https://employer.example/form" {
		t.Fatalf("unexpected external apply outcome: %+v", outcomes[1])
	}
	if outcomes[2].Status != applier.StatusFailed {
		t.Fatalf("unexpected failed outcome: %+v", outcomes[2])
	}

	if !strings.HasSuffix(lines[2], "apply FAILED with error: Process test required on https://hh.ru/vacancy/501") {
		t.Fatalf("unexpected process test line: %q", lines[2])
	}
	if !strings.HasSuffix(lines[3], "apply FAILED with error: External apply required on https://employer.example/form") {
		t.Fatalf("unexpected external apply line: %q", lines[3])
	}
	if !strings.HasSuffix(lines[4], "apply FAILED with error: Archived vacancy") {
		t.Fatalf("unexpected failure line: %q", lines[4])
	}
}

func TestRunContinuesPastPageFetchErrors(t *testing.T) {
	source := &stubSource{
		pages: map[int]*hh.VacancyPage{
			0: {Found: 3, Pages: 3, Items: []hh.Vacancy{vacancy("601", "Go Developer", "Acme")}},
			2: {Found: 3, Pages: 3, Items: []hh.Vacancy{vacancy("603", "Go Developer", "Initech")}},
		},
		errs: map[int]error{1: errors.New("boom")},
	}
	sender := &stubSender{results: map[string]applyResult{
		"601": {url: "https://api.hh.ru/negotiations/1"},
		"603": {url: "https://api.hh.ru/negotiations/3"},
	}}

	outcomes, lines := runEngine(t, applier.Options{
		Source:   source,
		Sender:   sender,
		ResumeID: "resume-1",
	})

	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	var sawError bool
	for _, line := range lines {
		if strings.Contains(line, "Error fetching page 1: boom") {
			sawError = true
		}
	}
	if !sawError {
		t.Fatalf("expected page fetch error line:\n%s", strings.Join(lines, "\n"))
	}
}

func TestRunFailsWhenFirstPageUnavailable(t *testing.T) {
	source := &stubSource{errs: map[int]error{0: errors.New("unauthorized")}}
	writer := newRunLog(t)

	engine, err := applier.New(applier.Options{
		Source:   source,
		Sender:   &stubSender{},
		RunLog:   writer,
		ResumeID: "resume-1",
		Now:      func() time.Time { return testNow },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := engine.Run(context.Background()); err == nil {
		t.Fatal("expected error when first page fetch fails")
	}
}

func TestRunHonorsMaxPages(t *testing.T) {
	source := &stubSource{pages: map[int]*hh.VacancyPage{
		0: {Found: 100, Pages: 5, Items: []hh.Vacancy{vacancy("701", "Go Developer", "Acme")}},
		1: {Found: 100, Pages: 5, Items: []hh.Vacancy{vacancy("702", "Go Developer", "Globex")}},
	}}
	sender := &stubSender{results: map[string]applyResult{
		"701": {url: "https://api.hh.ru/negotiations/1"},
		"702": {url: "https://api.hh.ru/negotiations/2"},
	}}

	_, _ = runEngine(t, applier.Options{
		Source:   source,
		Sender:   sender,
		ResumeID: "resume-1",
		MaxPages: 2,
	})

	if len(source.calls) != 2 || source.calls[0] != 0 || source.calls[1] != 1 {
		t.Fatalf("expected pages 0 and 1 only, calls %v", source.calls)
	}
}

func TestRunLogsNotionFailuresWithoutStopping(t *testing.T) {
	source := &stubSource{pages: map[int]*hh.VacancyPage{
		0: {Found: 1, Pages: 1, Items: []hh.Vacancy{vacancy("801", "Go Developer", "Acme")}},
	}}
	sender := &stubSender{results: map[string]applyResult{
		"801": {url: "https://api.hh.ru/negotiations/1"},
	}}
	recorder := &stubRecorder{Recorder: notion.NoopRecorder(), err: errors.New("notion down")}

	outcomes, lines := runEngine(t, applier.Options{
		Source:   source,
		Sender:   sender,
		Recorder: recorder,
		ResumeID: "resume-1",
	})

	if outcomes[0].Status != applier.StatusApplied {
		t.Fatalf("apply must still succeed: %+v", outcomes[0])
	}
	var sawNotionError bool
	for _, line := range lines {
		if strings.Contains(line, "NOTION: Could not create a page: notion down") {
			sawNotionError = true
		}
	}
	if !sawNotionError {
		t.Fatalf("expected notion failure line:\n%s", strings.Join(lines, "\n"))
	}
}

func TestRecordsCarrySkipFields(t *testing.T) {
	outcomes := []applier.Outcome{
		{Status: applier.StatusApplied, Line: "line-1", VacancyID: "1"},
		{Status: applier.StatusSkippedWords, Line: "line-2", VacancyID: "2", Reason: "senior"},
	}

	records := applier.Records(outcomes)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Skip || records[0].Line != "line-1" {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if !records[1].Skip || records[1].Reason != "senior" || records[1].Identifier != "2" {
		t.Fatalf("unexpected second record: %+v", records[1])
	}
}
