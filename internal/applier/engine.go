package applier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"hhapply/internal/blacklist"
	"hhapply/internal/hh"
	"hhapply/internal/logging"
	"hhapply/internal/notion"
	"hhapply/internal/runlog"
)

// NegotiationSender creates negotiations. *hh.Client satisfies it.
type NegotiationSender interface {
	Apply(ctx context.Context, request hh.ApplyRequest) (string, error)
}

// Options wires an Engine.
type Options struct {
	Source      VacancySource
	Sender      NegotiationSender
	Recorder    notion.Recorder
	RunLog      *runlog.Writer
	Logger      *slog.Logger
	Blacklist   *blacklist.List
	ResumeID    string
	CoverLetter string
	// MaxPages caps the walk. Zero walks every page the listing reports.
	MaxPages int
	// TestRun logs each vacancy without applying.
	TestRun bool
	// Now is stubbed in tests.
	Now func() time.Time
}

// Engine applies to every vacancy of a listing, one page at a time.
type Engine struct {
	source    VacancySource
	sender    NegotiationSender
	recorder  notion.Recorder
	runLog    *runlog.Writer
	logger    *slog.Logger
	blacklist *blacklist.List
	resumeID  string
	cover     string
	maxPages  int
	testRun   bool
	now       func() time.Time
	outcomes  []Outcome
}

// New validates the options and builds an Engine.
func New(opts Options) (*Engine, error) {
	if opts.Source == nil {
		return nil, errors.New("vacancy source required")
	}
	if opts.Sender == nil && !opts.TestRun {
		return nil, errors.New("negotiation sender required")
	}
	if opts.RunLog == nil {
		return nil, errors.New("run log required")
	}
	if strings.TrimSpace(opts.ResumeID) == "" && !opts.TestRun {
		return nil, errors.New("resume id required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = notion.NoopRecorder()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		source:    opts.Source,
		sender:    opts.Sender,
		recorder:  recorder,
		runLog:    opts.RunLog,
		logger:    logger,
		blacklist: opts.Blacklist,
		resumeID:  strings.TrimSpace(opts.ResumeID),
		cover:     opts.CoverLetter,
		maxPages:  opts.MaxPages,
		testRun:   opts.TestRun,
		now:       now,
	}, nil
}

// Run walks the listing and returns the outcome of every vacancy seen.
// A limit-exceeded response ends the walk without error.
func (e *Engine) Run(ctx context.Context) ([]Outcome, error) {
	first, err := e.source.FetchPage(ctx, 0)
	if err != nil {
		e.writeLine(runlog.LevelError, fmt.Sprintf("Error fetching page 0: %v", err))
		return nil, fmt.Errorf("fetch first vacancy page: %w", err)
	}
	e.writeLine(runlog.LevelInfo, fmt.Sprintf("Got %d vacancies, %d pages", first.Found, first.Pages))

	totalPages := first.Pages
	if totalPages < 1 {
		totalPages = 1
	}
	if e.maxPages > 0 && totalPages > e.maxPages {
		totalPages = e.maxPages
	}

	current := first
	for page := 0; page < totalPages; page++ {
		if err := ctx.Err(); err != nil {
			return e.outcomes, err
		}
		if page > 0 {
			fetched, err := e.source.FetchPage(ctx, page)
			if err != nil {
				e.writeLine(runlog.LevelError, fmt.Sprintf("Error fetching page %d: %v", page, err))
				continue
			}
			current = fetched
		}
		e.writeLine(runlog.LevelInfo, fmt.Sprintf("Page=%d got %d vacancies", page, len(current.Items)))

		stopped, err := e.processPage(ctx, page, current.Items)
		if err != nil {
			return e.outcomes, err
		}
		if stopped {
			break
		}
	}
	e.writeLine(runlog.LevelInfo, strings.Repeat("-", 60)+"Done")
	return e.outcomes, nil
}

func (e *Engine) processPage(ctx context.Context, page int, items []hh.Vacancy) (bool, error) {
	for idx, vacancy := range items {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		basic := fmt.Sprintf("Page=%02d idx=%02d: %s %s %s", page, idx, vacancy.ID, vacancy.Name, vacancy.Employer.Name)
		outcome := Outcome{
			Time:      e.now(),
			Page:      page,
			Index:     idx,
			VacancyID: vacancy.ID,
			Name:      vacancy.Name,
			Employer:  vacancy.Employer.Name,
		}

		if word, matched := e.blacklist.MatchWord(vacancy.Name + " " + vacancy.Employer.Name); matched {
			outcome.Status = StatusSkippedWords
			outcome.Reason = word
			outcome.Line = e.writeLine(runlog.LevelInfo, fmt.Sprintf("%s SKIPPED due to blacklist words %s %s", basic, word, vacancy.ID))
			e.outcomes = append(e.outcomes, outcome)
			continue
		}
		if e.blacklist.MatchID(vacancy.ID) {
			outcome.Status = StatusSkippedID
			outcome.Line = e.writeLine(runlog.LevelInfo, basic+" SKIPPED due to blacklist ID")
			e.outcomes = append(e.outcomes, outcome)
			continue
		}
		if e.testRun {
			outcome.Status = StatusTestRun
			outcome.Line = e.writeLine(runlog.LevelInfo, basic+" TEST RUN")
			e.outcomes = append(e.outcomes, outcome)
			continue
		}

		negotiationURL, err := e.sender.Apply(ctx, hh.ApplyRequest{
			VacancyID: vacancy.ID,
			ResumeID:  e.resumeID,
			Message:   e.cover,
		})
		if errors.Is(err, hh.ErrLimitExceeded) {
			outcome.Status = StatusLimitExceeded
			outcome.Line = e.writeLine(runlog.LevelError, basic+" LIMIT EXCEEDED. Stopping...")
			e.outcomes = append(e.outcomes, outcome)
			return true, nil
		}
		if err != nil {
			e.outcomes = append(e.outcomes, e.failedOutcome(outcome, vacancy, basic, err))
			continue
		}

		outcome.Status = StatusApplied
		outcome.URL = negotiationURL
		outcome.Line = e.writeLine(runlog.LevelInfo, fmt.Sprintf("%s APPLIED successfully, GOT negotiation url: %s", basic, negotiationURL))
		e.outcomes = append(e.outcomes, outcome)
		e.recordApply(ctx, vacancy, negotiationURL, basic)
	}
	return false, nil
}

func (e *Engine) failedOutcome(outcome Outcome, vacancy hh.Vacancy, basic string, err error) Outcome {
	var external *hh.ExternalApplyError
	var apiErr *hh.APIError

	var message string
	switch {
	case errors.Is(err, hh.ErrTestRequired):
		outcome.Status = StatusProcessTest
		outcome.URL = vacancy.AlternateURL
		message = fmt.Sprintf("Process test required on %s", vacancy.AlternateURL)
	case errors.As(err, &external):
		outcome.Status = StatusExternalApply
		outcome.URL = external.URL
		message = fmt.Sprintf("External apply required on %s", external.URL)
	case errors.As(err, &apiErr) && apiErr.Description != "":
		outcome.Status = StatusFailed
		message = apiErr.Description
	case errors.As(err, &apiErr):
		outcome.Status = StatusFailed
		message = fmt.Sprintf("Unknown error: %d %s", apiErr.StatusCode, apiErr.Body)
	default:
		outcome.Status = StatusFailed
		message = err.Error()
	}
	outcome.Line = e.writeLine(runlog.LevelError, fmt.Sprintf("%s apply FAILED with error: %s", basic, message))
	return outcome
}

func (e *Engine) recordApply(ctx context.Context, vacancy hh.Vacancy, negotiationURL, basic string) {
	if !e.recorder.Enabled() {
		return
	}
	pageID, err := e.recorder.RecordApply(ctx, notion.ApplyRecord{
		Company:        vacancy.Employer.Name,
		Position:       vacancy.Name,
		JobPostURL:     vacancy.AlternateURL,
		NegotiationURL: negotiationURL,
		AppliedAt:      e.now(),
	})
	if err != nil {
		e.writeLine(runlog.LevelError, fmt.Sprintf("%s NOTION: Could not create a page: %v", basic, err))
		logging.ErrorWithContext(e.logger, "notion page create failed", "notion_record_failed",
			logging.String(logging.FieldVacancyID, vacancy.ID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "verify notion.token and notion.database_id"))
		return
	}
	e.writeLine(runlog.LevelInfo, fmt.Sprintf("%s NOTION: Page created with id: %s", basic, pageID))
}

func (e *Engine) writeLine(level, message string) string {
	line, err := e.runLog.Log(e.now(), level, message)
	if err != nil {
		e.logger.Error("write run log line", logging.Error(err))
	}
	return line
}
