package applier

import (
	"time"

	"hhapply/internal/classify"
)

// Status names the terminal state of one vacancy in a walk.
type Status string

const (
	StatusApplied       Status = "applied"
	StatusSkippedWords  Status = "skipped_words"
	StatusSkippedID     Status = "skipped_id"
	StatusTestRun       Status = "test_run"
	StatusProcessTest   Status = "process_test"
	StatusExternalApply Status = "external_apply"
	StatusFailed        Status = "failed"
	StatusLimitExceeded Status = "limit_exceeded"
)

// Outcome is the structured record of one vacancy hand-off. Line holds the
// exact run-log line the outcome produced, so downstream extraction sees the
// same text whether it reads outcomes or the log file.
type Outcome struct {
	Time      time.Time
	Page      int
	Index     int
	VacancyID string
	Name      string
	Employer  string
	Status    Status
	// Reason is the blacklist word that skipped the vacancy.
	Reason string
	// URL is the negotiation URL for applies, or the external form for
	// external applies.
	URL  string
	Line string
}

// Records converts outcomes into classifier records.
func Records(outcomes []Outcome) []classify.Record {
	records := make([]classify.Record, 0, len(outcomes))
	for _, outcome := range outcomes {
		record := classify.Record{Line: outcome.Line}
		if outcome.Status == StatusSkippedWords {
			record.Skip = true
			record.Reason = outcome.Reason
			record.Identifier = outcome.VacancyID
		}
		records = append(records, record)
	}
	return records
}
