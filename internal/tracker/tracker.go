// Package tracker keeps the Notion application database in step with the
// real negotiation state on hh.ru: rejected applications get their status
// flipped, manually created applications get pages, withdrawn ones get
// archived, and negotiation chats can be copied into a page body.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hhapply/internal/hh"
	"hhapply/internal/logging"
	"hhapply/internal/notion"
	"hhapply/internal/runlog"
)

// ErrNotionDisabled reports an operation that cannot run without the Notion
// integration.
var ErrNotionDisabled = errors.New("notion integration is not enabled")

// HHClient is the negotiation surface the tracker needs. *hh.Client
// satisfies it.
type HHClient interface {
	Negotiations(ctx context.Context, page int) (*hh.NegotiationPage, error)
	Negotiation(ctx context.Context, id string) (*hh.Negotiation, error)
	DeleteNegotiation(ctx context.Context, id string) error
	NegotiationMessages(ctx context.Context, id string) ([]hh.Message, error)
}

// Options wires a Tracker.
type Options struct {
	HH       HHClient
	Recorder notion.Recorder
	// RunLog receives the operation's run-log lines. Optional; message
	// copying runs without one.
	RunLog *runlog.Writer
	Logger *slog.Logger
	// Now is stubbed in tests.
	Now func() time.Time
}

// Tracker synchronizes hh.ru negotiations with the Notion database.
type Tracker struct {
	hh       HHClient
	recorder notion.Recorder
	runLog   *runlog.Writer
	logger   *slog.Logger
	now      func() time.Time
}

// New validates the options and builds a Tracker.
func New(opts Options) (*Tracker, error) {
	if opts.HH == nil {
		return nil, errors.New("hh client required")
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = notion.NoopRecorder()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		hh:       opts.HH,
		recorder: recorder,
		runLog:   opts.RunLog,
		logger:   logger,
		now:      now,
	}, nil
}

func (t *Tracker) writeLine(level, message string) {
	if t.runLog == nil {
		return
	}
	if _, err := t.runLog.Log(t.now(), level, message); err != nil {
		t.logger.Error("write run log line", logging.Error(err))
	}
}

func (t *Tracker) writeInfof(format string, args ...any) {
	t.writeLine(runlog.LevelInfo, fmt.Sprintf(format, args...))
}

func (t *Tracker) writeErrorf(format string, args ...any) {
	t.writeLine(runlog.LevelError, fmt.Sprintf(format, args...))
}
