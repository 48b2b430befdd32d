package testsupport

import (
	"path/filepath"
	"testing"

	"hhapply/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ResultsDir = filepath.Join(base, "results")
	cfgVal.Apply.QueriesPath = filepath.Join(base, "queries.yaml")
	cfgVal.HH.Token = "test-token"
	cfgVal.HH.ResumeID = "resume-1"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}

// WithHHBaseURL points the hh.ru client at a test server.
func WithHHBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.HH.BaseURL = url
	}
}

// WithNotion enables the Notion recorder against a test server.
func WithNotion(url, databaseID string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notion.Enabled = true
		b.cfg.Notion.BaseURL = url
		b.cfg.Notion.Token = "test-notion-token"
		b.cfg.Notion.DatabaseID = databaseID
	}
}

// WithBlacklistWords sets the vacancy word filter.
func WithBlacklistWords(words ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Blacklist.Words = words
	}
}

// WithBlacklistIDs sets the vacancy id filter.
func WithBlacklistIDs(ids ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Blacklist.IDs = ids
	}
}

// WithExternal sets the external collaborator commands.
func WithExternal(external config.External) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.External = external
	}
}

// WithAllowEmptyResult sets the empty-classification policy.
func WithAllowEmptyResult(allow bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Classify.AllowEmptyResult = allow
	}
}

// WithCoverLetter sets the application message.
func WithCoverLetter(message string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Apply.CoverLetter = message
	}
}
