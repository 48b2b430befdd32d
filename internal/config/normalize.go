package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeHH(); err != nil {
		return err
	}
	if err := c.normalizeApply(); err != nil {
		return err
	}
	c.normalizeBlacklist()
	if err := c.normalizeNotion(); err != nil {
		return err
	}
	c.normalizeClassify()
	c.normalizeLogging()
	c.normalizeExternal()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ResultsDir) == "" {
		c.Paths.ResultsDir = defaultResultsDir
	}
	if c.Paths.ResultsDir, err = expandPath(c.Paths.ResultsDir); err != nil {
		return fmt.Errorf("paths.results_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeHH() error {
	if c.HH.Token == "" {
		if value, ok := os.LookupEnv("HH_TOKEN"); ok {
			c.HH.Token = strings.TrimSpace(value)
		}
	}
	if c.HH.ResumeID == "" {
		if value, ok := os.LookupEnv("HH_RESUME_ID"); ok {
			c.HH.ResumeID = strings.TrimSpace(value)
		}
	}
	c.HH.Token = strings.TrimSpace(c.HH.Token)
	c.HH.ResumeID = strings.TrimSpace(c.HH.ResumeID)
	c.HH.BaseURL = strings.TrimRight(strings.TrimSpace(c.HH.BaseURL), "/")
	if c.HH.BaseURL == "" {
		c.HH.BaseURL = defaultHHBaseURL
	}
	c.HH.UserAgent = strings.TrimSpace(c.HH.UserAgent)
	if c.HH.UserAgent == "" {
		c.HH.UserAgent = defaultHHUserAgent
	}
	if c.HH.RequestTimeout <= 0 {
		c.HH.RequestTimeout = defaultRequestTimeout
	}
	return nil
}

func (c *Config) normalizeApply() error {
	var err error
	if strings.TrimSpace(c.Apply.QueriesPath) == "" {
		c.Apply.QueriesPath = defaultQueriesPath
	}
	if c.Apply.QueriesPath, err = expandPath(c.Apply.QueriesPath); err != nil {
		return fmt.Errorf("apply.queries_path: %w", err)
	}
	c.Apply.Query = strings.TrimSpace(c.Apply.Query)
	if c.Apply.Query == "" {
		c.Apply.Query = defaultQueryName
	}
	if c.Apply.MaxPages < 0 {
		c.Apply.MaxPages = 0
	}
	return nil
}

func (c *Config) normalizeBlacklist() {
	c.Blacklist.Words = dedupeTrimmed(c.Blacklist.Words, true)
	c.Blacklist.IDs = dedupeTrimmed(c.Blacklist.IDs, false)
}

func (c *Config) normalizeNotion() error {
	if c.Notion.Token == "" {
		if value, ok := os.LookupEnv("NOTION_TOKEN"); ok {
			c.Notion.Token = strings.TrimSpace(value)
		}
	}
	c.Notion.Token = strings.TrimSpace(c.Notion.Token)
	c.Notion.DatabaseID = strings.TrimSpace(c.Notion.DatabaseID)
	c.Notion.ResumePageID = strings.TrimSpace(c.Notion.ResumePageID)
	c.Notion.ProxyURL = strings.TrimSpace(c.Notion.ProxyURL)
	c.Notion.BaseURL = strings.TrimRight(strings.TrimSpace(c.Notion.BaseURL), "/")
	if c.Notion.BaseURL == "" {
		c.Notion.BaseURL = defaultNotionBaseURL
	}
	if c.Notion.RequestTimeout <= 0 {
		c.Notion.RequestTimeout = defaultRequestTimeout
	}
	return nil
}

func (c *Config) normalizeClassify() {
	c.Classify.DateLayout = strings.TrimSpace(c.Classify.DateLayout)
	if c.Classify.DateLayout == "" {
		c.Classify.DateLayout = defaultDateLayout
	}
	c.Classify.SkipMarker = strings.ToLower(strings.TrimSpace(c.Classify.SkipMarker))
	if c.Classify.SkipMarker == "" {
		c.Classify.SkipMarker = defaultSkipMarker
	}
	patterns := dedupeTrimmed(c.Classify.ManualPatterns, true)
	if len(patterns) == 0 {
		patterns = defaultManualPatterns()
	}
	c.Classify.ManualPatterns = patterns
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func (c *Config) normalizeExternal() {
	c.External.SendCommand = strings.TrimSpace(c.External.SendCommand)
	c.External.RejectionsCommand = strings.TrimSpace(c.External.RejectionsCommand)
	c.External.ManualCommand = strings.TrimSpace(c.External.ManualCommand)
	c.External.RemoveCommand = strings.TrimSpace(c.External.RemoveCommand)
	if c.External.CommandTimeout < 0 {
		c.External.CommandTimeout = 0
	}
}

func dedupeTrimmed(values []string, lower bool) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		normalized := strings.TrimSpace(value)
		if lower {
			normalized = strings.ToLower(normalized)
		}
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
