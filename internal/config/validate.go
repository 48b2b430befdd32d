package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable by offline commands. Pipelines
// that reach the hh.ru API additionally call ValidateHH.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	if err := c.validateNotion(); err != nil {
		return err
	}
	if err := c.validateClassify(); err != nil {
		return err
	}
	return nil
}

// ValidateHH ensures the credentials needed for direct hh.ru API access are
// present. External-command pipelines carry their own credentials and skip
// this check.
func (c *Config) ValidateHH() error {
	if c.HH.Token == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/hhapply/config.toml"
		}
		return fmt.Errorf("hh.token is required. Set HH_TOKEN env var or edit %s (create with 'hhapply config init')", defaultPath)
	}
	if c.HH.ResumeID == "" {
		return errors.New("hh.resume_id is required. Set HH_RESUME_ID env var or add it to the [hh] section")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	if strings.TrimSpace(c.Paths.ResultsDir) == "" {
		return errors.New("paths.results_dir must be set")
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	return ensurePositiveMap(map[string]int{
		"hh.request_timeout":     c.HH.RequestTimeout,
		"notion.request_timeout": c.Notion.RequestTimeout,
	})
}

func (c *Config) validateNotion() error {
	if !c.Notion.Enabled {
		return nil
	}
	if c.Notion.Token == "" {
		return errors.New("notion.token must be set when notion.enabled is true (or set NOTION_TOKEN)")
	}
	if c.Notion.DatabaseID == "" {
		return errors.New("notion.database_id must be set when notion.enabled is true")
	}
	return nil
}

func (c *Config) validateClassify() error {
	if c.Classify.DateLayout == "" {
		return errors.New("classify.date_layout must be set")
	}
	if len(c.Classify.ManualPatterns) == 0 {
		return errors.New("classify.manual_patterns must include at least one pattern")
	}
	if c.Classify.SkipMarker == "" {
		return errors.New("classify.skip_marker must be set")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
