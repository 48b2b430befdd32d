package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir     string `toml:"log_dir"`
	ResultsDir string `toml:"results_dir"`
}

// HH contains configuration for the hh.ru applicant API.
type HH struct {
	BaseURL        string `toml:"base_url"`
	Token          string `toml:"token"`
	ResumeID       string `toml:"resume_id"`
	UserAgent      string `toml:"user_agent"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Apply contains configuration for the apply run itself.
type Apply struct {
	CoverLetter string `toml:"cover_letter"`
	QueriesPath string `toml:"queries_path"`
	Query       string `toml:"query"`
	MaxPages    int    `toml:"max_pages"`
}

// Blacklist contains vacancy filters applied before sending a response.
type Blacklist struct {
	Words []string `toml:"words"`
	IDs   []string `toml:"ids"`
}

// Notion contains configuration for the Notion tracking database.
type Notion struct {
	Enabled        bool   `toml:"enabled"`
	BaseURL        string `toml:"base_url"`
	Token          string `toml:"token"`
	DatabaseID     string `toml:"database_id"`
	ResumePageID   string `toml:"resume_page_id"`
	ProxyURL       string `toml:"proxy_url"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Classify contains configuration for run-log classification.
type Classify struct {
	AllowEmptyResult bool     `toml:"allow_empty_result"`
	DateLayout       string   `toml:"date_layout"`
	ManualPatterns   []string `toml:"manual_patterns"`
	SkipMarker       string   `toml:"skip_marker"`
}

// Logging contains configuration for diagnostic log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// External contains optional commands that replace the built-in applier and
// trackers. When a command is set the matching pipeline shells out to it
// instead of calling the hh.ru API directly.
type External struct {
	SendCommand       string `toml:"send_command"`
	RejectionsCommand string `toml:"rejections_command"`
	ManualCommand     string `toml:"manual_command"`
	RemoveCommand     string `toml:"remove_command"`
	CommandTimeout    int    `toml:"command_timeout"`
}

// Config encapsulates all configuration values for hhapply.
//
// Configuration sections by subsystem:
//   - Paths: run-log and review-artifact directories
//   - HH: hh.ru API credentials and transport settings
//   - Apply: cover letter, search queries file, page cap
//   - Blacklist: vacancy word and ID filters
//   - Notion: application tracking database integration
//   - Classify: manual/skip extraction rules and artifact naming
//   - Logging: diagnostic log format, level, and retention
//   - External: optional replacement commands per pipeline
type Config struct {
	Paths     Paths     `toml:"paths"`
	HH        HH        `toml:"hh"`
	Apply     Apply     `toml:"apply"`
	Blacklist Blacklist `toml:"blacklist"`
	Notion    Notion    `toml:"notion"`
	Classify  Classify  `toml:"classify"`
	Logging   Logging   `toml:"logging"`
	External  External  `toml:"external"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/hhapply/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("hhapply.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the run-log and results directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.ResultsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SendLogPath returns the run log written by the apply pipeline.
func (c *Config) SendLogPath() string {
	return filepath.Join(c.Paths.LogDir, "send_applies.log")
}

// RejectionsLogPath returns the run log written by the rejections pipeline.
func (c *Config) RejectionsLogPath() string {
	return filepath.Join(c.Paths.LogDir, "process_rejection.log")
}

// ManualLogPath returns the run log written by the manual-applies pipeline.
func (c *Config) ManualLogPath() string {
	return filepath.Join(c.Paths.LogDir, "add_manual_applies.log")
}

// RemoveLogPath returns the run log written by the remove pipeline.
func (c *Config) RemoveLogPath() string {
	return filepath.Join(c.Paths.LogDir, "remove_applies.log")
}

// LockPath returns the file lock that serializes pipeline runs.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogDir, "hhapply.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Redacted returns a copy of the config with credential fields masked for
// display.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.HH.Token != "" {
		cp.HH.Token = "<redacted>"
	}
	if cp.Notion.Token != "" {
		cp.Notion.Token = "<redacted>"
	}
	return cp
}
