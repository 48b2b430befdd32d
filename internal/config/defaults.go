package config

const (
	defaultLogDir           = "~/.local/share/hhapply/logs"
	defaultResultsDir       = "~/.local/share/hhapply/results"
	defaultHHBaseURL        = "https://api.hh.ru"
	defaultHHUserAgent      = "hhapply/dev"
	defaultRequestTimeout   = 30
	defaultQueriesPath      = "~/.config/hhapply/queries.yaml"
	defaultQueryName        = "default"
	defaultNotionBaseURL    = "https://api.notion.com/v1"
	defaultDateLayout       = "0201"
	defaultSkipMarker       = "skipped due to blacklist words"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 0
	defaultAllowEmptyResult = true
)

func defaultManualPatterns() []string {
	return []string{"process test", "external apply required"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:     defaultLogDir,
			ResultsDir: defaultResultsDir,
		},
		HH: HH{
			BaseURL:        defaultHHBaseURL,
			UserAgent:      defaultHHUserAgent,
			RequestTimeout: defaultRequestTimeout,
		},
		Apply: Apply{
			QueriesPath: defaultQueriesPath,
			Query:       defaultQueryName,
		},
		Notion: Notion{
			BaseURL:        defaultNotionBaseURL,
			RequestTimeout: defaultRequestTimeout,
		},
		Classify: Classify{
			AllowEmptyResult: defaultAllowEmptyResult,
			DateLayout:       defaultDateLayout,
			ManualPatterns:   defaultManualPatterns(),
			SkipMarker:       defaultSkipMarker,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
