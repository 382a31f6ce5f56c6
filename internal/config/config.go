package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Zhengnan817/consumables-dashboard/internal/core"
	"github.com/Zhengnan817/consumables-dashboard/internal/normalize"
)

type Config struct {
	// Historical workbook: local path or http(s) URL
	HistorySource string
	HistorySheet  string

	// Incremental monthly extracts
	MonthlyDir  string
	GitHubRepo  string // owner/name
	GitHubPath  string
	GitHubRef   string
	GitHubToken string

	// Google Sheets (optional extra batch)
	GoogleSpreadsheetID      string
	GoogleSheetRange         string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// SQLite export (optional extra batch, read-only)
	SQLiteSourcePath  string
	SQLiteSourceTable string

	// Loading
	FetchConcurrency int
	HTTPTimeout      time.Duration
	CacheSize        int
	CacheTTL         time.Duration

	// Reload period for watch mode; zero loads once
	RefreshInterval time.Duration

	// AMQP load summaries; empty URL disables publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	LogLevel string

	// Extra department labels to drop. Labels contain commas, so the
	// environment value is semicolon separated.
	DeptExtraExclusions []string

	// Extra raw label -> canonical code, "RAW=CODE;RAW=CODE".
	DeptExtraAliases map[string]string
	// Extra header spelling -> canonical field, "Header=field;Header=field".
	HeaderAliases map[string]string

	malformed []string
}

func Load() *Config {
	cfg := &Config{
		HistorySource: getEnv("HISTORY_SOURCE", ""),
		HistorySheet:  getEnv("HISTORY_SHEET", ""),

		MonthlyDir:  getEnv("MONTHLY_DIR", ""),
		GitHubRepo:  getEnv("GITHUB_REPO", ""),
		GitHubPath:  getEnv("GITHUB_PATH", ""),
		GitHubRef:   getEnv("GITHUB_REF", "main"),
		GitHubToken: getEnv("GITHUB_TOKEN", ""),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetRange:         getEnv("GOOGLE_SHEET_RANGE", "History"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", getEnv("GOOGLE_APPLICATION_CREDENTIALS", "")),

		SQLiteSourcePath:  getEnv("SQLITE_SOURCE_PATH", ""),
		SQLiteSourceTable: getEnv("SQLITE_SOURCE_TABLE", "transactions"),

		FetchConcurrency: getEnvInt("FETCH_CONCURRENCY", 4),
		HTTPTimeout:      getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
		CacheSize:        getEnvInt("CACHE_SIZE", 64),
		CacheTTL:         getEnvDuration("CACHE_TTL", 10*time.Minute),

		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", 0),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "consumables"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "load_summaries"),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		DeptExtraExclusions: getEnvList("DEPT_EXTRA_EXCLUSIONS"),
	}
	cfg.DeptExtraAliases = cfg.getEnvPairs("DEPT_EXTRA_ALIASES")
	cfg.HeaderAliases = cfg.getEnvPairs("HEADER_ALIASES")

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.HistorySource == "" && c.MonthlyDir == "" && c.GitHubRepo == "" &&
		c.GoogleSpreadsheetID == "" && c.SQLiteSourcePath == "" {
		errors = append(errors, "no data source configured: set HISTORY_SOURCE, MONTHLY_DIR, GITHUB_REPO, GOOGLE_SPREADSHEET_ID or SQLITE_SOURCE_PATH")
	}

	if strings.HasPrefix(c.HistorySource, "http") {
		if u, err := url.Parse(c.HistorySource); err != nil || u.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid history URL '%s'", c.HistorySource))
		}
	}

	if c.MonthlyDir != "" {
		if info, err := os.Stat(c.MonthlyDir); err != nil || !info.IsDir() {
			errors = append(errors, fmt.Sprintf("monthly directory does not exist: %s", c.MonthlyDir))
		}
	}

	if c.GitHubRepo != "" {
		if parts := strings.Split(c.GitHubRepo, "/"); len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			errors = append(errors, fmt.Sprintf("invalid GitHub repo '%s': must be owner/name", c.GitHubRepo))
		}
	}

	if c.GoogleSpreadsheetID != "" && c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
		errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for the sheets source")
	}

	if c.SQLiteSourcePath != "" {
		if _, err := os.Stat(c.SQLiteSourcePath); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("SQLite source file does not exist: %s", c.SQLiteSourcePath))
		}
		if c.SQLiteSourceTable == "" {
			errors = append(errors, "SQLite source table cannot be empty when SQLITE_SOURCE_PATH is set")
		}
	}

	if c.FetchConcurrency < 1 || c.FetchConcurrency > 64 {
		errors = append(errors, fmt.Sprintf("invalid fetch concurrency %d: must be between 1 and 64", c.FetchConcurrency))
	}
	if c.HTTPTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid HTTP timeout %v: must be at least 1 second", c.HTTPTimeout))
	}
	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}
	if c.CacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must not be negative", c.CacheTTL))
	}

	if c.RefreshInterval != 0 && c.RefreshInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid refresh interval %v: must be zero or at least 1 minute", c.RefreshInterval))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	errors = append(errors, c.malformed...)
	for raw, code := range c.DeptExtraAliases {
		if !core.IsCanonical(code) {
			errors = append(errors, fmt.Sprintf("invalid department alias '%s=%s': code must be one of %s", raw, code, strings.Join(core.Departments(), ", ")))
		}
	}
	for header, field := range c.HeaderAliases {
		if _, ok := normalize.ParseField(field); !ok {
			errors = append(errors, fmt.Sprintf("invalid header alias '%s=%s': unknown field", header, field))
		}
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvPairs reads "key=value" entries separated by ";". Malformed entries
// are reported by Validate.
func (c *Config) getEnvPairs(key string) map[string]string {
	out := make(map[string]string)
	for _, part := range getEnvList(key) {
		k, v, ok := strings.Cut(part, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if !ok || k == "" || v == "" {
			c.malformed = append(c.malformed, fmt.Sprintf("malformed %s entry '%s': want key=value", key, part))
			continue
		}
		out[k] = v
	}
	return out
}
