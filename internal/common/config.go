package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	Sources     SourcesConfig   `toml:"sources"`
	Ingest      IngestConfig    `toml:"ingest"`
	Retention   RetentionConfig `toml:"retention"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gte=0,lte=65535"`
	Host string `toml:"host" validate:"required"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=debug info warn error"`
	Output []string `toml:"output"` // "stdout", "file"
}

// SchedulerConfig controls the recurring scrape and cleanup jobs.
// Schedules are standard five-field cron expressions evaluated in UTC.
type SchedulerConfig struct {
	Enabled         bool   `toml:"enabled"`          // Start the scheduler on boot
	ScrapeSchedule  string `toml:"scrape_schedule"`  // Recurrence for the scrape job
	CleanupSchedule string `toml:"cleanup_schedule"` // Recurrence for the cleanup job
	OverlapGuard    bool   `toml:"overlap_guard"`    // Skip a firing while the previous one is still running
}

type SourcesConfig struct {
	Markets   MarketSourceConfig    `toml:"markets"`
	FrontPage FrontPageSourceConfig `toml:"frontpage"`
}

// MarketSourceConfig configures the JSON market-data source
type MarketSourceConfig struct {
	BaseURL        string `toml:"base_url" validate:"required,url"`
	Currency       string `toml:"currency"` // Quote currency for prices
	PerPage        int    `toml:"per_page"` // Records per fetch
	UserAgent      string `toml:"user_agent"`
	RequestTimeout string `toml:"request_timeout"` // e.g. "15s"
	RateLimit      int    `toml:"rate_limit"`      // Requests per second
}

// FrontPageSourceConfig configures the HTML front-page source
type FrontPageSourceConfig struct {
	URL            string `toml:"url" validate:"required,url"`
	UserAgent      string `toml:"user_agent"`
	RequestTimeout string `toml:"request_timeout"` // e.g. "10s"
}

// IngestConfig controls upsert behavior
type IngestConfig struct {
	// Repeat quote observations inside this window update the stored entry in
	// place. Articles match on link regardless of the window.
	FreshnessWindow string `toml:"freshness_window"`
}

// RetentionConfig controls the soft-expiry sweeps
type RetentionConfig struct {
	QuoteHours  int `toml:"quote_hours" validate:"gt=0"`  // Quotes older than this are marked inactive
	ArticleDays int `toml:"article_days" validate:"gt=0"` // Articles older than this are marked inactive
}

// NewDefaultConfig returns the built-in defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/pulsefeed",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Scheduler: SchedulerConfig{
			Enabled:         true,
			ScrapeSchedule:  "*/30 * * * *",
			CleanupSchedule: "0 2 * * *",
			OverlapGuard:    true,
		},
		Sources: SourcesConfig{
			Markets: MarketSourceConfig{
				BaseURL:        "https://api.coingecko.com/api/v3",
				Currency:       "usd",
				PerPage:        100,
				UserAgent:      "pulsefeed/1.0",
				RequestTimeout: "15s",
				RateLimit:      5,
			},
			FrontPage: FrontPageSourceConfig{
				URL:            "https://news.ycombinator.com",
				UserAgent:      "pulsefeed/1.0",
				RequestTimeout: "10s",
			},
		},
		Ingest: IngestConfig{
			FreshnessWindow: "5m",
		},
		Retention: RetentionConfig{
			QuoteHours:  24,
			ArticleDays: 7,
		},
	}
}

// LoadFromFile loads configuration with priority: defaults -> file -> env
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("PULSEFEED_ENV"); env != "" {
		config.Environment = env
	}
	if port := os.Getenv("PULSEFEED_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("PULSEFEED_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if path := os.Getenv("PULSEFEED_BADGER_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}
	if level := os.Getenv("PULSEFEED_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if schedule := os.Getenv("PULSEFEED_SCRAPE_SCHEDULE"); schedule != "" {
		config.Scheduler.ScrapeSchedule = schedule
	}
	if baseURL := os.Getenv("PULSEFEED_MARKETS_BASE_URL"); baseURL != "" {
		config.Sources.Markets.BaseURL = baseURL
	}
	if url := os.Getenv("PULSEFEED_FRONTPAGE_URL"); url != "" {
		config.Sources.FrontPage.URL = url
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks structural constraints, cron expressions, and durations
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := ValidateJobSchedule(c.Scheduler.ScrapeSchedule); err != nil {
		return fmt.Errorf("invalid scrape schedule: %w", err)
	}
	if err := ValidateJobSchedule(c.Scheduler.CleanupSchedule); err != nil {
		return fmt.Errorf("invalid cleanup schedule: %w", err)
	}
	for name, value := range map[string]string{
		"ingest.freshness_window":           c.Ingest.FreshnessWindow,
		"sources.markets.request_timeout":   c.Sources.Markets.RequestTimeout,
		"sources.frontpage.request_timeout": c.Sources.FrontPage.RequestTimeout,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %w", name, err)
		}
	}
	return nil
}

// ValidateJobSchedule validates a standard five-field cron expression
func ValidateJobSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}

// FreshnessWindow returns the parsed upsert freshness window
func (c *Config) FreshnessWindow() time.Duration {
	return ParseDurationOr(c.Ingest.FreshnessWindow, 5*time.Minute)
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ParseDurationOr parses a duration string, falling back to def when empty or invalid
func ParseDurationOr(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return d
}
