package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	config := NewDefaultConfig()
	require.NoError(t, config.Validate())

	assert.Equal(t, 8085, config.Server.Port)
	assert.Equal(t, "*/30 * * * *", config.Scheduler.ScrapeSchedule)
	assert.Equal(t, "0 2 * * *", config.Scheduler.CleanupSchedule)
	assert.True(t, config.Scheduler.OverlapGuard)
	assert.Equal(t, 24, config.Retention.QuoteHours)
	assert.Equal(t, 7, config.Retention.ArticleDays)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pulsefeed.toml")

	content := `
environment = "production"

[server]
port = 9090
host = "0.0.0.0"

[scheduler]
scrape_schedule = "*/15 * * * *"

[retention]
quote_hours = 48
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "production", config.Environment)
	assert.True(t, config.IsProduction())
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, "*/15 * * * *", config.Scheduler.ScrapeSchedule)
	assert.Equal(t, 48, config.Retention.QuoteHours)

	// Unset fields keep their defaults
	assert.Equal(t, "0 2 * * *", config.Scheduler.CleanupSchedule)
	assert.Equal(t, 7, config.Retention.ArticleDays)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/pulsefeed.toml")
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PULSEFEED_SERVER_PORT", "7070")
	t.Setenv("PULSEFEED_SCRAPE_SCHEDULE", "*/10 * * * *")

	config, err := LoadFromFile("")
	require.NoError(t, err)

	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, "*/10 * * * *", config.Scheduler.ScrapeSchedule)
}

func TestValidateRejectsBadSchedule(t *testing.T) {
	config := NewDefaultConfig()
	config.Scheduler.ScrapeSchedule = "not a cron expression"
	assert.Error(t, config.Validate())
}

func TestValidateRejectsBadDuration(t *testing.T) {
	config := NewDefaultConfig()
	config.Ingest.FreshnessWindow = "five minutes"
	assert.Error(t, config.Validate())
}

func TestValidateJobSchedule(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		wantErr  bool
	}{
		{"every 30 minutes", "*/30 * * * *", false},
		{"daily at 2am", "0 2 * * *", false},
		{"every minute", "* * * * *", false},
		{"six fields", "0 0 2 * * *", true},
		{"garbage", "whenever", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJobSchedule(tt.schedule)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseDurationOr(t *testing.T) {
	assert.Equal(t, "15s", ParseDurationOr("15s", 0).String())
	assert.Equal(t, "10s", ParseDurationOr("", 10_000_000_000).String())
	assert.Equal(t, "10s", ParseDurationOr("bogus", 10_000_000_000).String())
}
