package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 30, cfg.Scraper.TimeoutSeconds)
	assert.Equal(t, 300, cfg.Polling.IntervalSeconds)
	assert.Equal(t, 1000, cfg.Retry.InitialDelayMs)
	assert.Equal(t, 2.0, cfg.Retry.Multiplier)
	assert.Equal(t, 4, cfg.Retry.MaxAttempts)
	assert.Equal(t, 60000, cfg.Retry.MaxDelayMs)
	assert.Equal(t, 30, cfg.History.RetentionDays)
	assert.Equal(t, 80.0, cfg.Notification.WarningThreshold)
	assert.Equal(t, 95.0, cfg.Notification.CriticalThreshold)
	assert.Empty(t, cfg.Prometheus.RemoteWriteURL)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("USAGEMON_SCRAPER_PATH", "/opt/scraper.py")
		t.Setenv("USAGEMON_POLLING_INTERVAL_SECONDS", "60")
		t.Setenv("USAGEMON_RETRY_MAX_ATTEMPTS", "2")
		t.Setenv("USAGEMON_NOTIFY_WARNING_THRESHOLD", "70")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "/opt/scraper.py", cfg.Scraper.Path)
		assert.Equal(t, 60, cfg.Polling.IntervalSeconds)
		assert.Equal(t, 2, cfg.Retry.MaxAttempts)
		assert.Equal(t, 70.0, cfg.Notification.WarningThreshold)
	})

	t.Run("invalid environment values fail validation", func(t *testing.T) {
		t.Setenv("USAGEMON_POLLING_INTERVAL_SECONDS", "-1")

		_, err := LoadConfig()
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"non-positive scraper timeout", func(c *AppConfig) { c.Scraper.TimeoutSeconds = 0 }},
		{"non-positive polling interval", func(c *AppConfig) { c.Polling.IntervalSeconds = 0 }},
		{"zero retry attempts", func(c *AppConfig) { c.Retry.MaxAttempts = 0 }},
		{"retry multiplier below one", func(c *AppConfig) { c.Retry.Multiplier = 0.5 }},
		{"max delay below initial delay", func(c *AppConfig) { c.Retry.MaxDelayMs = 10; c.Retry.InitialDelayMs = 100 }},
		{"zero retention", func(c *AppConfig) { c.History.RetentionDays = 0 }},
		{"critical below warning", func(c *AppConfig) {
			c.Notification.WarningThreshold = 90
			c.Notification.CriticalThreshold = 80
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestMergeJSONConfig(t *testing.T) {
	t.Run("file fills unset fields", func(t *testing.T) {
		cfg := DefaultConfig()
		fileCfg := &AppConfig{
			Scraper: &ScraperConfig{Path: "/from/file.py", TimeoutSeconds: 45},
			Polling: &PollingConfig{IntervalSeconds: 120},
			Prometheus: &PrometheusConfig{
				RemoteWriteURL: "http://prometheus:9090/api/v1/write",
			},
		}

		cfg.MergeJSONConfig(fileCfg)

		assert.Equal(t, "/from/file.py", cfg.Scraper.Path)
		assert.Equal(t, 45, cfg.Scraper.TimeoutSeconds)
		assert.Equal(t, 120, cfg.Polling.IntervalSeconds)
		assert.Equal(t, "http://prometheus:9090/api/v1/write", cfg.Prometheus.RemoteWriteURL)
	})

	t.Run("environment values win over the file", func(t *testing.T) {
		t.Setenv("USAGEMON_SCRAPER_PATH", "/from/env.py")
		t.Setenv("USAGEMON_POLLING_INTERVAL_SECONDS", "60")

		cfg, err := LoadConfig()
		require.NoError(t, err)

		cfg.MergeJSONConfig(&AppConfig{
			Scraper: &ScraperConfig{Path: "/from/file.py"},
			Polling: &PollingConfig{IntervalSeconds: 120},
		})

		assert.Equal(t, "/from/env.py", cfg.Scraper.Path)
		assert.Equal(t, 60, cfg.Polling.IntervalSeconds)
	})

	t.Run("nil file config is a no-op", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MergeJSONConfig(nil)
		assert.Equal(t, 300, cfg.Polling.IntervalSeconds)
	})
}
