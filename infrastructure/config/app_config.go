package config

import (
	"fmt"

	"github.com/Netflix/go-env"
)

// ScraperConfig holds scraper subprocess configuration
type ScraperConfig struct {
	// Path is an explicit path to the scraper script or binary. When set it
	// takes precedence over resource-dir and development lookup.
	Path string `json:"path,omitempty" env:"USAGEMON_SCRAPER_PATH"`

	// ResourceDir is the bundled resource directory containing scraper/
	ResourceDir string `json:"resource_dir,omitempty" env:"USAGEMON_RESOURCE_DIR"`

	// PythonCommand overrides the interpreter used for .py scrapers
	PythonCommand string `json:"python_command,omitempty" env:"USAGEMON_PYTHON_COMMAND"`

	// TimeoutSeconds is the per-invocation wall-clock timeout
	TimeoutSeconds int `json:"timeout_seconds,omitempty" env:"USAGEMON_SCRAPER_TIMEOUT_SECONDS,default=30"`
}

// PollingConfig holds automatic polling configuration
type PollingConfig struct {
	// IntervalSeconds is the fixed period between polls
	IntervalSeconds int `json:"interval_seconds,omitempty" env:"USAGEMON_POLLING_INTERVAL_SECONDS,default=300"`
}

// RetryConfig holds exponential backoff configuration for explicit retry
// wrappers (the automatic polling loop does not retry; the next tick is the
// de facto retry)
type RetryConfig struct {
	// InitialDelayMs is the delay before the second attempt
	InitialDelayMs int `json:"initial_delay_ms,omitempty" env:"USAGEMON_RETRY_INITIAL_DELAY_MS,default=1000"`

	// Multiplier scales the delay after each failed attempt
	Multiplier float64 `json:"multiplier,omitempty" env:"USAGEMON_RETRY_MULTIPLIER,default=2.0"`

	// MaxAttempts bounds the total number of calls
	MaxAttempts int `json:"max_attempts,omitempty" env:"USAGEMON_RETRY_MAX_ATTEMPTS,default=4"`

	// MaxDelayMs is the delay ceiling
	MaxDelayMs int `json:"max_delay_ms,omitempty" env:"USAGEMON_RETRY_MAX_DELAY_MS,default=60000"`
}

// HistoryConfig holds usage history persistence configuration
type HistoryConfig struct {
	// DatabasePath is the SQLite database file; empty selects the default
	// under the user config directory
	DatabasePath string `json:"database_path,omitempty" env:"USAGEMON_HISTORY_DB_PATH"`

	// RetentionDays is how long records are kept before cleanup
	RetentionDays int `json:"retention_days,omitempty" env:"USAGEMON_HISTORY_RETENTION_DAYS,default=30"`
}

// PrometheusConfig holds Prometheus Remote Write configuration
type PrometheusConfig struct {
	// RemoteWriteURL is the Remote Write endpoint; metrics push is disabled
	// when empty
	RemoteWriteURL string `json:"remote_write_url,omitempty" env:"USAGEMON_PROMETHEUS_REMOTE_WRITE_URL"`

	// RemoteWriteUsername is the username for Remote Write authentication
	RemoteWriteUsername string `json:"remote_write_username,omitempty" env:"USAGEMON_PROMETHEUS_REMOTE_WRITE_USERNAME"`

	// RemoteWritePassword is the password for Remote Write authentication
	RemoteWritePassword string `json:"remote_write_password,omitempty" env:"USAGEMON_PROMETHEUS_REMOTE_WRITE_PASSWORD"`

	// HostLabel is the host label value for pushed metrics
	HostLabel string `json:"host_label,omitempty" env:"USAGEMON_PROMETHEUS_HOST_LABEL"`

	// TimeoutSec is the timeout in seconds for metric pushes
	TimeoutSec int `json:"timeout_seconds,omitempty" env:"USAGEMON_PROMETHEUS_TIMEOUT_SECONDS,default=30"`
}

// NotificationConfig holds usage threshold notification configuration
type NotificationConfig struct {
	// WarningThreshold is the usage percentage that triggers a warning event
	WarningThreshold float64 `json:"warning_threshold,omitempty" env:"USAGEMON_NOTIFY_WARNING_THRESHOLD,default=80"`

	// CriticalThreshold is the usage percentage that triggers a critical event
	CriticalThreshold float64 `json:"critical_threshold,omitempty" env:"USAGEMON_NOTIFY_CRITICAL_THRESHOLD,default=95"`
}

// DaemonConfig holds daemon mode configuration
type DaemonConfig struct {
	// Enabled indicates whether daemon mode is enabled by default
	Enabled bool `json:"enabled,omitempty" env:"USAGEMON_DAEMON_ENABLED"`

	// PidFile is the path for the daemon PID file
	PidFile string `json:"pid_file,omitempty" env:"USAGEMON_DAEMON_PID_FILE"`
}

// PromtailConfig holds Promtail logging configuration
type PromtailConfig struct {
	// URL is the Promtail push endpoint URL
	URL string `json:"url,omitempty" env:"USAGEMON_LOKI_URL"`

	// Username is the username for basic authentication
	Username string `json:"username,omitempty" env:"USAGEMON_LOKI_USERNAME"`

	// Password is the password for basic authentication
	Password string `json:"password,omitempty" env:"USAGEMON_LOKI_PASSWORD"`

	// BatchWaitSeconds is the time to wait before sending a batch
	BatchWaitSeconds int `json:"batch_wait_seconds,omitempty" env:"USAGEMON_LOKI_BATCH_WAIT_SECONDS,default=1"`

	// BatchCapacity is the maximum number of log entries in a batch
	BatchCapacity int `json:"batch_capacity,omitempty" env:"USAGEMON_LOKI_BATCH_CAPACITY,default=100"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level string `json:"level,omitempty" env:"USAGEMON_LOG_LEVEL,default=info"`

	// Debug enables debug mode with stdout logging
	Debug bool `json:"debug,omitempty" env:"USAGEMON_LOG_DEBUG,default=false"`

	// Promtail holds Promtail configuration
	Promtail *PromtailConfig `json:"promtail,omitempty"`
}

// AppConfig is the application configuration
type AppConfig struct {
	// Scraper holds scraper subprocess configuration
	Scraper *ScraperConfig `json:"scraper,omitempty"`

	// Polling holds automatic polling configuration
	Polling *PollingConfig `json:"polling,omitempty"`

	// Retry holds backoff configuration
	Retry *RetryConfig `json:"retry,omitempty"`

	// History holds usage history persistence configuration
	History *HistoryConfig `json:"history,omitempty"`

	// Prometheus holds Remote Write configuration
	Prometheus *PrometheusConfig `json:"prometheus,omitempty"`

	// Notification holds threshold notification configuration
	Notification *NotificationConfig `json:"notification,omitempty"`

	// Daemon holds daemon mode configuration
	Daemon *DaemonConfig `json:"daemon,omitempty"`

	// Logging holds logging configuration
	Logging *LoggingConfig `json:"logging,omitempty"`
}

// DefaultConfig returns the configuration defaults
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Scraper: &ScraperConfig{
			Path:           "",
			ResourceDir:    "",
			PythonCommand:  "",
			TimeoutSeconds: 30,
		},
		Polling: &PollingConfig{
			IntervalSeconds: 300, // 5 minutes
		},
		Retry: &RetryConfig{
			InitialDelayMs: 1000,
			Multiplier:     2.0,
			MaxAttempts:    4,
			MaxDelayMs:     60000,
		},
		History: &HistoryConfig{
			DatabasePath:  "",
			RetentionDays: 30,
		},
		Prometheus: &PrometheusConfig{
			RemoteWriteURL: "", // empty disables metrics push
			HostLabel:      "",
			TimeoutSec:     30,
		},
		Notification: &NotificationConfig{
			WarningThreshold:  80,
			CriticalThreshold: 95,
		},
		Daemon: &DaemonConfig{
			Enabled: false,
			PidFile: "/tmp/usagemon.pid",
		},
		Logging: &LoggingConfig{
			Level: "info",
			Debug: false,
			Promtail: &PromtailConfig{
				URL:              "",
				BatchWaitSeconds: 1,
				BatchCapacity:    100,
			},
		},
	}
}

// LoadConfig builds the effective configuration from defaults overlaid with
// environment variables
func LoadConfig() (*AppConfig, error) {
	cfg := DefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv overlays environment variables onto the configuration
func (c *AppConfig) LoadFromEnv() error {
	sections := []interface{}{
		c.Scraper,
		c.Polling,
		c.Retry,
		c.History,
		c.Prometheus,
		c.Notification,
		c.Daemon,
		c.Logging,
		c.Logging.Promtail,
	}
	for _, section := range sections {
		if _, err := env.UnmarshalFromEnviron(section); err != nil {
			return fmt.Errorf("failed to load config from environment: %w", err)
		}
	}
	return nil
}

// Validate checks configuration consistency
func (c *AppConfig) Validate() error {
	if c.Scraper != nil && c.Scraper.TimeoutSeconds <= 0 {
		return fmt.Errorf("scraper timeout must be positive, got %d", c.Scraper.TimeoutSeconds)
	}
	if c.Polling != nil && c.Polling.IntervalSeconds <= 0 {
		return fmt.Errorf("polling interval must be positive, got %d", c.Polling.IntervalSeconds)
	}
	if c.Retry != nil {
		if c.Retry.MaxAttempts < 1 {
			return fmt.Errorf("retry max attempts must be at least 1, got %d", c.Retry.MaxAttempts)
		}
		if c.Retry.Multiplier < 1.0 {
			return fmt.Errorf("retry multiplier must be at least 1.0, got %f", c.Retry.Multiplier)
		}
		if c.Retry.MaxDelayMs < c.Retry.InitialDelayMs {
			return fmt.Errorf("retry max delay must not be below initial delay")
		}
	}
	if c.History != nil && c.History.RetentionDays < 1 {
		return fmt.Errorf("history retention must be at least 1 day, got %d", c.History.RetentionDays)
	}
	if c.Notification != nil {
		if c.Notification.WarningThreshold < 0 {
			return fmt.Errorf("warning threshold must not be negative")
		}
		if c.Notification.CriticalThreshold < c.Notification.WarningThreshold {
			return fmt.Errorf("critical threshold must not be below warning threshold")
		}
	}
	return nil
}

// MergeJSONConfig overlays values loaded from the persisted config file.
// Environment variables have already been applied, so only fields still at
// their zero value are taken from the file.
func (c *AppConfig) MergeJSONConfig(jsonConfig *AppConfig) {
	if jsonConfig == nil {
		return
	}
	if jsonConfig.Scraper != nil {
		if c.Scraper.Path == "" {
			c.Scraper.Path = jsonConfig.Scraper.Path
		}
		if c.Scraper.ResourceDir == "" {
			c.Scraper.ResourceDir = jsonConfig.Scraper.ResourceDir
		}
		if c.Scraper.PythonCommand == "" {
			c.Scraper.PythonCommand = jsonConfig.Scraper.PythonCommand
		}
		if jsonConfig.Scraper.TimeoutSeconds > 0 && c.Scraper.TimeoutSeconds == DefaultConfig().Scraper.TimeoutSeconds {
			c.Scraper.TimeoutSeconds = jsonConfig.Scraper.TimeoutSeconds
		}
	}
	if jsonConfig.Polling != nil && jsonConfig.Polling.IntervalSeconds > 0 &&
		c.Polling.IntervalSeconds == DefaultConfig().Polling.IntervalSeconds {
		c.Polling.IntervalSeconds = jsonConfig.Polling.IntervalSeconds
	}
	if jsonConfig.History != nil {
		if c.History.DatabasePath == "" {
			c.History.DatabasePath = jsonConfig.History.DatabasePath
		}
		if jsonConfig.History.RetentionDays > 0 && c.History.RetentionDays == DefaultConfig().History.RetentionDays {
			c.History.RetentionDays = jsonConfig.History.RetentionDays
		}
	}
	if jsonConfig.Prometheus != nil {
		if c.Prometheus.RemoteWriteURL == "" {
			c.Prometheus.RemoteWriteURL = jsonConfig.Prometheus.RemoteWriteURL
		}
		if c.Prometheus.RemoteWriteUsername == "" {
			c.Prometheus.RemoteWriteUsername = jsonConfig.Prometheus.RemoteWriteUsername
		}
		if c.Prometheus.RemoteWritePassword == "" {
			c.Prometheus.RemoteWritePassword = jsonConfig.Prometheus.RemoteWritePassword
		}
		if c.Prometheus.HostLabel == "" {
			c.Prometheus.HostLabel = jsonConfig.Prometheus.HostLabel
		}
	}
	if jsonConfig.Daemon != nil {
		if jsonConfig.Daemon.Enabled {
			c.Daemon.Enabled = true
		}
		if c.Daemon.PidFile == DefaultConfig().Daemon.PidFile && jsonConfig.Daemon.PidFile != "" {
			c.Daemon.PidFile = jsonConfig.Daemon.PidFile
		}
	}
	if jsonConfig.Logging != nil {
		if c.Logging.Level == DefaultConfig().Logging.Level && jsonConfig.Logging.Level != "" {
			c.Logging.Level = jsonConfig.Logging.Level
		}
		if jsonConfig.Logging.Debug {
			c.Logging.Debug = true
		}
		if jsonConfig.Logging.Promtail != nil && c.Logging.Promtail.URL == "" {
			c.Logging.Promtail.URL = jsonConfig.Logging.Promtail.URL
			if jsonConfig.Logging.Promtail.Username != "" {
				c.Logging.Promtail.Username = jsonConfig.Logging.Promtail.Username
			}
			if jsonConfig.Logging.Promtail.Password != "" {
				c.Logging.Promtail.Password = jsonConfig.Logging.Promtail.Password
			}
		}
	}
}
