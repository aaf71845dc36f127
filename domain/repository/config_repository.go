package repository

import (
	"github.com/ca-srg/usagemon/infrastructure/config"
)

// ConfigRepository manages the persisted configuration file
type ConfigRepository interface {
	// Exists checks whether the config file is present
	Exists() (bool, error)

	// Load reads the config file; returns nil without error when absent
	Load() (*config.AppConfig, error)

	// Save writes the config file atomically
	Save(config *config.AppConfig) error

	// GetConfigPath returns the config file path
	GetConfigPath() string

	// EnsureConfigDir guarantees the config directory exists
	EnsureConfigDir() error
}
