package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ca-srg/usagemon/domain/repository"
	"github.com/ca-srg/usagemon/infrastructure/config"
)

// JSONConfigRepository manages the persisted configuration as a JSON file
type JSONConfigRepository struct {
	configDir  string
	configFile string
}

// NewJSONConfigRepository creates a new JSONConfigRepository rooted at
// ~/.config/usagemon
func NewJSONConfigRepository() repository.ConfigRepository {
	homeDir, _ := os.UserHomeDir()
	configDir := filepath.Join(homeDir, ".config", "usagemon")
	return &JSONConfigRepository{
		configDir:  configDir,
		configFile: filepath.Join(configDir, "config.json"),
	}
}

// SetConfigDir overrides the config directory (tests)
func (r *JSONConfigRepository) SetConfigDir(dir string) {
	r.configDir = dir
	r.configFile = filepath.Join(dir, "config.json")
}

// Exists implements ConfigRepository
func (r *JSONConfigRepository) Exists() (bool, error) {
	_, err := os.Stat(r.configFile)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check config file existence: %w", err)
}

// Load implements ConfigRepository. A missing file is not an error; it
// returns nil so callers fall back to defaults.
func (r *JSONConfigRepository) Load() (*config.AppConfig, error) {
	exists, err := r.Exists()
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	data, err := os.ReadFile(r.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg config.AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Save implements ConfigRepository. The file is written to a temp path and
// renamed into place so readers never observe a partial config.
func (r *JSONConfigRepository) Save(cfg *config.AppConfig) error {
	if err := r.EnsureConfigDir(); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Keep one backup of the previous config
	if exists, err := r.Exists(); err == nil && exists {
		prev, readErr := os.ReadFile(r.configFile)
		if readErr == nil {
			_ = os.WriteFile(r.configFile+".bak", prev, 0o600)
		}
	}

	tmpFile := r.configFile + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp config file: %w", err)
	}

	if err := os.Rename(tmpFile, r.configFile); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to rename config file into place: %w", err)
	}

	return nil
}

// GetConfigPath implements ConfigRepository
func (r *JSONConfigRepository) GetConfigPath() string {
	return r.configFile
}

// EnsureConfigDir implements ConfigRepository
func (r *JSONConfigRepository) EnsureConfigDir() error {
	if err := os.MkdirAll(r.configDir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}
