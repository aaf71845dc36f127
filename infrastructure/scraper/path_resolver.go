package scraper

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ca-srg/usagemon/infrastructure/config"
)

// PathResolver locates the scraper script or binary. Resolution happens at
// invocation time so a scraper installed after startup is picked up without a
// restart.
type PathResolver interface {
	// Resolve returns the path to the scraper executable
	Resolve() (string, error)
}

// DefaultPathResolver resolves the scraper location in order: explicit path
// override, bundled resource directory, development fallback
type DefaultPathResolver struct {
	config *config.ScraperConfig
}

// NewDefaultPathResolver creates a new DefaultPathResolver
func NewDefaultPathResolver(cfg *config.ScraperConfig) *DefaultPathResolver {
	return &DefaultPathResolver{config: cfg}
}

// developmentScraperPath is the project-relative location used when running
// from a source checkout
const developmentScraperPath = "../scraper/claude_scraper.py"

// Resolve implements PathResolver
func (r *DefaultPathResolver) Resolve() (string, error) {
	// 1) Explicit override (config file or USAGEMON_SCRAPER_PATH)
	if r.config != nil && r.config.Path != "" {
		if _, err := os.Stat(r.config.Path); err == nil {
			return r.config.Path, nil
		}
		return "", fmt.Errorf("scraper path is set to %q but the file does not exist", r.config.Path)
	}

	// 2) Bundled resource directory
	if r.config != nil && r.config.ResourceDir != "" {
		candidate := filepath.Join(r.config.ResourceDir, "scraper", bundledScraperName())
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		return "", fmt.Errorf("resource dir %q is set but bundled scraper %q was not found; ensure the scraper was included in the build resources",
			r.config.ResourceDir, candidate)
	}

	// 3) Development fallback: project-relative python script
	if _, err := os.Stat(developmentScraperPath); err == nil {
		return developmentScraperPath, nil
	}

	return "", fmt.Errorf("could not locate scraper: checked scraper path override, resource dir, and development path %q; "+
		"set USAGEMON_SCRAPER_PATH to point at your scraper script or binary", developmentScraperPath)
}

func bundledScraperName() string {
	if runtime.GOOS == "windows" {
		return "claude_scraper.exe"
	}
	return "claude_scraper"
}
