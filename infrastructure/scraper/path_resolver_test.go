package scraper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ca-srg/usagemon/infrastructure/config"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
}

func TestDefaultPathResolver(t *testing.T) {
	t.Run("explicit path wins", func(t *testing.T) {
		dir := t.TempDir()
		scraperPath := filepath.Join(dir, "my_scraper.py")
		writeFile(t, scraperPath)

		resolver := NewDefaultPathResolver(&config.ScraperConfig{
			Path:        scraperPath,
			ResourceDir: dir,
		})

		resolved, err := resolver.Resolve()
		require.NoError(t, err)
		assert.Equal(t, scraperPath, resolved)
	})

	t.Run("explicit path that does not exist fails", func(t *testing.T) {
		resolver := NewDefaultPathResolver(&config.ScraperConfig{
			Path: "/nonexistent/scraper.py",
		})

		_, err := resolver.Resolve()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("bundled resource directory", func(t *testing.T) {
		dir := t.TempDir()
		bundled := filepath.Join(dir, "scraper", bundledScraperName())
		writeFile(t, bundled)

		resolver := NewDefaultPathResolver(&config.ScraperConfig{ResourceDir: dir})

		resolved, err := resolver.Resolve()
		require.NoError(t, err)
		assert.Equal(t, bundled, resolved)
	})

	t.Run("resource dir without bundled scraper fails with guidance", func(t *testing.T) {
		resolver := NewDefaultPathResolver(&config.ScraperConfig{ResourceDir: t.TempDir()})

		_, err := resolver.Resolve()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "was not found")
	})

	t.Run("nothing configured and no development checkout", func(t *testing.T) {
		resolver := NewDefaultPathResolver(&config.ScraperConfig{})

		_, err := resolver.Resolve()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "USAGEMON_SCRAPER_PATH")
	})
}
