package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://civilization.fandom.com/wiki/Civilization_V", cfg.Crawler.SeedURL)
	assert.Equal(t, 5000, cfg.Crawler.MaxArticles)
	assert.Equal(t, 30*time.Second, cfg.Crawler.RequestTimeout)
	assert.Equal(t, 1.0, cfg.Crawler.RequestsPerSecond)
	assert.Equal(t, 10*time.Second, cfg.Crawler.ProgressInterval)
	assert.Equal(t, 60*time.Second, cfg.Checkpoint.Interval)
	assert.Equal(t, "civilization.fandom.com", cfg.Site.Domain)
	assert.Equal(t, "(Civ5)", cfg.Site.ArticleSuffix)
	assert.Contains(t, cfg.Site.NamespacePrefixes, "Category:")
	assert.Contains(t, cfg.Site.LanguageCodes, "de")
	assert.False(t, cfg.Server.Enabled)
}

func TestLoadDerivesCheckpointPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.Crawler.OutputDir, "checkpoint.json"), cfg.Checkpoint.Path)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
crawler:
  seed_url: https://example.wiki/wiki/Seed
  output_dir: /tmp/out
  max_articles: 10
  requests_per_second: 2.5
site:
  domain: example.wiki
  article_suffix: "(V5)"
checkpoint:
  path: /tmp/out/state.json
  interval: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.wiki/wiki/Seed", cfg.Crawler.SeedURL)
	assert.Equal(t, 10, cfg.Crawler.MaxArticles)
	assert.Equal(t, 2.5, cfg.Crawler.RequestsPerSecond)
	assert.Equal(t, "example.wiki", cfg.Site.Domain)
	assert.Equal(t, "/tmp/out/state.json", cfg.Checkpoint.Path)
	assert.Equal(t, 5*time.Second, cfg.Checkpoint.Interval)
	// Unset keys keep their defaults.
	assert.Equal(t, "CivVWikiCrawler/1.0 (Educational Project)", cfg.Crawler.UserAgent)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty seed", func(c *Config) { c.Crawler.SeedURL = "" }},
		{"empty output dir", func(c *Config) { c.Crawler.OutputDir = "" }},
		{"zero max articles", func(c *Config) { c.Crawler.MaxArticles = 0 }},
		{"empty user agent", func(c *Config) { c.Crawler.UserAgent = "" }},
		{"zero timeout", func(c *Config) { c.Crawler.RequestTimeout = 0 }},
		{"zero rate", func(c *Config) { c.Crawler.RequestsPerSecond = 0 }},
		{"zero progress interval", func(c *Config) { c.Crawler.ProgressInterval = 0 }},
		{"empty domain", func(c *Config) { c.Site.Domain = "" }},
		{"empty suffix", func(c *Config) { c.Site.ArticleSuffix = "" }},
		{"zero checkpoint interval", func(c *Config) { c.Checkpoint.Interval = 0 }},
		{"bad server port", func(c *Config) {
			c.Server.Enabled = true
			c.Server.Port = 0
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})
}
