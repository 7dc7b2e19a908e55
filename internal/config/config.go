// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Crawler    CrawlerConfig    `mapstructure:"crawler"`
	Site       SiteConfig       `mapstructure:"site"`
	Checkpoint CheckpointConfig `mapstructure:"checkpoint"`
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// CrawlerConfig governs the crawl loop itself.
type CrawlerConfig struct {
	SeedURL           string        `mapstructure:"seed_url"`
	OutputDir         string        `mapstructure:"output_dir"`
	MaxArticles       int           `mapstructure:"max_articles"`
	UserAgent         string        `mapstructure:"user_agent"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	RequestBurst      int           `mapstructure:"request_burst"`
	ProgressInterval  time.Duration `mapstructure:"progress_interval"`
}

// SiteConfig holds the site-specific classification rules. The crawler is
// deliberately scoped to a single wiki; everything that makes it
// site-specific lives here so another wiki only needs different settings.
type SiteConfig struct {
	Domain             string   `mapstructure:"domain"`
	LanguageCodes      []string `mapstructure:"language_codes"`
	NamespacePrefixes  []string `mapstructure:"namespace_prefixes"`
	ArticleSuffix      string   `mapstructure:"article_suffix"`
	ExcludedPageSuffix string   `mapstructure:"excluded_page_suffix"`
}

// CheckpointConfig controls snapshot persistence.
type CheckpointConfig struct {
	Path     string        `mapstructure:"path"`
	Interval time.Duration `mapstructure:"interval"`
}

// ServerConfig controls the optional status/metrics HTTP server.
type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Checkpoint.Path == "" {
		cfg.Checkpoint.Path = filepath.Join(cfg.Crawler.OutputDir, "checkpoint.json")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.seed_url", "https://civilization.fandom.com/wiki/Civilization_V")
	v.SetDefault("crawler.output_dir", "data")
	v.SetDefault("crawler.max_articles", 5000)
	v.SetDefault("crawler.user_agent", "CivVWikiCrawler/1.0 (Educational Project)")
	v.SetDefault("crawler.request_timeout", "30s")
	v.SetDefault("crawler.requests_per_second", 1.0)
	v.SetDefault("crawler.request_burst", 1)
	v.SetDefault("crawler.progress_interval", "10s")

	v.SetDefault("site.domain", "civilization.fandom.com")
	v.SetDefault("site.language_codes", []string{
		"de", "es", "fr", "it", "ja", "ko", "pl", "pt", "ru", "uk", "zh",
	})
	v.SetDefault("site.namespace_prefixes", []string{
		"Category:", "Talk:", "Category_talk:",
	})
	v.SetDefault("site.article_suffix", "(Civ5)")
	v.SetDefault("site.excluded_page_suffix", "/Civilopedia")

	v.SetDefault("checkpoint.interval", "60s")

	v.SetDefault("server.enabled", false)
	v.SetDefault("server.port", 8080)

	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Crawler.SeedURL == "" {
		return fmt.Errorf("crawler.seed_url must be set")
	}
	if c.Crawler.OutputDir == "" {
		return fmt.Errorf("crawler.output_dir must be set")
	}
	if c.Crawler.MaxArticles <= 0 {
		return fmt.Errorf("crawler.max_articles must be > 0")
	}
	if c.Crawler.UserAgent == "" {
		return fmt.Errorf("crawler.user_agent must be set")
	}
	if c.Crawler.RequestTimeout <= 0 {
		return fmt.Errorf("crawler.request_timeout must be > 0")
	}
	if c.Crawler.RequestsPerSecond <= 0 {
		return fmt.Errorf("crawler.requests_per_second must be > 0")
	}
	if c.Crawler.ProgressInterval <= 0 {
		return fmt.Errorf("crawler.progress_interval must be > 0")
	}
	if c.Site.Domain == "" {
		return fmt.Errorf("site.domain must be set")
	}
	if c.Site.ArticleSuffix == "" {
		return fmt.Errorf("site.article_suffix must be set")
	}
	if c.Checkpoint.Interval <= 0 {
		return fmt.Errorf("checkpoint.interval must be > 0")
	}
	if c.Server.Enabled && c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0 when the server is enabled")
	}
	return nil
}
