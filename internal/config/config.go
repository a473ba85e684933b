package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for newsarchive.
type Config struct {
	Archive ArchiveConfig         `mapstructure:"archive" yaml:"archive"`
	Fetcher FetcherConfig         `mapstructure:"fetcher" yaml:"fetcher"`
	Sites   map[string]SiteConfig `mapstructure:"sites"   yaml:"sites"`
	Rewrite RewriteConfig         `mapstructure:"rewrite" yaml:"rewrite"`
	Index   IndexConfig           `mapstructure:"index"   yaml:"index"`
	Logging LoggingConfig         `mapstructure:"logging" yaml:"logging"`
}

// ArchiveConfig controls the on-disk story archive.
type ArchiveConfig struct {
	// Root is the directory holding <date>/<site>/Original subtrees.
	Root string `mapstructure:"root" yaml:"root"`

	// RetentionDays is how long date-named folders are kept before the
	// sweeper removes them. Zero disables sweeping.
	RetentionDays int `mapstructure:"retention_days" yaml:"retention_days"`
}

// FetcherConfig controls outbound HTTP requests.
type FetcherConfig struct {
	Timeout         time.Duration `mapstructure:"timeout"          yaml:"timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"    yaml:"max_body_size"`
	UserAgent       string        `mapstructure:"user_agent"       yaml:"user_agent"`
	PolitenessDelay time.Duration `mapstructure:"politeness_delay" yaml:"politeness_delay"`
	MaxCandidates   int           `mapstructure:"max_candidates"   yaml:"max_candidates"`
}

// SiteConfig holds per-site settings. Cookie carries the session cookie for
// the two BLOX CMS sites; it comes from the config file or a
// NEWSARCHIVE_SITES_* environment variable, never from source.
type SiteConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Cookie  string `mapstructure:"cookie"  yaml:"cookie"`
}

// Supported rewrite providers.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderCustom = "custom"
)

// RewriteConfig controls the AI rewrite stage.
type RewriteConfig struct {
	Provider    string  `mapstructure:"provider"    yaml:"provider"` // openai, ollama, custom
	Endpoint    string  `mapstructure:"endpoint"    yaml:"endpoint"`
	Model       string  `mapstructure:"model"       yaml:"model"`
	APIKey      string  `mapstructure:"api_key"     yaml:"api_key"`
	MaxTokens   int     `mapstructure:"max_tokens"  yaml:"max_tokens"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
}

// IndexConfig controls the optional MongoDB run index.
type IndexConfig struct {
	Enabled    bool   `mapstructure:"enabled"    yaml:"enabled"`
	URI        string `mapstructure:"uri"        yaml:"uri"`
	Database   string `mapstructure:"database"   yaml:"database"`
	Collection string `mapstructure:"collection" yaml:"collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultSites lists the supported site slugs in driver order.
var DefaultSites = []string{
	"wmur",
	"wcax",
	"vtdigger",
	"mykeenenow",
	"keenesentinel",
	"reformer",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	sites := make(map[string]SiteConfig, len(DefaultSites))
	for _, slug := range DefaultSites {
		sites[slug] = SiteConfig{Enabled: true}
	}

	return &Config{
		Archive: ArchiveConfig{
			Root:          "Stories",
			RetentionDays: 30,
		},
		Fetcher: FetcherConfig{
			Timeout:     15 * time.Second,
			MaxBodySize: 10 * 1024 * 1024, // 10MB
			UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
				"AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
			PolitenessDelay: 300 * time.Millisecond,
			MaxCandidates:   60,
		},
		Sites: sites,
		Rewrite: RewriteConfig{
			Provider:    ProviderOpenAI,
			Model:       "gpt-4o-mini",
			MaxTokens:   1500,
			Temperature: 0.7,
		},
		Index: IndexConfig{
			Enabled:    false,
			URI:        "mongodb://localhost:27017",
			Database:   "newsarchive",
			Collection: "articles",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Site returns the configuration for a slug, defaulting to enabled with no
// cookie when the slug is absent from the config file.
func (c *Config) Site(slug string) SiteConfig {
	if sc, ok := c.Sites[slug]; ok {
		return sc
	}
	return SiteConfig{Enabled: true}
}
