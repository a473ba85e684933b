package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and defaults.
// Priority (highest to lowest): env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("NEWSARCHIVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("newsarchive")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".newsarchive"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper so env var overrides bind.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("archive.root", cfg.Archive.Root)
	v.SetDefault("archive.retention_days", cfg.Archive.RetentionDays)

	v.SetDefault("fetcher.timeout", cfg.Fetcher.Timeout)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.user_agent", cfg.Fetcher.UserAgent)
	v.SetDefault("fetcher.politeness_delay", cfg.Fetcher.PolitenessDelay)
	v.SetDefault("fetcher.max_candidates", cfg.Fetcher.MaxCandidates)

	for slug, sc := range cfg.Sites {
		v.SetDefault("sites."+slug+".enabled", sc.Enabled)
		v.SetDefault("sites."+slug+".cookie", sc.Cookie)
	}

	v.SetDefault("rewrite.provider", cfg.Rewrite.Provider)
	v.SetDefault("rewrite.endpoint", cfg.Rewrite.Endpoint)
	v.SetDefault("rewrite.model", cfg.Rewrite.Model)
	v.SetDefault("rewrite.api_key", cfg.Rewrite.APIKey)
	v.SetDefault("rewrite.max_tokens", cfg.Rewrite.MaxTokens)
	v.SetDefault("rewrite.temperature", cfg.Rewrite.Temperature)

	v.SetDefault("index.enabled", cfg.Index.Enabled)
	v.SetDefault("index.uri", cfg.Index.URI)
	v.SetDefault("index.database", cfg.Index.Database)
	v.SetDefault("index.collection", cfg.Index.Collection)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}
