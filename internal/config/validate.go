package config

import (
	"fmt"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Archive.Root == "" {
		return fmt.Errorf("archive.root must not be empty")
	}
	if cfg.Archive.RetentionDays < 0 {
		return fmt.Errorf("archive.retention_days must be >= 0, got %d", cfg.Archive.RetentionDays)
	}

	if cfg.Fetcher.Timeout <= 0 {
		return fmt.Errorf("fetcher.timeout must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.PolitenessDelay < 0 {
		return fmt.Errorf("fetcher.politeness_delay must be >= 0")
	}
	if cfg.Fetcher.MaxCandidates < 1 {
		return fmt.Errorf("fetcher.max_candidates must be >= 1, got %d", cfg.Fetcher.MaxCandidates)
	}

	known := make(map[string]bool, len(DefaultSites))
	for _, slug := range DefaultSites {
		known[slug] = true
	}
	for slug := range cfg.Sites {
		if !known[slug] {
			return fmt.Errorf("sites.%s is not a supported site (valid: %v)", slug, DefaultSites)
		}
	}

	validProviders := map[string]bool{
		"openai": true, "ollama": true, "custom": true,
	}
	if !validProviders[cfg.Rewrite.Provider] {
		return fmt.Errorf("rewrite.provider %q is not supported (valid: openai, ollama, custom)", cfg.Rewrite.Provider)
	}
	if cfg.Rewrite.Provider == "custom" && cfg.Rewrite.Endpoint == "" {
		return fmt.Errorf("rewrite.endpoint is required for the custom provider")
	}

	if cfg.Index.Enabled {
		if cfg.Index.URI == "" {
			return fmt.Errorf("index.uri must not be empty when index is enabled")
		}
		if cfg.Index.Database == "" || cfg.Index.Collection == "" {
			return fmt.Errorf("index.database and index.collection must not be empty when index is enabled")
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level %q is not supported (valid: debug, info, warn, error)", cfg.Logging.Level)
	}

	return nil
}
