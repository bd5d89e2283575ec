package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must be >= 0")
	}

	if cfg.Fetcher.Type != "http" && cfg.Fetcher.Type != "browser" {
		return fmt.Errorf("fetcher.type must be 'http' or 'browser', got %q", cfg.Fetcher.Type)
	}
	if strings.TrimSpace(cfg.Fetcher.UserAgent) == "" {
		return fmt.Errorf("fetcher.user_agent must not be empty")
	}
	if cfg.Fetcher.RequestTimeout <= 0 {
		return fmt.Errorf("fetcher.request_timeout must be > 0")
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}

	if cfg.Proxy.Enabled {
		if cfg.Proxy.Rotation != "round_robin" && cfg.Proxy.Rotation != "random" {
			return fmt.Errorf("proxy.rotation must be 'round_robin' or 'random', got %q", cfg.Proxy.Rotation)
		}
		for _, proxyURL := range cfg.Proxy.URLs {
			if _, err := url.Parse(proxyURL); err != nil {
				return fmt.Errorf("invalid proxy URL %q: %w", proxyURL, err)
			}
		}
	}

	if cfg.Sampler.PageSize < 1 {
		return fmt.Errorf("sampler.page_size must be >= 1, got %d", cfg.Sampler.PageSize)
	}
	if cfg.Sampler.SampleSize < 1 || cfg.Sampler.SampleSize > 50 {
		return fmt.Errorf("sampler.sample_size must be 1-50, got %d", cfg.Sampler.SampleSize)
	}
	if err := ValidateURL(cfg.Sampler.MovieBaseURL); err != nil {
		return fmt.Errorf("sampler.movie_base_url: %w", err)
	}
	if err := ValidateURL(cfg.Sampler.BookBaseURL); err != nil {
		return fmt.Errorf("sampler.book_base_url: %w", err)
	}

	if len(cfg.Relay.AllowedSuffixes) == 0 {
		return fmt.Errorf("relay.allowed_suffixes must list at least one host suffix")
	}
	for _, suffix := range cfg.Relay.AllowedSuffixes {
		if strings.TrimSpace(suffix) == "" {
			return fmt.Errorf("relay.allowed_suffixes must not contain empty entries")
		}
	}
	if cfg.Relay.MaxBytes <= 0 {
		return fmt.Errorf("relay.max_bytes must be > 0")
	}

	switch cfg.Preferences.Backend {
	case "file", "memory":
	case "mongo":
		if cfg.Preferences.MongoURI == "" {
			return fmt.Errorf("preferences.mongo_uri is required for the mongo backend")
		}
	default:
		return fmt.Errorf("preferences.backend %q is not supported (valid: file, memory, mongo)", cfg.Preferences.Backend)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/', got %q", cfg.Metrics.Path)
	}

	return nil
}

// ValidateURL checks that a URL is absolute http(s).
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
