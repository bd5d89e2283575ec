package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration from a .env file, the environment and a YAML file.
// Priority (highest to lowest): env vars > config file > defaults.
// CLI flags are applied by the caller afterwards.
func Load(configPath string) (*Config, error) {
	// A missing .env is the normal case outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("WISHPICK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("wishpick")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".wishpick"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Preferences.Path == "" {
		cfg.Preferences.Path = DefaultPreferencesPath()
	}

	return cfg, nil
}

// DefaultPreferencesPath is where the file preference store lives unless configured.
func DefaultPreferencesPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".wishpick", "prefs.json")
	}
	return filepath.Join(home, ".wishpick", "prefs.json")
}

// setDefaults registers default values in viper so env overrides resolve.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.read_timeout", cfg.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", cfg.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)

	v.SetDefault("fetcher.type", cfg.Fetcher.Type)
	v.SetDefault("fetcher.user_agent", cfg.Fetcher.UserAgent)
	v.SetDefault("fetcher.referer", cfg.Fetcher.Referer)
	v.SetDefault("fetcher.request_timeout", cfg.Fetcher.RequestTimeout)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.tls_insecure", cfg.Fetcher.TLSInsecure)
	v.SetDefault("fetcher.idle_conn_timeout", cfg.Fetcher.IdleConnTimeout)
	v.SetDefault("fetcher.max_idle_conns", cfg.Fetcher.MaxIdleConns)
	v.SetDefault("fetcher.stealth", cfg.Fetcher.Stealth)

	v.SetDefault("proxy.enabled", cfg.Proxy.Enabled)
	v.SetDefault("proxy.rotation", cfg.Proxy.Rotation)

	v.SetDefault("sampler.page_size", cfg.Sampler.PageSize)
	v.SetDefault("sampler.sample_size", cfg.Sampler.SampleSize)
	v.SetDefault("sampler.movie_base_url", cfg.Sampler.MovieBaseURL)
	v.SetDefault("sampler.book_base_url", cfg.Sampler.BookBaseURL)

	v.SetDefault("relay.allowed_suffixes", cfg.Relay.AllowedSuffixes)
	v.SetDefault("relay.user_agent", cfg.Relay.UserAgent)
	v.SetDefault("relay.referer", cfg.Relay.Referer)
	v.SetDefault("relay.accept", cfg.Relay.Accept)
	v.SetDefault("relay.cache_control", cfg.Relay.CacheControl)
	v.SetDefault("relay.timeout", cfg.Relay.Timeout)
	v.SetDefault("relay.max_bytes", cfg.Relay.MaxBytes)

	v.SetDefault("preferences.backend", cfg.Preferences.Backend)
	v.SetDefault("preferences.path", cfg.Preferences.Path)
	v.SetDefault("preferences.mongo_uri", cfg.Preferences.MongoURI)
	v.SetDefault("preferences.database", cfg.Preferences.Database)
	v.SetDefault("preferences.collection", cfg.Preferences.Collection)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.path", cfg.Metrics.Path)
}
