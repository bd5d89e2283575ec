package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for wishpick.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"      yaml:"server"`
	Fetcher     FetcherConfig     `mapstructure:"fetcher"     yaml:"fetcher"`
	Proxy       ProxyConfig       `mapstructure:"proxy"       yaml:"proxy"`
	Sampler     SamplerConfig     `mapstructure:"sampler"     yaml:"sampler"`
	Relay       RelayConfig       `mapstructure:"relay"       yaml:"relay"`
	Preferences PreferencesConfig `mapstructure:"preferences" yaml:"preferences"`
	Logging     LoggingConfig     `mapstructure:"logging"     yaml:"logging"`
	Metrics     MetricsConfig     `mapstructure:"metrics"     yaml:"metrics"`
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// FetcherConfig controls how listing pages are retrieved.
type FetcherConfig struct {
	Type            string        `mapstructure:"type"              yaml:"type"`
	UserAgent       string        `mapstructure:"user_agent"        yaml:"user_agent"`
	Referer         string        `mapstructure:"referer"           yaml:"referer"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"   yaml:"request_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"      yaml:"tls_insecure"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
	Stealth         bool          `mapstructure:"stealth"           yaml:"stealth"`
}

// ProxyConfig controls proxy rotation for outbound requests.
type ProxyConfig struct {
	Enabled  bool     `mapstructure:"enabled"  yaml:"enabled"`
	Rotation string   `mapstructure:"rotation" yaml:"rotation"`
	URLs     []string `mapstructure:"urls"     yaml:"urls"`
}

// SamplerConfig controls wishlist sampling.
type SamplerConfig struct {
	PageSize     int    `mapstructure:"page_size"      yaml:"page_size"`
	SampleSize   int    `mapstructure:"sample_size"    yaml:"sample_size"`
	MovieBaseURL string `mapstructure:"movie_base_url" yaml:"movie_base_url"`
	BookBaseURL  string `mapstructure:"book_base_url"  yaml:"book_base_url"`
}

// RelayConfig controls the cover image relay.
type RelayConfig struct {
	AllowedSuffixes []string      `mapstructure:"allowed_suffixes" yaml:"allowed_suffixes"`
	UserAgent       string        `mapstructure:"user_agent"       yaml:"user_agent"`
	Referer         string        `mapstructure:"referer"          yaml:"referer"`
	Accept          string        `mapstructure:"accept"           yaml:"accept"`
	CacheControl    string        `mapstructure:"cache_control"    yaml:"cache_control"`
	Timeout         time.Duration `mapstructure:"timeout"          yaml:"timeout"`
	MaxBytes        int64         `mapstructure:"max_bytes"        yaml:"max_bytes"`
}

// PreferencesConfig controls where the CLI remembers its last input.
type PreferencesConfig struct {
	Backend    string `mapstructure:"backend"    yaml:"backend"`
	Path       string `mapstructure:"path"       yaml:"path"`
	MongoURI   string `mapstructure:"mongo_uri"  yaml:"mongo_uri"`
	Database   string `mapstructure:"database"   yaml:"database"`
	Collection string `mapstructure:"collection" yaml:"collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls the Prometheus text endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Fetcher: FetcherConfig{
			Type:            "http",
			UserAgent:       browserUserAgent,
			Referer:         "https://www.douban.com/",
			RequestTimeout:  30 * time.Second,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    20,
		},
		Proxy: ProxyConfig{
			Enabled:  false,
			Rotation: "round_robin",
		},
		Sampler: SamplerConfig{
			PageSize:     15,
			SampleSize:   3,
			MovieBaseURL: "https://movie.douban.com",
			BookBaseURL:  "https://book.douban.com",
		},
		Relay: RelayConfig{
			AllowedSuffixes: []string{".doubanio.com"},
			UserAgent:       browserUserAgent,
			Referer:         "https://movie.douban.com",
			Accept:          "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8",
			CacheControl:    "public, max-age=31536000",
			Timeout:         20 * time.Second,
			MaxBytes:        5 * 1024 * 1024,
		},
		Preferences: PreferencesConfig{
			Backend:    "file",
			Path:       "",
			Database:   "wishpick",
			Collection: "preferences",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Path:    "/metrics",
		},
	}
}
