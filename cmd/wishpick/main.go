package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/wishpick/internal/config"
)

var (
	cfgFile     string
	verbose     bool
	logFormat   string
	fetcherType string
	sampleSize  int
	proxyURLs   string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wishpick",
		Short: "Random picks from Douban wishlists",
		Long: `wishpick draws a few random entries from a Douban user's public
"wish to watch" or "wish to read" list.

It samples a handful of listing pages instead of crawling the whole list,
serves the picks as JSON, RSS or a small web page, and relays cover
images so browsers are not blocked by hotlink protection.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json")
	rootCmd.PersistentFlags().StringVar(&fetcherType, "fetcher", "", "page fetcher: http or browser")
	rootCmd.PersistentFlags().IntVarP(&sampleSize, "count", "n", 0, "records per pick (0 = config default)")
	rootCmd.PersistentFlags().StringVar(&proxyURLs, "proxies", "", "comma-separated proxy URLs to rotate through")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(pickCmd())
	rootCmd.AddCommand(prefsCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

// loadConfig loads, overrides and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	applyCLIOverrides(cfg)

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "wishpick %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Server:\n")
			fmt.Fprintf(out, "  Port:              %d\n", cfg.Server.Port)
			fmt.Fprintf(out, "  Shutdown Timeout:  %s\n", cfg.Server.ShutdownTimeout)
			fmt.Fprintf(out, "\nFetcher:\n")
			fmt.Fprintf(out, "  Type:              %s\n", cfg.Fetcher.Type)
			fmt.Fprintf(out, "  Request Timeout:   %s\n", cfg.Fetcher.RequestTimeout)
			fmt.Fprintf(out, "  Max Body Size:     %d bytes\n", cfg.Fetcher.MaxBodySize)
			fmt.Fprintf(out, "  Stealth:           %v\n", cfg.Fetcher.Stealth)
			fmt.Fprintf(out, "\nProxy:\n")
			fmt.Fprintf(out, "  Enabled:           %v\n", cfg.Proxy.Enabled)
			fmt.Fprintf(out, "  Rotation:          %s\n", cfg.Proxy.Rotation)
			fmt.Fprintf(out, "  Count:             %d\n", len(cfg.Proxy.URLs))
			fmt.Fprintf(out, "\nSampler:\n")
			fmt.Fprintf(out, "  Page Size:         %d\n", cfg.Sampler.PageSize)
			fmt.Fprintf(out, "  Sample Size:       %d\n", cfg.Sampler.SampleSize)
			fmt.Fprintf(out, "  Movies:            %s\n", cfg.Sampler.MovieBaseURL)
			fmt.Fprintf(out, "  Books:             %s\n", cfg.Sampler.BookBaseURL)
			fmt.Fprintf(out, "\nRelay:\n")
			fmt.Fprintf(out, "  Allowed Hosts:     %s\n", strings.Join(cfg.Relay.AllowedSuffixes, ", "))
			fmt.Fprintf(out, "  Timeout:           %s\n", cfg.Relay.Timeout)
			fmt.Fprintf(out, "  Max Bytes:         %d\n", cfg.Relay.MaxBytes)
			fmt.Fprintf(out, "\nPreferences:\n")
			fmt.Fprintf(out, "  Backend:           %s\n", cfg.Preferences.Backend)
			if cfg.Preferences.Backend == "file" {
				fmt.Fprintf(out, "  Path:              %s\n", cfg.Preferences.Path)
			}
			fmt.Fprintf(out, "\nMetrics:\n")
			fmt.Fprintf(out, "  Enabled:           %v\n", cfg.Metrics.Enabled)
			fmt.Fprintf(out, "  Path:              %s\n", cfg.Metrics.Path)
			return nil
		},
	}
}

// setupLogger creates a structured logger from the logging config.
func setupLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cfg *config.Config) {
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if logFormat != "" {
		cfg.Logging.Format = strings.ToLower(logFormat)
	}
	if fetcherType != "" {
		cfg.Fetcher.Type = strings.ToLower(fetcherType)
	}
	if sampleSize > 0 {
		cfg.Sampler.SampleSize = sampleSize
	}
	if proxyURLs != "" {
		var urls []string
		for _, u := range strings.Split(proxyURLs, ",") {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, u)
			}
		}
		cfg.Proxy.Enabled = len(urls) > 0
		cfg.Proxy.URLs = urls
	}
}
