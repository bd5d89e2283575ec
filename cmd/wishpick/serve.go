package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/wishpick/internal/api"
	"github.com/IshaanNene/wishpick/internal/fetcher"
	"github.com/IshaanNene/wishpick/internal/observability"
	"github.com/IshaanNene/wishpick/internal/relay"
	"github.com/IshaanNene/wishpick/internal/sampler"
	"github.com/IshaanNene/wishpick/internal/web"
)

var servePort int

// serveCmd creates the "serve" subcommand.
func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the picker page, JSON API and image relay",
		Long: `Start the HTTP server.

Routes:
  GET /                  picker page
  GET /api/movies        random "wish to watch" picks (?userId=&type=)
  GET /api/books         random "wish to read" picks (?userId=)
  GET /api/movies/feed   the same picks as RSS
  GET /api/books/feed    the same picks as RSS
  GET /api/image         cover image relay (?url=)
  GET /api/health        liveness`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (0 = config default)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Server.Port = servePort
	}
	logger := setupLogger(cfg, os.Stderr)

	f, err := fetcher.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer f.Close()

	metrics := observability.NewMetrics(logger)
	srv := api.NewServer(cfg, api.Deps{
		Movies:  sampler.NewMovieSampler(f, cfg, logger, sampler.WithMetrics(metrics)),
		Books:   sampler.NewBookSampler(f, cfg, logger, sampler.WithMetrics(metrics)),
		Images:  relay.New(&cfg.Relay, logger, relay.WithMetrics(metrics)),
		Page:    web.NewPage(logger),
		Metrics: metrics,
	}, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	logger.Info("wishpick serving",
		"port", cfg.Server.Port,
		"fetcher", f.Type(),
		"metrics", cfg.Metrics.Enabled,
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("received signal, shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
