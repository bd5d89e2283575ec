// Package wishpick provides a public SDK for drawing random picks from
// Douban wishlists.
//
// Example usage:
//
//	client, err := wishpick.New(wishpick.WithSampleSize(5))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	movies, err := client.Movies(ctx, "ahbei", wishpick.OfType("movie"))
package wishpick

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/IshaanNene/wishpick/internal/config"
	"github.com/IshaanNene/wishpick/internal/fetcher"
	"github.com/IshaanNene/wishpick/internal/sampler"
	"github.com/IshaanNene/wishpick/internal/types"
)

// Movie is one "wish to watch" record.
type Movie = types.Movie

// Book is one "wish to read" record.
type Book = types.Book

// Errors callers can match with errors.Is.
var (
	ErrMissingUserID = types.ErrMissingUserID
	ErrEmptyWishlist = types.ErrEmptyWishlist
	ErrNoItems       = types.ErrNoItems
	ErrTotalNotFound = types.ErrTotalNotFound
	ErrBlocked       = types.ErrBlocked
)

// Client draws random picks from wishlists.
type Client struct {
	cfg     *config.Config
	fetcher fetcher.Fetcher
	movies  *sampler.Sampler[types.Movie]
	books   *sampler.Sampler[types.Book]
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*config.Config)

// WithSampleSize sets how many records a pick returns by default.
func WithSampleSize(n int) Option {
	return func(c *config.Config) { c.Sampler.SampleSize = n }
}

// WithTimeout sets the per-page request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config.Config) { c.Fetcher.RequestTimeout = d }
}

// WithUserAgent sets a custom User-Agent.
func WithUserAgent(ua string) Option {
	return func(c *config.Config) { c.Fetcher.UserAgent = ua }
}

// WithProxy enables proxy rotation with the given proxy URLs.
func WithProxy(urls ...string) Option {
	return func(c *config.Config) {
		c.Proxy.Enabled = true
		c.Proxy.URLs = urls
	}
}

// WithBrowser fetches listings through a headless browser.
func WithBrowser(stealth bool) Option {
	return func(c *config.Config) {
		c.Fetcher.Type = "browser"
		c.Fetcher.Stealth = stealth
	}
}

// WithBaseURLs points the client at different listing hosts.
func WithBaseURLs(movieBase, bookBase string) Option {
	return func(c *config.Config) {
		c.Sampler.MovieBaseURL = movieBase
		c.Sampler.BookBaseURL = bookBase
	}
}

// WithVerbose enables debug-level logging.
func WithVerbose() Option {
	return func(c *config.Config) { c.Logging.Level = "debug" }
}

// New creates a Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := config.DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	level := slog.LevelWarn
	if cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	f, err := fetcher.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create fetcher: %w", err)
	}

	return &Client{
		cfg:     cfg,
		fetcher: f,
		movies:  sampler.NewMovieSampler(f, cfg, logger),
		books:   sampler.NewBookSampler(f, cfg, logger),
		logger:  logger,
	}, nil
}

// PickOption narrows a single pick.
type PickOption func(*sampler.Request)

// OfType filters the movie listing ("movie", "tv", ...). Books ignore it.
func OfType(t string) PickOption {
	return func(r *sampler.Request) { r.Type = t }
}

// Count overrides the client's sample size for one pick.
func Count(n int) PickOption {
	return func(r *sampler.Request) { r.Count = n }
}

// Movies draws random records from userID's "wish to watch" list.
func (c *Client) Movies(ctx context.Context, userID string, opts ...PickOption) ([]Movie, error) {
	return c.movies.Draw(ctx, pickRequest(userID, opts))
}

// Books draws random records from userID's "wish to read" list.
func (c *Client) Books(ctx context.Context, userID string, opts ...PickOption) ([]Book, error) {
	return c.books.Draw(ctx, pickRequest(userID, opts))
}

// Close releases the underlying fetcher.
func (c *Client) Close() error {
	return c.fetcher.Close()
}

func pickRequest(userID string, opts []PickOption) sampler.Request {
	req := sampler.Request{UserID: userID}
	for _, opt := range opts {
		opt(&req)
	}
	return req
}
