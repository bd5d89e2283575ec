package sampler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/IshaanNene/wishpick/internal/config"
	"github.com/IshaanNene/wishpick/internal/fetcher"
	"github.com/IshaanNene/wishpick/internal/observability"
	"github.com/IshaanNene/wishpick/internal/parser"
	"github.com/IshaanNene/wishpick/internal/types"
)

// Sampler draws a random handful of records from a paginated wishlist
// without fetching the whole listing.
type Sampler[T any] struct {
	fetcher    fetcher.Fetcher
	source     Source[T]
	pageSize   int
	sampleSize int
	rand       Rand
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// Option configures a Sampler.
type Option func(*settings)

type settings struct {
	rand    Rand
	metrics *observability.Metrics
}

// WithRand replaces the default random source.
func WithRand(r Rand) Option {
	return func(s *settings) { s.rand = r }
}

// WithMetrics records sampling counters.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// New creates a Sampler over src.
func New[T any](f fetcher.Fetcher, src Source[T], cfg *config.SamplerConfig, logger *slog.Logger, opts ...Option) *Sampler[T] {
	s := settings{rand: DefaultRand}
	for _, opt := range opts {
		opt(&s)
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 15
	}
	sampleSize := cfg.SampleSize
	if sampleSize <= 0 {
		sampleSize = 3
	}

	return &Sampler[T]{
		fetcher:    f,
		source:     src,
		pageSize:   pageSize,
		sampleSize: sampleSize,
		rand:       s.rand,
		metrics:    s.metrics,
		logger:     logger.With("component", "sampler", "kind", string(src.Kind())),
	}
}

// NewMovieSampler builds a movie Sampler from the application config.
func NewMovieSampler(f fetcher.Fetcher, cfg *config.Config, logger *slog.Logger, opts ...Option) *Sampler[types.Movie] {
	return New[types.Movie](f, MovieSource{BaseURL: cfg.Sampler.MovieBaseURL}, &cfg.Sampler, logger, opts...)
}

// NewBookSampler builds a book Sampler from the application config.
func NewBookSampler(f fetcher.Fetcher, cfg *config.Config, logger *slog.Logger, opts ...Option) *Sampler[types.Book] {
	return New[types.Book](f, BookSource{BaseURL: cfg.Sampler.BookBaseURL}, &cfg.Sampler, logger, opts...)
}

// Kind reports which listing this sampler reads.
func (s *Sampler[T]) Kind() types.Kind {
	return s.source.Kind()
}

// Draw samples the wishlist and keeps a random subset of the records.
// The result length is min(count, records found).
func (s *Sampler[T]) Draw(ctx context.Context, req Request) ([]T, error) {
	items, err := s.Sample(ctx, req)
	if err != nil {
		return nil, err
	}
	picked := Pick(s.rand, items, s.count(req))
	s.metrics.Add(observability.ItemsReturned, int64(len(picked)))
	return picked, nil
}

// Sample fetches the listing heading, picks up to count distinct pages at random,
// fetches them concurrently and returns every record they contain.
// The first page failure cancels the rest and fails the call.
func (s *Sampler[T]) Sample(ctx context.Context, req Request) ([]T, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		return nil, &types.ValidationError{Param: "userId", Err: types.ErrMissingUserID}
	}

	s.metrics.Add(observability.SamplesTotal, 1)
	start := time.Now()

	items, pages, err := s.sample(ctx, req)
	if err != nil {
		s.metrics.Add(observability.SamplesFailed, 1)
		s.logger.Warn("sample failed", "user", req.UserID, "error", err)
		return nil, err
	}

	s.logger.Info("sample complete",
		"user", req.UserID,
		"pages", pages,
		"items", len(items),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return items, nil
}

func (s *Sampler[T]) sample(ctx context.Context, req Request) ([]T, []int, error) {
	countURL := s.source.CountURL(req)
	resp, err := s.fetch(ctx, countURL, "count", 0)
	if err != nil {
		return nil, nil, err
	}

	total, err := parser.TotalCount(resp.Body, countURL)
	if err != nil {
		return nil, nil, err
	}
	if total == 0 {
		s.metrics.Add(observability.EmptyWishlists, 1)
		return nil, nil, &types.EmptyWishlistError{UserID: req.UserID, Kind: s.source.Kind()}
	}

	totalPages := total / s.pageSize
	if total%s.pageSize != 0 {
		totalPages++
	}
	pages := drawPages(s.rand, totalPages, s.count(req))
	s.logger.Debug("pages drawn", "user", req.UserID, "total", total, "total_pages", totalPages, "pages", pages)

	var (
		mu    sync.Mutex
		items []T
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, page := range pages {
		g.Go(func() error {
			found, err := s.fetchPage(gctx, req, page)
			if err != nil {
				return err
			}
			mu.Lock()
			items = append(items, found...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	sort.Ints(pages)
	if len(items) == 0 {
		return nil, pages, &types.EmptyResultError{UserID: req.UserID, Kind: s.source.Kind(), Pages: pages}
	}
	return items, pages, nil
}

func (s *Sampler[T]) fetchPage(ctx context.Context, req Request, page int) ([]T, error) {
	pageURL := s.source.PageURL(req, page*s.pageSize)
	resp, err := s.fetch(ctx, pageURL, "page", page)
	if err != nil {
		return nil, err
	}

	doc, err := resp.Document()
	if err != nil {
		return nil, &types.ParseError{URL: pageURL, Err: err}
	}

	found := s.source.Extract(parser.FromSelection(doc.Selection))
	s.metrics.Add(observability.ItemsExtracted, int64(len(found)))
	s.logger.Debug("page extracted", "page", page, "items", len(found))
	return found, nil
}

func (s *Sampler[T]) fetch(ctx context.Context, rawURL, tag string, page int) (*types.Response, error) {
	req, err := types.NewRequest(rawURL)
	if err != nil {
		return nil, &types.FetchError{URL: rawURL, Err: err}
	}
	req.Tag = tag
	req.Page = page

	resp, err := s.fetcher.Fetch(ctx, req)
	if err != nil {
		s.metrics.Add(observability.PagesFailed, 1)
		return nil, err
	}
	if !resp.IsSuccess() {
		s.metrics.Add(observability.PagesFailed, 1)
		return nil, &types.FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status")}
	}
	if challenge, blocked := fetcher.DetectChallenge(resp); blocked {
		s.metrics.Add(observability.PagesFailed, 1)
		return nil, &types.BlockedError{URL: resp.FinalURL, Challenge: string(challenge)}
	}

	s.metrics.Add(observability.PagesFetched, 1)
	s.metrics.Add(observability.BytesDownloaded, int64(len(resp.Body)))
	return resp, nil
}

func (s *Sampler[T]) count(req Request) int {
	if req.Count > 0 {
		return req.Count
	}
	return s.sampleSize
}
