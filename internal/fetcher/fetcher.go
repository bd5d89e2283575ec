package fetcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IshaanNene/wishpick/internal/config"
	"github.com/IshaanNene/wishpick/internal/types"
)

// Fetcher is the interface for all page fetcher implementations.
type Fetcher interface {
	// Fetch retrieves the content at the given request's URL.
	// Non-2xx answers are reported as *types.FetchError.
	Fetch(ctx context.Context, req *types.Request) (*types.Response, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}

// New builds the fetcher selected by cfg.Fetcher.Type.
func New(cfg *config.Config, logger *slog.Logger) (Fetcher, error) {
	var proxyMgr *ProxyManager
	if cfg.Proxy.Enabled && len(cfg.Proxy.URLs) > 0 {
		proxyMgr = NewProxyManager(&cfg.Proxy, logger)
	}

	switch cfg.Fetcher.Type {
	case "", "http":
		return NewHTTPFetcher(cfg, proxyMgr, logger)
	case "browser":
		return NewBrowserFetcher(cfg, logger, WithBrowserProxy(proxyMgr), WithStealth(cfg.Fetcher.Stealth))
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrNoFetcher, cfg.Fetcher.Type)
	}
}
