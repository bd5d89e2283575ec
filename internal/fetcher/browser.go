package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/IshaanNene/wishpick/internal/config"
	"github.com/IshaanNene/wishpick/internal/types"
)

// BrowserFetcher implements Fetcher using a headless browser via Rod.
// It is meant for listings that only render behind a JavaScript challenge.
type BrowserFetcher struct {
	browser  *rod.Browser
	cfg      *config.Config
	stealth  bool
	logger   *slog.Logger
	proxyMgr *ProxyManager
	pagePool chan *rod.Page
}

// BrowserOption configures the BrowserFetcher.
type BrowserOption func(*BrowserFetcher)

// WithStealth patches every page with go-rod/stealth.
func WithStealth(enabled bool) BrowserOption {
	return func(bf *BrowserFetcher) { bf.stealth = enabled }
}

// WithBrowserProxy sets the proxy manager for browser requests.
func WithBrowserProxy(pm *ProxyManager) BrowserOption {
	return func(bf *BrowserFetcher) { bf.proxyMgr = pm }
}

// NewBrowserFetcher launches Chromium and connects to it.
func NewBrowserFetcher(cfg *config.Config, logger *slog.Logger, opts ...BrowserOption) (*BrowserFetcher, error) {
	bf := &BrowserFetcher{
		cfg:    cfg,
		logger: logger.With("component", "browser_fetcher"),
	}

	for _, opt := range opts {
		opt(bf)
	}

	launchURL, err := bf.launchBrowser()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(launchURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	bf.browser = browser
	// One pooled page per concurrent listing fetch.
	poolSize := cfg.Sampler.SampleSize + 1
	bf.pagePool = make(chan *rod.Page, poolSize)

	bf.logger.Info("browser fetcher ready",
		"max_pages", poolSize,
		"stealth", bf.stealth,
	)

	return bf, nil
}

// launchBrowser starts a Chromium instance with appropriate flags.
func (bf *BrowserFetcher) launchBrowser() (string, error) {
	l := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-blink-features", "AutomationControlled")

	if proxyURL := bf.proxyMgr.Next(); proxyURL != nil {
		l = l.Proxy(proxyURL.String())
	}

	return l.Launch()
}

// Fetch navigates to a URL and returns the rendered page content.
func (bf *BrowserFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	start := time.Now()

	page, err := bf.getPage()
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err}
	}
	defer bf.putPage(page)

	page = page.Context(ctx)

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent: bf.cfg.Fetcher.UserAgent,
	}); err != nil {
		bf.logger.Warn("failed to set user agent", "error", err)
	}

	headers := make([]string, 0, len(req.Headers)*2+2)
	if bf.cfg.Fetcher.Referer != "" {
		headers = append(headers, "Referer", bf.cfg.Fetcher.Referer)
	}
	for k, vals := range req.Headers {
		for _, v := range vals {
			headers = append(headers, k, v)
		}
	}
	if len(headers) > 0 {
		if _, err := page.SetExtraHeaders(headers); err != nil {
			bf.logger.Warn("failed to set headers", "error", err)
		}
	}

	timeout := bf.cfg.Fetcher.RequestTimeout

	if err := page.Timeout(timeout).Navigate(req.URLString()); err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err}
	}

	if err := page.Timeout(timeout).WaitStable(300 * time.Millisecond); err != nil {
		bf.logger.Warn("page stability timeout, continuing", "url", req.URLString(), "error", err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err}
	}

	finalURL := req.URLString()
	if info, err := page.Info(); err == nil && info != nil {
		finalURL = info.URL
	}

	duration := time.Since(start)
	// Rod does not surface the navigation status code.
	resp := types.NewBrowserResponse(req, 200, []byte(html), finalURL, duration)

	bf.logger.Debug("browser fetch complete",
		"url", req.URLString(),
		"tag", req.Tag,
		"page", req.Page,
		"final_url", finalURL,
		"size", len(html),
		"duration", duration,
	)

	return resp, nil
}

// Close shuts down the browser and releases resources.
func (bf *BrowserFetcher) Close() error {
	close(bf.pagePool)
	for page := range bf.pagePool {
		_ = page.Close()
	}
	if bf.browser != nil {
		return bf.browser.Close()
	}
	return nil
}

// Type returns the fetcher type identifier.
func (bf *BrowserFetcher) Type() string {
	return "browser"
}

// getPage retrieves a page from the pool or creates a new one.
func (bf *BrowserFetcher) getPage() (*rod.Page, error) {
	select {
	case page := <-bf.pagePool:
		return page, nil
	default:
	}
	if bf.stealth {
		return stealth.Page(bf.browser)
	}
	return bf.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
}

// putPage returns a page to the pool.
func (bf *BrowserFetcher) putPage(page *rod.Page) {
	_ = page.Navigate("about:blank")

	select {
	case bf.pagePool <- page:
	default:
		_ = page.Close()
	}
}
