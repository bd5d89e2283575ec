// Package relay re-fetches cover images server-side so browsers never hit the
// image CDN directly with their own Referer.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/IshaanNene/wishpick/internal/config"
	"github.com/IshaanNene/wishpick/internal/observability"
	"github.com/IshaanNene/wishpick/internal/types"
)

// DefaultContentType is used when the upstream does not name one.
const DefaultContentType = "image/jpeg"

const maxRedirects = 5

// Image is a relayed image body.
type Image struct {
	Data        []byte
	ContentType string
}

// Client relays images from an allow-listed set of hosts.
type Client struct {
	http     *resty.Client
	suffixes []string
	maxBytes int64
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTransport replaces the underlying HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.http.SetTransport(rt) }
}

// WithMetrics records relay counters.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a relay Client from cfg.
func New(cfg *config.RelayConfig, logger *slog.Logger, opts ...Option) *Client {
	suffixes := make([]string, 0, len(cfg.AllowedSuffixes))
	for _, s := range cfg.AllowedSuffixes {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			suffixes = append(suffixes, s)
		}
	}

	c := &Client{
		http: resty.New().
			SetTimeout(cfg.Timeout).
			SetHeader("User-Agent", cfg.UserAgent).
			SetHeader("Referer", cfg.Referer).
			SetHeader("Accept", cfg.Accept).
			SetDoNotParseResponse(true),
		suffixes: suffixes,
		maxBytes: cfg.MaxBytes,
		logger:   logger.With("component", "relay"),
	}
	c.http.SetRedirectPolicy(resty.RedirectPolicyFunc(c.checkRedirect))
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// checkRedirect keeps every hop on the allow list.
func (c *Client) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if !c.Allowed(req.URL.Hostname()) {
		c.logger.Warn("rejected image redirect", "host", req.URL.Hostname())
		return &types.ForbiddenOriginError{Host: req.URL.Hostname()}
	}
	return nil
}

// Allowed reports whether host is one of the trusted image hosts.
func (c *Client) Allowed(host string) bool {
	host = strings.ToLower(host)
	for _, s := range c.suffixes {
		if strings.HasSuffix(host, s) {
			return true
		}
	}
	return false
}

// Relay validates rawURL, fetches it with the fixed identity and returns the body.
func (c *Client) Relay(ctx context.Context, rawURL string) (*Image, error) {
	c.metrics.Add(observability.RelayRequests, 1)

	u, err := parseImageURL(rawURL)
	if err != nil {
		c.metrics.Add(observability.RelayRejected, 1)
		return nil, err
	}
	if !c.Allowed(u.Hostname()) {
		c.metrics.Add(observability.RelayRejected, 1)
		c.logger.Warn("rejected image host", "host", u.Hostname())
		return nil, &types.ForbiddenOriginError{Host: u.Hostname()}
	}

	img, err := c.fetch(ctx, u.String())
	if err != nil {
		c.metrics.Add(observability.RelayFailed, 1)
		c.logger.Warn("relay failed", "url", u.String(), "error", err)
		return nil, err
	}
	c.metrics.Add(observability.RelayBytes, int64(len(img.Data)))
	return img, nil
}

func (c *Client) fetch(ctx context.Context, target string) (*Image, error) {
	resp, err := c.http.R().SetContext(ctx).Get(target)
	if err != nil {
		return nil, &types.UpstreamError{URL: target, Err: err}
	}
	body := resp.RawBody()
	defer body.Close()

	if !resp.IsSuccess() {
		return nil, &types.UpstreamError{
			URL:        target,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("status %d", resp.StatusCode()),
		}
	}

	contentType := resp.Header().Get("Content-Type")
	if contentType == "" {
		contentType = DefaultContentType
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err != nil || !strings.HasPrefix(mediaType, "image/") {
		return nil, &types.UpstreamError{
			URL:        target,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("%w: %q", types.ErrNotImage, contentType),
		}
	}

	var reader io.Reader = body
	if c.maxBytes > 0 {
		reader = io.LimitReader(body, c.maxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, &types.UpstreamError{URL: target, Err: err}
	}
	if c.maxBytes > 0 && int64(len(data)) > c.maxBytes {
		return nil, &types.UpstreamError{URL: target, Err: types.ErrBodyTooLarge}
	}

	c.logger.Debug("image relayed", "url", target, "bytes", len(data), "content_type", contentType)
	return &Image{Data: data, ContentType: contentType}, nil
}

func parseImageURL(rawURL string) (*url.URL, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, &types.InvalidURLError{URL: rawURL, Err: errors.New("empty")}
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &types.InvalidURLError{URL: rawURL, Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &types.InvalidURLError{URL: rawURL, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
	if u.Hostname() == "" {
		return nil, &types.InvalidURLError{URL: rawURL, Err: errors.New("missing host")}
	}
	return u, nil
}
