package fetcher

import (
	"compress/gzip"
	"compress/zlib"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/IshaanNene/wishpick/internal/config"
	"github.com/IshaanNene/wishpick/internal/types"
)

// HTTPFetcher implements Fetcher using net/http with a fixed browser identity.
type HTTPFetcher struct {
	client    *http.Client
	cfg       *config.FetcherConfig
	proxyMgr  *ProxyManager
	logger    *slog.Logger
	userAgent string
	referer   string
}

// NewHTTPFetcher creates a new HTTP fetcher. proxyMgr may be nil.
func NewHTTPFetcher(cfg *config.Config, proxyMgr *ProxyManager, logger *slog.Logger) (*HTTPFetcher, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        cfg.Fetcher.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.Fetcher.MaxIdleConns / 2,
		IdleConnTimeout:     cfg.Fetcher.IdleConnTimeout,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.Fetcher.TLSInsecure,
		},
		DisableCompression: true, // decoded below, including brotli
	}

	if proxyMgr != nil {
		transport.Proxy = proxyMgr.ProxyFunc()
	}

	client := &http.Client{
		Transport: transport,
		Jar:       jar,
		Timeout:   cfg.Fetcher.RequestTimeout,
	}

	return &HTTPFetcher{
		client:    client,
		cfg:       &cfg.Fetcher,
		proxyMgr:  proxyMgr,
		logger:    logger.With("component", "http_fetcher"),
		userAgent: cfg.Fetcher.UserAgent,
		referer:   cfg.Fetcher.Referer,
	}, nil
}

// Fetch executes an HTTP request and returns the response.
func (f *HTTPFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URLString(), nil)
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err}
	}

	httpReq.Header.Set("User-Agent", f.userAgent)
	if f.referer != "" {
		httpReq.Header.Set("Referer", f.referer)
	}
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")
	httpReq.Header.Set("Accept-Encoding", "gzip, deflate, br")

	for key, values := range req.Headers {
		for _, v := range values {
			httpReq.Header.Set(key, v)
		}
	}

	start := time.Now()
	httpResp, err := f.client.Do(httpReq)
	duration := time.Since(start)

	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return nil, &types.FetchError{
			URL:        req.URLString(),
			StatusCode: httpResp.StatusCode,
			Err:        fmt.Errorf("HTTP %d: %s", httpResp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	reader, err := decompressReader(httpResp, httpResp.Body)
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err}
	}
	defer reader.Close()

	// One extra byte tells an exact-limit body apart from a truncated one.
	body, err := io.ReadAll(io.LimitReader(reader, f.cfg.MaxBodySize+1))
	if err != nil {
		return nil, &types.FetchError{URL: req.URLString(), Err: err}
	}
	if int64(len(body)) > f.cfg.MaxBodySize {
		return nil, &types.FetchError{URL: req.URLString(), StatusCode: httpResp.StatusCode, Err: types.ErrBodyTooLarge}
	}
	if len(body) == 0 {
		return nil, &types.FetchError{URL: req.URLString(), StatusCode: httpResp.StatusCode, Err: types.ErrEmptyResponse}
	}

	resp := types.NewResponse(req, httpResp, body, duration)

	f.logger.Debug("fetch complete",
		"url", req.URLString(),
		"tag", req.Tag,
		"page", req.Page,
		"status", resp.StatusCode,
		"size", len(body),
		"duration", duration,
	)

	return resp, nil
}

// Close releases resources.
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// Type returns the fetcher type identifier.
func (f *HTTPFetcher) Type() string {
	return "http"
}

// decompressReader wraps a reader with the decoder named by Content-Encoding.
// HTTP "deflate" is the zlib format. Closing the result leaves reader open.
func decompressReader(resp *http.Response, reader io.Reader) (io.ReadCloser, error) {
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		return gzip.NewReader(reader)
	case "deflate":
		return zlib.NewReader(reader)
	case "br":
		return io.NopCloser(brotli.NewReader(reader)), nil
	default:
		return io.NopCloser(reader), nil
	}
}
