package fetcher

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"

	"github.com/IshaanNene/wishpick/internal/config"
	"github.com/IshaanNene/wishpick/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func newTestFetcher(t *testing.T) *HTTPFetcher {
	t.Helper()
	f, err := NewHTTPFetcher(config.DefaultConfig(), nil, testLogger)
	if err != nil {
		t.Fatalf("create fetcher: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestHTTPFetcherSendsFixedIdentity(t *testing.T) {
	var gotUA, gotReferer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotReferer = r.Header.Get("Referer")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><h1>ok</h1></html>"))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	req, _ := types.NewRequest(srv.URL)
	resp, err := f.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	cfg := config.DefaultConfig()
	if gotUA != cfg.Fetcher.UserAgent {
		t.Errorf("User-Agent = %q, want %q", gotUA, cfg.Fetcher.UserAgent)
	}
	if gotReferer != cfg.Fetcher.Referer {
		t.Errorf("Referer = %q, want %q", gotReferer, cfg.Fetcher.Referer)
	}
	if !resp.IsSuccess() {
		t.Errorf("expected success, got %d", resp.StatusCode)
	}

	doc, err := resp.Document()
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	if got := doc.Find("h1").Text(); got != "ok" {
		t.Errorf("h1 = %q, want ok", got)
	}
}

func TestHTTPFetcherDecodesBrotli(t *testing.T) {
	var buf bytes.Buffer
	bw := brotli.NewWriter(&buf)
	bw.Write([]byte("<h1>我想看的影视(42)</h1>"))
	bw.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "br")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	req, _ := types.NewRequest(srv.URL)
	resp, err := f.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !strings.Contains(string(resp.Body), "(42)") {
		t.Errorf("body not decoded: %q", resp.Body)
	}
}

func TestHTTPFetcherDecodesGzipAndDeflate(t *testing.T) {
	const page = "<h1>我想读的书(7)</h1>"

	tests := []struct {
		encoding string
		compress func(*bytes.Buffer)
	}{
		{"gzip", func(buf *bytes.Buffer) {
			w := gzip.NewWriter(buf)
			w.Write([]byte(page))
			w.Close()
		}},
		{"deflate", func(buf *bytes.Buffer) {
			w := zlib.NewWriter(buf)
			w.Write([]byte(page))
			w.Close()
		}},
	}

	for _, tt := range tests {
		t.Run(tt.encoding, func(t *testing.T) {
			var buf bytes.Buffer
			tt.compress(&buf)

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Encoding", tt.encoding)
				w.Write(buf.Bytes())
			}))
			defer srv.Close()

			f := newTestFetcher(t)
			req, _ := types.NewRequest(srv.URL)
			resp, err := f.Fetch(context.Background(), req)
			if err != nil {
				t.Fatalf("fetch: %v", err)
			}
			if string(resp.Body) != page {
				t.Errorf("body = %q, want %q", resp.Body, page)
			}
		})
	}
}

func TestHTTPFetcherNon2xxIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	req, _ := types.NewRequest(srv.URL + "/people/nobody/wish")
	_, err := f.Fetch(context.Background(), req)

	var fetchErr *types.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *types.FetchError, got %T (%v)", err, err)
	}
	if fetchErr.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", fetchErr.StatusCode)
	}
}

func TestHTTPFetcherBodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte("a"), 64))
	}))
	defer srv.Close()

	cfg := config.DefaultConfig()
	cfg.Fetcher.MaxBodySize = 16
	f, err := NewHTTPFetcher(cfg, nil, testLogger)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	req, _ := types.NewRequest(srv.URL)
	_, err = f.Fetch(context.Background(), req)
	if !errors.Is(err, types.ErrBodyTooLarge) {
		t.Errorf("expected ErrBodyTooLarge, got %v", err)
	}
}

func TestProxyManagerRoundRobin(t *testing.T) {
	pm := NewProxyManager(&config.ProxyConfig{
		Enabled:  true,
		Rotation: "round_robin",
		URLs:     []string{"http://p1:8080", "::bad", "http://p2:8080"},
	}, testLogger)

	if pm.Count() != 2 {
		t.Fatalf("expected 2 valid proxies, got %d", pm.Count())
	}

	first := pm.Next().Host
	second := pm.Next().Host
	third := pm.Next().Host
	if first != "p1:8080" || second != "p2:8080" || third != "p1:8080" {
		t.Errorf("unexpected rotation: %s, %s, %s", first, second, third)
	}
}

func TestProxyManagerNil(t *testing.T) {
	var pm *ProxyManager
	if pm.Next() != nil || pm.Count() != 0 {
		t.Error("nil manager should behave as direct connection")
	}
}

func TestNewRejectsUnknownType(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Fetcher.Type = "carrier-pigeon"
	if _, err := New(cfg, testLogger); !errors.Is(err, types.ErrNoFetcher) {
		t.Errorf("expected ErrNoFetcher, got %v", err)
	}
}
