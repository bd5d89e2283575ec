package observability

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
)

// Metrics tracks operational counters for sampling and image relaying.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Sampling
	SamplesTotal   atomic.Int64
	SamplesFailed  atomic.Int64
	PagesFetched   atomic.Int64
	PagesFailed    atomic.Int64
	ItemsExtracted atomic.Int64
	ItemsReturned  atomic.Int64
	EmptyWishlists atomic.Int64

	// Fetching
	BytesDownloaded atomic.Int64

	// Image relay
	RelayRequests atomic.Int64
	RelayRejected atomic.Int64
	RelayFailed   atomic.Int64
	RelayBytes    atomic.Int64

	logger *slog.Logger
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(logger *slog.Logger) *Metrics {
	return &Metrics{
		logger: logger.With("component", "metrics"),
	}
}

// Add increments c by n when m is non-nil.
func (m *Metrics) Add(c func(*Metrics) *atomic.Int64, n int64) {
	if m == nil {
		return
	}
	c(m).Add(n)
}

// Counter selectors for Add.
var (
	SamplesTotal    = func(m *Metrics) *atomic.Int64 { return &m.SamplesTotal }
	SamplesFailed   = func(m *Metrics) *atomic.Int64 { return &m.SamplesFailed }
	PagesFetched    = func(m *Metrics) *atomic.Int64 { return &m.PagesFetched }
	PagesFailed     = func(m *Metrics) *atomic.Int64 { return &m.PagesFailed }
	ItemsExtracted  = func(m *Metrics) *atomic.Int64 { return &m.ItemsExtracted }
	ItemsReturned   = func(m *Metrics) *atomic.Int64 { return &m.ItemsReturned }
	EmptyWishlists  = func(m *Metrics) *atomic.Int64 { return &m.EmptyWishlists }
	BytesDownloaded = func(m *Metrics) *atomic.Int64 { return &m.BytesDownloaded }
	RelayRequests   = func(m *Metrics) *atomic.Int64 { return &m.RelayRequests }
	RelayRejected   = func(m *Metrics) *atomic.Int64 { return &m.RelayRejected }
	RelayFailed     = func(m *Metrics) *atomic.Int64 { return &m.RelayFailed }
	RelayBytes      = func(m *Metrics) *atomic.Int64 { return &m.RelayBytes }
)

// ServeHTTP serves metrics in Prometheus text exposition format.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	metrics := []struct {
		name  string
		help  string
		value int64
	}{
		{"wishpick_samples_total", "Total sampling requests", m.SamplesTotal.Load()},
		{"wishpick_samples_failed_total", "Total failed sampling requests", m.SamplesFailed.Load()},
		{"wishpick_pages_fetched_total", "Total wishlist pages fetched", m.PagesFetched.Load()},
		{"wishpick_pages_failed_total", "Total wishlist page fetch failures", m.PagesFailed.Load()},
		{"wishpick_items_extracted_total", "Total records extracted from pages", m.ItemsExtracted.Load()},
		{"wishpick_items_returned_total", "Total records returned to callers", m.ItemsReturned.Load()},
		{"wishpick_empty_wishlists_total", "Total samples against empty wishlists", m.EmptyWishlists.Load()},
		{"wishpick_bytes_downloaded_total", "Total listing bytes downloaded", m.BytesDownloaded.Load()},
		{"wishpick_relay_requests_total", "Total image relay requests", m.RelayRequests.Load()},
		{"wishpick_relay_rejected_total", "Total image relay requests rejected by host policy", m.RelayRejected.Load()},
		{"wishpick_relay_failed_total", "Total image relay upstream failures", m.RelayFailed.Load()},
		{"wishpick_relay_bytes_total", "Total image bytes relayed", m.RelayBytes.Load()},
	}

	for _, metric := range metrics {
		fmt.Fprintf(w, "# HELP %s %s\n", metric.name, metric.help)
		fmt.Fprintf(w, "# TYPE %s counter\n", metric.name)
		fmt.Fprintf(w, "%s %d\n", metric.name, metric.value)
	}
}

// Snapshot returns all metrics as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"samples_total":    m.SamplesTotal.Load(),
		"samples_failed":   m.SamplesFailed.Load(),
		"pages_fetched":    m.PagesFetched.Load(),
		"pages_failed":     m.PagesFailed.Load(),
		"items_extracted":  m.ItemsExtracted.Load(),
		"items_returned":   m.ItemsReturned.Load(),
		"empty_wishlists":  m.EmptyWishlists.Load(),
		"bytes_downloaded": m.BytesDownloaded.Load(),
		"relay_requests":   m.RelayRequests.Load(),
		"relay_rejected":   m.RelayRejected.Load(),
		"relay_failed":     m.RelayFailed.Load(),
		"relay_bytes":      m.RelayBytes.Load(),
	}
}
