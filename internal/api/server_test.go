package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/wishpick/internal/config"
	"github.com/IshaanNene/wishpick/internal/observability"
	"github.com/IshaanNene/wishpick/internal/relay"
	"github.com/IshaanNene/wishpick/internal/sampler"
	"github.com/IshaanNene/wishpick/internal/types"
	"github.com/IshaanNene/wishpick/internal/web"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

type fakeDrawer[T any] struct {
	items []T
	err   error
	calls atomic.Int32
	last  sampler.Request
}

func (d *fakeDrawer[T]) Draw(_ context.Context, req sampler.Request) ([]T, error) {
	d.calls.Add(1)
	d.last = req
	return d.items, d.err
}

func newTestServer(t *testing.T, deps Deps) http.Handler {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Metrics.Enabled = true
	return NewServer(cfg, deps, testLogger).Handler()
}

func do(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestMoviesMissingUserID(t *testing.T) {
	movies := &fakeDrawer[types.Movie]{}
	h := newTestServer(t, Deps{Movies: movies})

	for _, target := range []string{"/api/movies", "/api/movies?userId=", "/api/movies?userId=%20%20", "/api/movies/feed"} {
		rec := do(t, h, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, msgMissingUserID, decodeError(t, rec).Error)
	}
	assert.Zero(t, movies.calls.Load(), "no scrape may start without a user id")
}

func TestMoviesSuccess(t *testing.T) {
	movies := &fakeDrawer[types.Movie]{items: []types.Movie{
		{ID: "1292052", Title: "肖申克的救赎", Playable: true},
	}}
	h := newTestServer(t, Deps{Movies: movies})

	rec := do(t, h, "/api/movies?userId=ahbei&type=tv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "1292052", got[0]["id"])
	assert.Equal(t, true, got[0]["playable"])
	assert.Equal(t, "", got[0]["titleAlias"])

	assert.Equal(t, sampler.Request{UserID: "ahbei", Type: "tv"}, movies.last)
}

func TestBooksIgnoreType(t *testing.T) {
	books := &fakeDrawer[types.Book]{items: []types.Book{{ID: "1", Title: "小王子"}}}
	h := newTestServer(t, Deps{Books: books})

	rec := do(t, h, "/api/books?userId=ahbei&type=tv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, sampler.Request{UserID: "ahbei"}, books.last)
}

func TestSamplingFailuresAre500(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"no items", &types.EmptyResultError{UserID: "u", Kind: types.KindMovie}, "no_items"},
		{"empty wishlist", &types.EmptyWishlistError{UserID: "u", Kind: types.KindMovie}, "empty_wishlist"},
		{"layout changed", &types.ParseError{URL: "x", Err: types.ErrTotalNotFound}, "parse_failed"},
		{"upstream", &types.FetchError{URL: "x", StatusCode: 403}, "fetch_failed"},
		{"challenge page", &types.BlockedError{URL: "https://sec.douban.com/b", Challenge: "douban"}, "blocked"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, Deps{Movies: &fakeDrawer[types.Movie]{err: tt.err}})

			rec := do(t, h, "/api/movies?userId=u")
			require.Equal(t, http.StatusInternalServerError, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, msgFetchFailed, body.Error)
			assert.Equal(t, tt.code, body.Code)
			assert.NotContains(t, rec.Body.String(), "x", "cause must not leak")
		})
	}
}

type fakeRelayer struct {
	img *relay.Image
	err error
}

func (f fakeRelayer) Relay(context.Context, string) (*relay.Image, error) { return f.img, f.err }

func TestImageRoute(t *testing.T) {
	tests := []struct {
		name   string
		relay  fakeRelayer
		status int
		body   string
	}{
		{"ok", fakeRelayer{img: &relay.Image{Data: []byte("PNGDATA"), ContentType: "image/png"}}, http.StatusOK, "PNGDATA"},
		{"forbidden", fakeRelayer{err: &types.ForbiddenOriginError{Host: "evil.com"}}, http.StatusForbidden, msgForbiddenHost},
		{"invalid", fakeRelayer{err: &types.InvalidURLError{URL: "::", Err: io.ErrUnexpectedEOF}}, http.StatusBadRequest, "Invalid image URL"},
		{"upstream", fakeRelayer{err: &types.UpstreamError{URL: "u", StatusCode: 404}}, http.StatusInternalServerError, msgImageFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, Deps{Images: tt.relay})
			rec := do(t, h, "/api/image?url=https%3A%2F%2Fimg1.doubanio.com%2Fx.jpg")
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
			if tt.status == http.StatusOK {
				assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
				assert.Equal(t, "public, max-age=31536000", rec.Header().Get("Cache-Control"))
			}
		})
	}
}

func TestImageRouteWithRealRelay(t *testing.T) {
	cfg := config.DefaultConfig().Relay
	h := newTestServer(t, Deps{Images: relay.New(&cfg, testLogger)})

	rec := do(t, h, "/api/image?url=http%3A%2F%2Fevil.com%2Fx.jpg")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(t, h, "/api/image?url=not-a-url")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFeed(t *testing.T) {
	books := &fakeDrawer[types.Book]{items: []types.Book{
		{ID: "1084336", Link: "https://book.douban.com/subject/1084336/", Title: "小王子", Author: "圣埃克苏佩里", Publisher: "人民文学出版社", Year: "2003", AddedAt: "2022-05-20"},
	}}
	h := newTestServer(t, Deps{Books: books})

	rec := do(t, h, "/api/books/feed?userId=ahbei")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/rss+xml"))

	body := rec.Body.String()
	assert.Contains(t, body, "<rss")
	assert.Contains(t, body, "小王子")
	assert.Contains(t, body, "https://book.douban.com/subject/1084336/")
	assert.Contains(t, body, "https://book.douban.com/people/ahbei/wish")
}

func TestHealthMetricsAndPage(t *testing.T) {
	m := observability.NewMetrics(testLogger)
	h := newTestServer(t, Deps{Metrics: m, Page: web.NewPage(testLogger)})

	rec := do(t, h, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = do(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "wishpick_samples_total")

	rec = do(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "doubanUserId")
}

func TestRequestIDIsPropagated(t *testing.T) {
	h := newTestServer(t, Deps{})
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}
