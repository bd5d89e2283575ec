package sampler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"sort"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IshaanNene/wishpick/internal/config"
	"github.com/IshaanNene/wishpick/internal/observability"
	"github.com/IshaanNene/wishpick/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeFetcher serves canned bodies keyed by URL.
type fakeFetcher struct {
	mu     sync.Mutex
	pages  map[string]string
	status map[string]int
	calls  []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: map[string]string{}, status: map[string]int{}}
}

func (f *fakeFetcher) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	u := req.URLString()
	f.mu.Lock()
	f.calls = append(f.calls, u)
	body, ok := f.pages[u]
	status := f.status[u]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, &types.FetchError{URL: u, Err: err}
	}
	if !ok {
		return nil, &types.FetchError{URL: u, StatusCode: http.StatusNotFound, Err: errors.New("not found")}
	}
	if status == 0 {
		status = http.StatusOK
	}
	return types.NewBrowserResponse(req, status, []byte(body), u, 0), nil
}

func (f *fakeFetcher) Close() error { return nil }
func (f *fakeFetcher) Type() string { return "fake" }

func (f *fakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func heading(total string) string {
	return fmt.Sprintf(`<html><body><h1>某人想看的影视(%s)</h1></body></html>`, total)
}

func moviePage(ids ...int) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="grid-view">`)
	for _, id := range ids {
		fmt.Fprintf(&b, `<div class="item comment-item"><ul><li class="title">`+
			`<a href="https://movie.douban.com/subject/%d/"><em>电影%d</em></a></li>`+
			`<li class="intro">2001-01-01 / 90分钟</li></ul></div>`, id, id)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func movieSampler(f *fakeFetcher, sampleSize int, opts ...Option) *Sampler[types.Movie] {
	cfg := config.DefaultConfig()
	cfg.Sampler.SampleSize = sampleSize
	opts = append([]Option{WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)
	return NewMovieSampler(f, cfg, testLogger, opts...)
}

var ahbei = Request{UserID: "ahbei"}

func countURL() string { return MovieSource{BaseURL: "https://movie.douban.com"}.CountURL(ahbei) }
func pageURL(page int) string {
	return MovieSource{BaseURL: "https://movie.douban.com"}.PageURL(ahbei, page*15)
}

func TestSampleFetchesDistinctPages(t *testing.T) {
	f := newFakeFetcher()
	f.pages[countURL()] = heading("95") // 7 pages
	for p := 0; p < 7; p++ {
		f.pages[pageURL(p)] = moviePage(p*100+1, p*100+2)
	}
	m := observability.NewMetrics(testLogger)
	s := movieSampler(f, 3, WithMetrics(m))

	items, err := s.Sample(context.Background(), ahbei)
	require.NoError(t, err)
	assert.Len(t, items, 6)

	calls := f.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, countURL(), calls[0])

	seen := map[string]bool{}
	for _, c := range calls[1:] {
		assert.False(t, seen[c], "page %s fetched twice", c)
		seen[c] = true
	}

	snap := m.Snapshot()
	assert.EqualValues(t, 1, snap["samples_total"])
	assert.EqualValues(t, 4, snap["pages_fetched"])
	assert.EqualValues(t, 6, snap["items_extracted"])
}

func TestSampleFewerPagesThanSampleSize(t *testing.T) {
	f := newFakeFetcher()
	f.pages[countURL()] = heading("10")
	f.pages[pageURL(0)] = moviePage(1, 2, 3)
	s := movieSampler(f, 3)

	items, err := s.Sample(context.Background(), ahbei)
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Len(t, f.Calls(), 2)
}

func TestDrawLength(t *testing.T) {
	f := newFakeFetcher()
	f.pages[countURL()] = heading("30")
	f.pages[pageURL(0)] = moviePage(1, 2, 3, 4)
	f.pages[pageURL(1)] = moviePage(5, 6, 7, 8)

	tests := []struct {
		name  string
		count int
		want  int
	}{
		{"default size", 0, 3},
		{"override", 5, 5},
		{"more than available", 20, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := movieSampler(f, 3)
			req := ahbei
			req.Count = tt.count
			got, err := s.Draw(context.Background(), req)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)

			ids := map[string]bool{}
			for _, m := range got {
				assert.NotEmpty(t, m.ID)
				assert.False(t, ids[m.ID], "duplicate record %s", m.ID)
				ids[m.ID] = true
			}
		})
	}
}

func TestSampleErrors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(f *fakeFetcher)
		code     string
		check    func(t *testing.T, err error)
		maxCalls int
	}{
		{
			name:  "heading without digits",
			setup: func(f *fakeFetcher) { f.pages[countURL()] = heading("登录") },
			code:  "parse_failed",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, types.ErrTotalNotFound)
			},
			maxCalls: 1,
		},
		{
			name:  "empty wishlist",
			setup: func(f *fakeFetcher) { f.pages[countURL()] = heading("0") },
			code:  "empty_wishlist",
			check: func(t *testing.T, err error) {
				var e *types.EmptyWishlistError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, types.KindMovie, e.Kind)
			},
			maxCalls: 1,
		},
		{
			name: "pages without records",
			setup: func(f *fakeFetcher) {
				f.pages[countURL()] = heading("20")
				f.pages[pageURL(0)] = moviePage()
				f.pages[pageURL(1)] = moviePage()
			},
			code: "no_items",
			check: func(t *testing.T, err error) {
				var e *types.EmptyResultError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, []int{0, 1}, e.Pages)
			},
			maxCalls: 3,
		},
		{
			name: "page fetch failure",
			setup: func(f *fakeFetcher) {
				f.pages[countURL()] = heading("3")
				f.pages[pageURL(0)] = "oops"
				f.status[pageURL(0)] = http.StatusInternalServerError
			},
			code: "fetch_failed",
			check: func(t *testing.T, err error) {
				var e *types.FetchError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, http.StatusInternalServerError, e.StatusCode)
			},
			maxCalls: 2,
		},
		{
			name: "challenge page instead of listing",
			setup: func(f *fakeFetcher) {
				f.pages[countURL()] = `<html><script>location.href="https://sec.douban.com/b?r=x"</script></html>`
			},
			code: "blocked",
			check: func(t *testing.T, err error) {
				var e *types.BlockedError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, "douban", e.Challenge)
			},
			maxCalls: 1,
		},
		{
			name:     "count page unreachable",
			setup:    func(f *fakeFetcher) {},
			code:     "fetch_failed",
			maxCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeFetcher()
			tt.setup(f)
			s := movieSampler(f, 3)

			items, err := s.Draw(context.Background(), ahbei)
			require.Error(t, err)
			assert.Nil(t, items)
			assert.Equal(t, tt.code, types.ErrorCode(err))
			assert.LessOrEqual(t, len(f.Calls()), tt.maxCalls)
			if tt.check != nil {
				tt.check(t, err)
			}
		})
	}
}

func TestSampleMissingUserID(t *testing.T) {
	f := newFakeFetcher()
	s := movieSampler(f, 3)

	_, err := s.Sample(context.Background(), Request{UserID: "   "})
	require.ErrorIs(t, err, types.ErrMissingUserID)
	assert.Equal(t, "invalid_request", types.ErrorCode(err))
	assert.Empty(t, f.Calls())
}

func TestSourceURLs(t *testing.T) {
	movies := MovieSource{BaseURL: "https://movie.douban.com/"}
	assert.Equal(t, "https://movie.douban.com/people/ahbei/wish", movies.CountURL(ahbei))
	assert.Equal(t,
		"https://movie.douban.com/people/ahbei/wish?start=30&sort=time&rating=all&mode=grid&type=all&filter=all",
		movies.PageURL(ahbei, 30))
	assert.Equal(t,
		"https://movie.douban.com/people/ahbei/wish?start=0&sort=time&rating=all&mode=grid&type=tv&filter=all",
		movies.PageURL(Request{UserID: "ahbei", Type: "tv"}, 0))

	books := BookSource{BaseURL: "https://book.douban.com"}
	assert.Equal(t, types.KindBook, books.Kind())
	assert.Equal(t,
		"https://book.douban.com/people/ahbei/wish?start=15&sort=time&rating=all&filter=all&mode=grid",
		books.PageURL(Request{UserID: "ahbei", Type: "ignored"}, 15))
}

func TestPick(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 7))
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}
	orig := append([]int(nil), items...)

	for _, n := range []int{0, 1, 3, 8, 12} {
		got := Pick(r, items, n)
		assert.Len(t, got, min(n, len(items)))
		for _, v := range got {
			assert.Contains(t, items, v)
		}
	}
	assert.Equal(t, orig, items, "Pick must not reorder its input")

	assert.Empty(t, Pick[int](nil, nil, 3))
	assert.Len(t, Pick(nil, []string{"a", "b"}, 1), 1)
}

func TestDrawPagesTerminates(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	assert.Len(t, drawPages(r, 2, 5), 2)
	assert.Empty(t, drawPages(r, 0, 3))

	got := drawPages(r, 100, 3)
	require.Len(t, got, 3)
	assert.NotEqual(t, got[0], got[1])
	assert.NotEqual(t, got[1], got[2])
	assert.NotEqual(t, got[0], got[2])
	for _, p := range got {
		assert.True(t, p >= 0 && p < 100)
	}
}

func TestDrawPagesBoundedMemory(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))

	allocs := testing.AllocsPerRun(20, func() {
		drawPages(r, math.MaxInt, 3)
	})
	assert.Less(t, allocs, 8.0, "drawing from a huge listing must not scale with its size")

	got := drawPages(r, math.MaxInt, 3)
	require.Len(t, got, 3)
	assert.Len(t, map[int]bool{got[0]: true, got[1]: true, got[2]: true}, 3)
	for _, p := range got {
		assert.GreaterOrEqual(t, p, 0)
	}

	all := drawPages(r, 5, 5)
	sort.Ints(all)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, all)
}

// Nicknames may carry digits, so the first number in the heading can be huge.
func TestSampleHeadingWithLargeNumber(t *testing.T) {
	tests := []struct {
		name     string
		heading  string
		code     string
		maxCalls int
	}{
		{"digits in nickname", "user200000000想看的影视(12)", "fetch_failed", 4},
		{"max int", "9223372036854775807想看的影视(1)", "fetch_failed", 4},
		{"beyond int range", "id99999999999999999999999999999999想看的影视(3)", "parse_failed", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeFetcher()
			f.pages[countURL()] = `<html><body><h1>` + tt.heading + `</h1></body></html>`
			s := movieSampler(f, 3)

			var (
				items []types.Movie
				err   error
			)
			require.NotPanics(t, func() {
				items, err = s.Draw(context.Background(), ahbei)
			})
			require.Error(t, err)
			assert.Nil(t, items)
			assert.Equal(t, tt.code, types.ErrorCode(err))
			assert.LessOrEqual(t, len(f.Calls()), tt.maxCalls)
		})
	}
}
