package sampler

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/IshaanNene/wishpick/internal/parser"
	"github.com/IshaanNene/wishpick/internal/types"
)

// Request identifies one wishlist to sample.
type Request struct {
	UserID string

	// Type narrows the movie listing (e.g. "movie", "tv"). Empty means "all".
	// Book listings ignore it.
	Type string

	// Count overrides the configured sample size when positive.
	Count int
}

// Source knows where a wishlist lives and how to read its records.
type Source[T any] interface {
	Kind() types.Kind

	// CountURL is the listing landing page carrying the total in its heading.
	CountURL(req Request) string

	// PageURL addresses the listing page starting at item offset start.
	PageURL(req Request, start int) string

	// Extract reads every record on a parsed listing page.
	Extract(page parser.Query) []T
}

// MovieSource reads "wish to watch" listings.
type MovieSource struct {
	BaseURL string
}

func (s MovieSource) Kind() types.Kind { return types.KindMovie }

func (s MovieSource) CountURL(req Request) string {
	return wishURL(s.BaseURL, req.UserID)
}

func (s MovieSource) PageURL(req Request, start int) string {
	typ := req.Type
	if typ == "" {
		typ = "all"
	}
	q := url.Values{}
	q.Set("start", fmt.Sprint(start))
	q.Set("sort", "time")
	q.Set("rating", "all")
	q.Set("mode", "grid")
	q.Set("type", typ)
	q.Set("filter", "all")
	return wishURL(s.BaseURL, req.UserID) + "?" + encodeOrdered(q, "start", "sort", "rating", "mode", "type", "filter")
}

func (s MovieSource) Extract(page parser.Query) []types.Movie {
	return parser.ExtractMovies(page)
}

// BookSource reads "wish to read" listings.
type BookSource struct {
	BaseURL string
}

func (s BookSource) Kind() types.Kind { return types.KindBook }

func (s BookSource) CountURL(req Request) string {
	return wishURL(s.BaseURL, req.UserID)
}

func (s BookSource) PageURL(req Request, start int) string {
	q := url.Values{}
	q.Set("start", fmt.Sprint(start))
	q.Set("sort", "time")
	q.Set("rating", "all")
	q.Set("filter", "all")
	q.Set("mode", "grid")
	return wishURL(s.BaseURL, req.UserID) + "?" + encodeOrdered(q, "start", "sort", "rating", "filter", "mode")
}

func (s BookSource) Extract(page parser.Query) []types.Book {
	return parser.ExtractBooks(page)
}

func wishURL(base, userID string) string {
	return strings.TrimRight(base, "/") + "/people/" + url.PathEscape(userID) + "/wish"
}

// encodeOrdered encodes q keeping the key order the listing site uses.
// url.Values.Encode would sort the keys.
func encodeOrdered(q url.Values, keys ...string) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(q.Get(k)))
	}
	return strings.Join(parts, "&")
}
