package types

import (
	"fmt"
	"net/http"
	"net/url"
)

// Request represents a single page fetch.
type Request struct {
	// URL is the target URL to fetch.
	URL *url.URL

	// Method is the HTTP method. Defaults to GET.
	Method string

	// Headers are extra HTTP headers sent on top of the fetcher identity.
	Headers http.Header

	// Tag categorizes this request ("count" or "page").
	Tag string

	// Page is the zero-based listing page index this request targets.
	Page int
}

// NewRequest creates a new GET Request.
func NewRequest(rawURL string) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	return &Request{
		URL:     u,
		Method:  http.MethodGet,
		Headers: make(http.Header),
	}, nil
}

// URLString returns the string representation of the request URL.
func (r *Request) URLString() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.String()
}
