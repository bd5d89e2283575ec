package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrMissingUserID  = errors.New("user ID is required")
	ErrEmptyResponse  = errors.New("empty response body")
	ErrInvalidURL     = errors.New("invalid URL")
	ErrNoFetcher      = errors.New("no fetcher available for request")
	ErrTotalNotFound  = errors.New("could not find total item count")
	ErrNoItems        = errors.New("no items found or page structure changed")
	ErrEmptyWishlist  = errors.New("wishlist is empty")
	ErrForbiddenHost  = errors.New("image host is not allowed")
	ErrBodyTooLarge   = errors.New("response body exceeds size limit")
	ErrNotImage       = errors.New("upstream did not return an image")
	ErrBlocked        = errors.New("request blocked by an anti-bot challenge")
)

// ValidationError reports a missing or malformed request parameter.
type ValidationError struct {
	Param string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %v", e.Param, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// FetchError wraps errors that occur during fetching.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError wraps errors that occur during parsing.
type ParseError struct {
	URL      string
	Selector string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for %s (selector=%q): %v", e.URL, e.Selector, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// BlockedError means the site answered with an anti-bot challenge
// instead of the listing.
type BlockedError struct {
	URL       string
	Challenge string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("blocked by %s challenge at %s", e.Challenge, e.URL)
}

func (e *BlockedError) Unwrap() error { return ErrBlocked }

// EmptyWishlistError means the listing header reported zero items.
type EmptyWishlistError struct {
	UserID string
	Kind   Kind
}

func (e *EmptyWishlistError) Error() string {
	return fmt.Sprintf("%s wishlist of %q is empty", e.Kind, e.UserID)
}

func (e *EmptyWishlistError) Unwrap() error { return ErrEmptyWishlist }

// EmptyResultError means every sampled page yielded zero records.
type EmptyResultError struct {
	UserID string
	Kind   Kind
	Pages  []int
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("no %s records extracted for %q from pages %v", e.Kind, e.UserID, e.Pages)
}

func (e *EmptyResultError) Unwrap() error { return ErrNoItems }

// InvalidURLError is returned by the image relay for malformed URLs.
type InvalidURLError struct {
	URL string
	Err error
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid image URL %q: %v", e.URL, e.Err)
}

func (e *InvalidURLError) Unwrap() error { return ErrInvalidURL }

// ForbiddenOriginError is returned by the image relay for hosts outside the allow-list.
type ForbiddenOriginError struct {
	Host string
}

func (e *ForbiddenOriginError) Error() string {
	return fmt.Sprintf("image host %q is not allowed", e.Host)
}

func (e *ForbiddenOriginError) Unwrap() error { return ErrForbiddenHost }

// UpstreamError wraps a failed relay fetch.
type UpstreamError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 && e.Err != nil {
		return fmt.Sprintf("upstream %s answered %d: %v", e.URL, e.StatusCode, e.Err)
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("upstream %s answered %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("upstream %s: %v", e.URL, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ErrorCode maps a sampling failure to a short machine-readable code.
func ErrorCode(err error) string {
	var (
		valErr   *ValidationError
		fetchErr *FetchError
		parseErr *ParseError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &valErr):
		return "invalid_request"
	case errors.Is(err, ErrBlocked):
		return "blocked"
	case errors.Is(err, ErrEmptyWishlist):
		return "empty_wishlist"
	case errors.Is(err, ErrNoItems):
		return "no_items"
	case errors.As(err, &parseErr):
		return "parse_failed"
	case errors.As(err, &fetchErr):
		return "fetch_failed"
	default:
		return "internal"
	}
}
