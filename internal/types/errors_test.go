package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", &ValidationError{Param: "userId", Err: ErrMissingUserID}, "invalid_request"},
		{"empty wishlist", &EmptyWishlistError{UserID: "u", Kind: KindMovie}, "empty_wishlist"},
		{"no items", &EmptyResultError{UserID: "u", Kind: KindBook, Pages: []int{0}}, "no_items"},
		{"total missing", &ParseError{URL: "x", Selector: "//h1", Err: ErrTotalNotFound}, "parse_failed"},
		{"fetch", &FetchError{URL: "x", StatusCode: 404, Err: errors.New("HTTP 404")}, "fetch_failed"},
		{"wrapped fetch", fmt.Errorf("page 2: %w", &FetchError{URL: "x", Err: errors.New("reset")}), "fetch_failed"},
		{"blocked", fmt.Errorf("count: %w", &BlockedError{URL: "https://sec.douban.com/b", Challenge: "douban"}), "blocked"},
		{"other", errors.New("boom"), "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.want {
				t.Errorf("ErrorCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRelayErrorsUnwrap(t *testing.T) {
	if !errors.Is(&ForbiddenOriginError{Host: "evil.com"}, ErrForbiddenHost) {
		t.Error("ForbiddenOriginError should unwrap to ErrForbiddenHost")
	}
	if !errors.Is(&InvalidURLError{URL: "::"}, ErrInvalidURL) {
		t.Error("InvalidURLError should unwrap to ErrInvalidURL")
	}
	up := &UpstreamError{URL: "https://img1.doubanio.com/x.jpg", StatusCode: 404}
	if up.Error() != "upstream https://img1.doubanio.com/x.jpg answered 404" {
		t.Errorf("unexpected message %q", up.Error())
	}
}
