package parser

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"

	"github.com/IshaanNene/wishpick/internal/types"
)

// TotalXPath selects the listing heading, e.g. "xxx想看的影视(128)".
const TotalXPath = "//h1"

// TotalCount reads the wishlist size from the page heading.
// The first group of digits in the heading text is taken as the count.
func TotalCount(body []byte, pageURL string) (int, error) {
	doc, err := htmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return 0, &types.ParseError{URL: pageURL, Selector: TotalXPath, Err: err}
	}

	nodes, err := htmlquery.QueryAll(doc, TotalXPath)
	if err != nil {
		return 0, &types.ParseError{URL: pageURL, Selector: TotalXPath, Err: err}
	}

	var heading strings.Builder
	for _, n := range nodes {
		heading.WriteString(htmlquery.InnerText(n))
	}

	digits, ok := FirstDigits(heading.String())
	if !ok {
		return 0, &types.ParseError{URL: pageURL, Selector: TotalXPath, Err: types.ErrTotalNotFound}
	}

	total, err := strconv.Atoi(digits)
	if err != nil {
		return 0, &types.ParseError{URL: pageURL, Selector: TotalXPath, Err: err}
	}
	return total, nil
}
