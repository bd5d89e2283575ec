package parser

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Query is a read-only view over a set of matched HTML nodes.
// Lookups that may miss report it explicitly instead of assuming presence.
type Query interface {
	// Find returns the descendants matching a CSS selector. The result may be empty.
	Find(selector string) Query

	// Each calls fn for every matched node, in document order.
	Each(fn func(Query))

	// Len is the number of matched nodes.
	Len() int

	// Text returns the combined text of the matched nodes and their descendants.
	Text() string

	// OwnText returns only the text nodes that are direct children of the first match.
	OwnText() string

	// Attr returns an attribute of the first match.
	Attr(name string) (string, bool)

	// HasClass reports whether any matched node carries the class.
	HasClass(class string) bool

	// Classes returns the class list of the first match.
	Classes() []string
}

// NewQuery parses an HTML document into a Query rooted at the document.
func NewQuery(body []byte) (Query, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return FromSelection(doc.Selection), nil
}

// FromSelection wraps an existing goquery selection.
func FromSelection(sel *goquery.Selection) Query {
	return selectionQuery{sel: sel}
}

type selectionQuery struct {
	sel *goquery.Selection
}

func (q selectionQuery) Find(selector string) Query {
	return selectionQuery{sel: q.sel.Find(selector)}
}

func (q selectionQuery) Each(fn func(Query)) {
	q.sel.Each(func(_ int, s *goquery.Selection) {
		fn(selectionQuery{sel: s})
	})
}

func (q selectionQuery) Len() int {
	return q.sel.Length()
}

func (q selectionQuery) Text() string {
	return q.sel.Text()
}

func (q selectionQuery) OwnText() string {
	if q.sel.Length() == 0 {
		return ""
	}
	var b strings.Builder
	for c := q.sel.Get(0).FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func (q selectionQuery) Attr(name string) (string, bool) {
	if q.sel.Length() == 0 {
		return "", false
	}
	return q.sel.First().Attr(name)
}

func (q selectionQuery) HasClass(class string) bool {
	return q.sel.HasClass(class)
}

func (q selectionQuery) Classes() []string {
	class, ok := q.Attr("class")
	if !ok {
		return nil
	}
	return strings.Fields(class)
}
