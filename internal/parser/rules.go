package parser

import (
	"regexp"
	"strings"
)

// Extraction rules over free-form listing text. Each rule is a pure function
// that returns the matched value and whether anything matched.

var (
	digitsRe    = regexp.MustCompile(`\d+`)
	publisherRe = regexp.MustCompile(`(?i)[^/]+(出版社|出版集团|印书馆|Press|Publishers)[^/]*`)
	yearRe      = regexp.MustCompile(`(19|20)\d{2}`)
	durationRe  = regexp.MustCompile(`\d+分钟`)
	ratingRe    = regexp.MustCompile(`^rating(\d)-t$`)
)

// FirstDigits returns the first run of ASCII digits in s.
func FirstDigits(s string) (string, bool) {
	m := digitsRe.FindString(s)
	return m, m != ""
}

// Publisher returns the first "/"-delimited segment naming a publishing house.
func Publisher(intro string) (string, bool) {
	m := strings.TrimSpace(publisherRe.FindString(intro))
	return m, m != ""
}

// Author returns the text in front of the publisher segment.
// Without a publisher there is no reliable author boundary, so nothing is returned.
func Author(intro string) (string, bool) {
	publisher, ok := Publisher(intro)
	if !ok {
		return "", false
	}
	before, _, _ := strings.Cut(intro, publisher)
	before = strings.TrimSpace(before)
	before = strings.TrimSpace(strings.TrimSuffix(before, "/"))
	return before, before != ""
}

// Year returns the first four-digit year in the 1900s or 2000s.
func Year(intro string) (string, bool) {
	m := yearRe.FindString(intro)
	return m, m != ""
}

// Duration returns the first "<n>分钟" runtime, unit included.
func Duration(intro string) (string, bool) {
	m := durationRe.FindString(intro)
	return m, m != ""
}

// FirstToken returns the first whitespace-delimited token of s.
func FirstToken(s string) (string, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "", false
	}
	return fields[0], true
}

// AliasTitle normalizes the trailing alternate title of a movie link ("/ Alias").
func AliasTitle(s string) (string, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, "/"))
	return s, s != ""
}

// Rating turns a star badge class such as "rating4-t" into "4".
func Rating(classes []string) (string, bool) {
	for _, c := range classes {
		if m := ratingRe.FindStringSubmatch(c); m != nil {
			return m[1], true
		}
	}
	return "", false
}
