package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/feeds"

	"github.com/IshaanNene/wishpick/internal/types"
)

func feedHandler[T any](s *Server, d Drawer[T], kind types.Kind, toItem func(T) *feeds.Item) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := sampleRequest(r, kind)
		if req.UserID == "" {
			s.jsonResponse(w, http.StatusBadRequest, errorBody{Error: msgMissingUserID})
			return
		}

		records, err := d.Draw(r.Context(), req)
		if err != nil {
			s.sampleError(w, r, kind, err)
			return
		}

		now := time.Now()
		feed := &feeds.Feed{
			Title:       feedTitle(kind, req.UserID),
			Description: "Random picks from a Douban wishlist",
			Link:        &feeds.Link{Href: profileURL(s, kind, req.UserID), Rel: "alternate", Type: "text/html"},
			Id:          fmt.Sprintf("tag:wishpick,%d:%s:%s", now.Year(), kind, req.UserID),
			Created:     now,
			Updated:     now,
		}
		for _, rec := range records {
			feed.Items = append(feed.Items, toItem(rec))
		}

		rss, err := feed.ToRss()
		if err != nil {
			s.logger.Error("render feed", "kind", kind, "error", err)
			s.jsonResponse(w, http.StatusInternalServerError, errorBody{Error: msgFetchFailed, Code: "internal"})
			return
		}

		w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write([]byte(rss))
	}
}

func feedTitle(kind types.Kind, userID string) string {
	if kind == types.KindBook {
		return userID + " 想读的书 · 随机推荐"
	}
	return userID + " 想看的影视 · 随机推荐"
}

func profileURL(s *Server, kind types.Kind, userID string) string {
	base := s.cfg.Sampler.MovieBaseURL
	if kind == types.KindBook {
		base = s.cfg.Sampler.BookBaseURL
	}
	return strings.TrimRight(base, "/") + "/people/" + userID + "/wish"
}

func movieFeedItem(m types.Movie) *feeds.Item {
	var parts []string
	for _, p := range []string{m.TitleAlias, m.Year, m.Duration} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if m.Rating != "" {
		parts = append(parts, m.Rating+"星")
	}
	return &feeds.Item{
		Title:       m.Title,
		Link:        &feeds.Link{Href: m.Link, Rel: "alternate", Type: "text/html"},
		Id:          m.Link,
		Description: strings.Join(parts, " / "),
		Created:     addedAt(m.AddedAt),
	}
}

func bookFeedItem(b types.Book) *feeds.Item {
	var parts []string
	for _, p := range []string{b.Publisher, b.Year} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	item := &feeds.Item{
		Title:       b.Title,
		Link:        &feeds.Link{Href: b.Link, Rel: "alternate", Type: "text/html"},
		Id:          b.Link,
		Description: strings.Join(parts, " / "),
		Created:     addedAt(b.AddedAt),
	}
	if b.Author != "" {
		item.Author = &feeds.Author{Name: b.Author}
	}
	return item
}

func addedAt(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
