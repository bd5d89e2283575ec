// Package web serves the single-page picker UI.
package web

import (
	"log/slog"
	"net/http"
)

// Page serves the picker page. It talks to the JSON endpoints under /api and
// keeps the last user id and tab in the browser's localStorage.
type Page struct {
	logger *slog.Logger
}

// NewPage creates the page handler.
func NewPage(logger *slog.Logger) *Page {
	return &Page{logger: logger.With("component", "web")}
}

func (p *Page) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(pageHTML)); err != nil {
		p.logger.Debug("write page", "error", err)
	}
}
