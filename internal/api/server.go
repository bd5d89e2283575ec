package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/IshaanNene/wishpick/internal/config"
	"github.com/IshaanNene/wishpick/internal/observability"
	"github.com/IshaanNene/wishpick/internal/relay"
	"github.com/IshaanNene/wishpick/internal/sampler"
	"github.com/IshaanNene/wishpick/internal/types"
)

// Drawer returns a random sample of wishlist records.
type Drawer[T any] interface {
	Draw(ctx context.Context, req sampler.Request) ([]T, error)
}

// Relayer fetches an image on behalf of the browser.
type Relayer interface {
	Relay(ctx context.Context, rawURL string) (*relay.Image, error)
}

// Deps are the collaborators the server routes to.
type Deps struct {
	Movies  Drawer[types.Movie]
	Books   Drawer[types.Book]
	Images  Relayer
	Page    http.Handler
	Metrics *observability.Metrics
}

// Server exposes the sampling endpoints, the image relay and the web page.
type Server struct {
	cfg    *config.Config
	deps   Deps
	mux    *http.ServeMux
	http   *http.Server
	logger *slog.Logger
}

// NewServer creates a new API server.
func NewServer(cfg *config.Config, deps Deps, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		deps:   deps,
		mux:    http.NewServeMux(),
		logger: logger.With("component", "api_server"),
	}

	s.registerRoutes()
	s.http = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

// Handler returns the routed handler wrapped with request logging.
func (s *Server) Handler() http.Handler {
	return s.withRequestLog(s.mux)
}

// ListenAndServe serves until Shutdown is called.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.http.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("API server starting", "addr", ln.Addr().String())
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("API server shutting down")
	return s.http.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	if s.deps.Movies != nil {
		s.mux.HandleFunc("GET /api/movies", listingHandler(s, s.deps.Movies, types.KindMovie))
		s.mux.HandleFunc("GET /api/movies/feed", feedHandler(s, s.deps.Movies, types.KindMovie, movieFeedItem))
	}
	if s.deps.Books != nil {
		s.mux.HandleFunc("GET /api/books", listingHandler(s, s.deps.Books, types.KindBook))
		s.mux.HandleFunc("GET /api/books/feed", feedHandler(s, s.deps.Books, types.KindBook, bookFeedItem))
	}
	if s.deps.Images != nil {
		s.mux.HandleFunc("GET /api/image", s.handleImage)
	}
	if s.cfg.Metrics.Enabled && s.deps.Metrics != nil {
		s.mux.Handle("GET "+s.cfg.Metrics.Path, s.deps.Metrics)
	}
	if s.deps.Page != nil {
		s.mux.Handle("GET /", s.deps.Page)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": config.Version,
	})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Debug("encode response", "error", err)
	}
}
