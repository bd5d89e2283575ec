package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/IshaanNene/wishpick/internal/sampler"
	"github.com/IshaanNene/wishpick/internal/types"
)

// Response messages. Causes are logged, never returned.
const (
	msgMissingUserID = "User ID is required"
	msgFetchFailed   = "Failed to fetch Douban wishlist"
	msgForbiddenHost = "Invalid image domain. Only doubanio.com and its subdomains are allowed."
	msgImageFailed   = "Failed to fetch image"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func sampleRequest(r *http.Request, kind types.Kind) sampler.Request {
	q := r.URL.Query()
	req := sampler.Request{UserID: strings.TrimSpace(q.Get("userId"))}
	if kind == types.KindMovie {
		req.Type = strings.TrimSpace(q.Get("type"))
	}
	return req
}

func listingHandler[T any](s *Server, d Drawer[T], kind types.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := sampleRequest(r, kind)
		if req.UserID == "" {
			s.jsonResponse(w, http.StatusBadRequest, errorBody{Error: msgMissingUserID})
			return
		}

		items, err := d.Draw(r.Context(), req)
		if err != nil {
			s.sampleError(w, r, kind, err)
			return
		}
		if items == nil {
			items = []T{}
		}
		s.jsonResponse(w, http.StatusOK, items)
	}
}

func (s *Server) sampleError(w http.ResponseWriter, r *http.Request, kind types.Kind, err error) {
	var valErr *types.ValidationError
	if errors.As(err, &valErr) {
		s.jsonResponse(w, http.StatusBadRequest, errorBody{Error: msgMissingUserID})
		return
	}

	code := types.ErrorCode(err)
	s.logger.Error("sampling failed",
		"kind", kind,
		"request_id", requestID(r.Context()),
		"code", code,
		"error", err,
	)
	s.jsonResponse(w, http.StatusInternalServerError, errorBody{Error: msgFetchFailed, Code: code})
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	img, err := s.deps.Images.Relay(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		var invalid *types.InvalidURLError
		switch {
		case errors.As(err, &invalid):
			http.Error(w, "Invalid image URL: "+invalid.Err.Error(), http.StatusBadRequest)
		case errors.Is(err, types.ErrForbiddenHost):
			http.Error(w, msgForbiddenHost, http.StatusForbidden)
		default:
			s.logger.Error("image relay failed", "request_id", requestID(r.Context()), "error", err)
			http.Error(w, msgImageFailed, http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Cache-Control", s.cfg.Relay.CacheControl)
	if _, err := w.Write(img.Data); err != nil {
		s.logger.Debug("write image", "error", err)
	}
}
