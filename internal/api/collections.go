package api

import (
	"encoding/json"
	"net/http"

	"github.com/bookhaven/catalog/internal/errors"
	"github.com/bookhaven/catalog/internal/httputil"
)

// handleListCollections proxies GET /api/collections and filters the
// reserved "users" entry out of the list before relaying it. An empty
// upstream body is treated as an empty list. This route's error body uses
// a "message" key; clients already depend on that shape.
func (s *Service) handleListCollections(w http.ResponseWriter, r *http.Request) {
	if s.cfg.CollectionsAPI == "" {
		s.collectionsError(w)
		return
	}

	resp, err := s.client.Get(r.Context(), "collections", s.cfg.CollectionsAPI)
	if err != nil {
		s.logUpstreamFailure(r, "collections", resp, err)
		s.collectionsError(w)
		return
	}

	if len(resp.Body) == 0 {
		httputil.WriteJSON(w, http.StatusOK, []string{})
		return
	}

	var data any
	if err := json.Unmarshal(resp.Body, &data); err != nil {
		s.logUpstreamFailure(r, "collections", resp, nil)
		s.collectionsError(w)
		return
	}

	if list, ok := data.([]any); ok {
		filtered := make([]any, 0, len(list))
		for _, item := range list {
			if name, ok := item.(string); ok && name == "users" {
				continue
			}
			filtered = append(filtered, item)
		}
		data = filtered
	}

	httputil.WriteJSON(w, http.StatusOK, data)
}

func (s *Service) collectionsError(w http.ResponseWriter) {
	httputil.WriteJSON(w, http.StatusInternalServerError,
		map[string]any{"message": "Internal Server Error"})
}

// handleNewBooks proxies GET /api/newBooks, the curated subset for the
// public landing carousel.
func (s *Service) handleNewBooks(w http.ResponseWriter, r *http.Request) {
	if s.cfg.NewBooksAPI == "" {
		httputil.WriteError(w, errors.Internal("Error fetching books"))
		return
	}

	resp, err := s.client.Get(r.Context(), "new_books", s.cfg.NewBooksAPI)
	if err != nil || !resp.OK() || !json.Valid(resp.Body) {
		s.logUpstreamFailure(r, "new_books", resp, err)
		httputil.WriteError(w, errors.Internal("Error fetching books"))
		return
	}

	httputil.WriteRaw(w, http.StatusOK, resp.Body)
}
