package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/bookhaven/catalog/internal/errors"
	"github.com/bookhaven/catalog/internal/httputil"
)

// handleListBooks proxies GET /api/books to the books API. A search term
// becomes a query parameter; an id is appended to the base URL and wins
// over search when both are present.
func (s *Service) handleListBooks(w http.ResponseWriter, r *http.Request) {
	if s.cfg.BooksAPI == "" {
		httputil.WriteError(w, errors.ConfigMissing("API is not defined", http.StatusInternalServerError))
		return
	}

	target := s.cfg.BooksAPI
	if search := r.URL.Query().Get("search"); search != "" {
		target += "?search=" + url.QueryEscape(search)
	}
	if id := r.URL.Query().Get("id"); id != "" {
		target = s.cfg.BooksAPI + id
	}

	resp, err := s.client.Get(r.Context(), "books", target)
	if err != nil || !resp.OK() || !json.Valid(resp.Body) {
		s.logUpstreamFailure(r, "books", resp, err)
		httputil.WriteError(w, errors.Internal("Error fetching books"))
		return
	}

	httputil.WriteRaw(w, http.StatusOK, resp.Body)
}

// handleDeleteBook proxies DELETE /api/books?id= with the caller's bearer
// token. Requests without a token never reach the upstream.
func (s *Service) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	if s.cfg.BooksAPI == "" {
		httputil.WriteError(w, errors.ConfigMissing("API is not defined", http.StatusInternalServerError))
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		httputil.WriteError(w, errors.New(errors.CodeValidation, "Book ID is required", http.StatusInternalServerError))
		return
	}
	token, ok := httputil.BearerToken(r)
	if !ok {
		httputil.WriteError(w, errors.New(errors.CodeValidation, "Authorization token is required", http.StatusInternalServerError))
		return
	}

	resp, err := s.client.Do(r.Context(), httputil.Request{
		Method:   http.MethodDelete,
		URL:      s.cfg.BooksAPI + id,
		Upstream: "books",
		Bearer:   token,
	})
	if err != nil || !resp.OK() {
		s.logUpstreamFailure(r, "books", resp, err)
		httputil.WriteError(w, errors.Internal("Error deleting book"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"message": "Book deleted successfully"})
}

// handleUpdateBook proxies PUT /api/books?id= with the caller's bearer
// token and body.
func (s *Service) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	if s.cfg.BooksAPI == "" {
		httputil.WriteError(w, errors.ConfigMissing("API is not defined", http.StatusInternalServerError))
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		httputil.WriteError(w, errors.New(errors.CodeValidation, "Book ID is required", http.StatusInternalServerError))
		return
	}
	token, ok := httputil.BearerToken(r)
	if !ok {
		httputil.WriteError(w, errors.New(errors.CodeValidation, "Authorization token is required", http.StatusInternalServerError))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.WriteError(w, errors.Internal("Error updating book"))
		return
	}

	resp, err := s.client.Do(r.Context(), httputil.Request{
		Method:   http.MethodPut,
		URL:      s.cfg.BooksAPI + id,
		Upstream: "books",
		RawBody:  body,
		Bearer:   token,
	})
	if err != nil || !resp.OK() {
		s.logUpstreamFailure(r, "books", resp, err)
		httputil.WriteError(w, errors.Internal("Error updating book"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"message": "Book updated successfully"})
}

// copyBookRequest is the payload for POST /api/books, which asks the
// collections API to copy a book document between collections.
type copyBookRequest struct {
	SourceCollection      string `json:"sourceCollection"`
	DestinationCollection string `json:"destinationCollection"`
	DocumentID            string `json:"documentId"`
}

// handleCopyBook proxies POST /api/books to the collections API's
// copyDocument operation.
func (s *Service) handleCopyBook(w http.ResponseWriter, r *http.Request) {
	var payload copyBookRequest
	if err := httputil.DecodeJSON(r, &payload); err != nil {
		httputil.WriteError(w, errors.Internal("Error copying book"))
		return
	}

	if s.cfg.CollectionsAPI == "" {
		httputil.WriteError(w, errors.ConfigMissing("API is not defined", http.StatusInternalServerError))
		return
	}
	if payload.SourceCollection == "" || payload.DestinationCollection == "" || payload.DocumentID == "" {
		httputil.WriteError(w, errors.New(errors.CodeValidation, "Missing required fields", http.StatusInternalServerError))
		return
	}

	resp, err := s.client.Do(r.Context(), httputil.Request{
		Method:   http.MethodPost,
		URL:      s.cfg.CollectionsAPI + "/copyDocument",
		Upstream: "collections",
		Body:     payload,
	})
	if err != nil || !resp.OK() {
		s.logUpstreamFailure(r, "collections", resp, err)
		httputil.WriteError(w, errors.Internal("Error copying book"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"message": "Book copied successfully"})
}
