package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/bookhaven/catalog/internal/errors"
	"github.com/bookhaven/catalog/internal/httputil"
)

// The author API is a base URL the route names are appended to without a
// separator, matching how deployments configure it (trailing slash
// included in the value).

// handleListAuthors proxies GET /api/authors.
func (s *Service) handleListAuthors(w http.ResponseWriter, r *http.Request) {
	if s.cfg.AuthorAPI == "" {
		httputil.WriteError(w, errors.ConfigMissing("API is not defined", http.StatusInternalServerError))
		return
	}

	resp, err := s.client.Get(r.Context(), "authors", s.cfg.AuthorAPI+"authors")
	if err != nil || !resp.OK() || !json.Valid(resp.Body) {
		s.logUpstreamFailure(r, "authors", resp, err)
		httputil.WriteError(w, errors.Internal("Error fetching authors"))
		return
	}

	httputil.WriteRaw(w, http.StatusOK, resp.Body)
}

// handleDeleteAuthor proxies DELETE /api/authors?id=. Unlike the book
// routes this one answers 400 for missing configuration or id, and sends
// no bearer token; that is the upstream's contract.
func (s *Service) handleDeleteAuthor(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if s.cfg.AuthorAPI == "" || id == "" {
		httputil.WriteError(w, errors.BadRequest("API or author ID is not defined"))
		return
	}

	resp, err := s.client.Do(r.Context(), httputil.Request{
		Method:   http.MethodDelete,
		URL:      s.cfg.AuthorAPI + "authors/" + id,
		Upstream: "authors",
	})
	if err != nil || !resp.OK() {
		s.logUpstreamFailure(r, "authors", resp, err)
		httputil.WriteError(w, errors.Internal("Error deleting author"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"message": "Author deleted successfully"})
}

// handleAddAuthor proxies POST /api/authors with the caller's bearer token
// and relays the created author back.
func (s *Service) handleAddAuthor(w http.ResponseWriter, r *http.Request) {
	if s.cfg.AuthorAPI == "" {
		httputil.WriteError(w, errors.BadRequest("API is not defined"))
		return
	}
	token, ok := httputil.BearerToken(r)
	if !ok {
		httputil.WriteError(w, errors.Unauthorized("Authorization token is missing"))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.WriteError(w, errors.Internal("Error adding author"))
		return
	}

	resp, err := s.client.Do(r.Context(), httputil.Request{
		Method:   http.MethodPost,
		URL:      s.cfg.AuthorAPI + "authors",
		Upstream: "authors",
		RawBody:  body,
		Bearer:   token,
	})
	if err != nil || !resp.OK() || !json.Valid(resp.Body) {
		s.logUpstreamFailure(r, "authors", resp, err)
		httputil.WriteError(w, errors.Internal("Error adding author"))
		return
	}

	httputil.WriteRaw(w, http.StatusCreated, resp.Body)
}
