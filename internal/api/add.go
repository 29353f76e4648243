package api

import (
	"net/http"

	"github.com/bookhaven/catalog/internal/errors"
	"github.com/bookhaven/catalog/internal/httputil"
)

// handleAddBook proxies POST /api/add to the books API. An optional
// ?collection= query overrides the target collection in the payload. When
// the payload carries a coverImageUrl and Vision is configured, the cover's
// dominant color is derived and attached before forwarding; a Vision
// failure never fails the add.
func (s *Service) handleAddBook(w http.ResponseWriter, r *http.Request) {
	if s.cfg.BooksAPI == "" {
		httputil.WriteError(w, errors.ConfigMissing("API is not defined", http.StatusInternalServerError))
		return
	}
	token, ok := httputil.BearerToken(r)
	if !ok {
		httputil.WriteError(w, errors.New(errors.CodeValidation, "Authorization token is required", http.StatusInternalServerError))
		return
	}

	var book map[string]any
	if err := httputil.DecodeJSON(r, &book); err != nil {
		httputil.WriteError(w, errors.Internal("Error adding book"))
		return
	}

	if collection := r.URL.Query().Get("collection"); collection != "" {
		book["collection"] = collection
	}

	if s.vision != nil {
		if coverURL, _ := book["coverImageUrl"].(string); coverURL != "" {
			if _, present := book["dominantColor"]; !present {
				color, err := s.vision.DominantColor(r.Context(), coverURL)
				if err != nil {
					s.log.WithContext(r.Context()).WithError(err).
						Warn("dominant color analysis failed")
				} else {
					book["dominantColor"] = color
				}
			}
		}
	}

	resp, err := s.client.Do(r.Context(), httputil.Request{
		Method:   http.MethodPost,
		URL:      s.cfg.BooksAPI,
		Upstream: "books",
		Body:     book,
		Bearer:   token,
	})
	if err != nil || !resp.OK() {
		s.logUpstreamFailure(r, "books", resp, err)
		httputil.WriteError(w, errors.Internal("Error adding book"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"message": "Book added successfully"})
}
