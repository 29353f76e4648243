package api

import (
	"encoding/json"
	"net/http"

	"github.com/bookhaven/catalog/internal/errors"
	"github.com/bookhaven/catalog/internal/httputil"
)

// handleUsersStats proxies GET /api/usersStats, forwarding the caller's
// Authorization header verbatim; the stats upstream does its own
// verification. Upstream error messages are relayed when present.
func (s *Service) handleUsersStats(w http.ResponseWriter, r *http.Request) {
	if s.cfg.UsersStatsAPI == "" {
		httputil.WriteError(w, errors.ConfigMissing("Users API is not defined", http.StatusInternalServerError))
		return
	}

	header := http.Header{}
	if auth := r.Header.Get("Authorization"); auth != "" {
		header.Set("Authorization", auth)
	}

	resp, err := s.client.Do(r.Context(), httputil.Request{
		Method:   http.MethodGet,
		URL:      s.cfg.UsersStatsAPI,
		Upstream: "users_stats",
		Header:   header,
	})
	if err != nil {
		s.logUpstreamFailure(r, "users_stats", resp, err)
		httputil.WriteError(w, errors.Internal("Error fetching users stats"))
		return
	}
	if !resp.OK() {
		s.logUpstreamFailure(r, "users_stats", resp, nil)
		message := resp.ErrorMessage()
		if message == "" {
			message = "Failed to fetch users stats"
		}
		httputil.WriteError(w, errors.Internal(message))
		return
	}
	if !json.Valid(resp.Body) {
		s.logUpstreamFailure(r, "users_stats", resp, nil)
		httputil.WriteError(w, errors.Internal("Error fetching users stats"))
		return
	}

	httputil.WriteRaw(w, http.StatusOK, resp.Body)
}
