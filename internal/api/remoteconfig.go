package api

import (
	"encoding/json"
	"net/http"

	"github.com/bookhaven/catalog/internal/errors"
	"github.com/bookhaven/catalog/internal/httputil"
	"github.com/bookhaven/catalog/internal/remoteconfig"
)

// handleGetRemoteConfig proxies GET /api/remote_config, relaying the full
// document list.
func (s *Service) handleGetRemoteConfig(w http.ResponseWriter, r *http.Request) {
	if s.cfg.RemoteConfigAPI == "" {
		httputil.WriteError(w, errors.ConfigMissing("API is not defined", http.StatusBadRequest))
		return
	}

	resp, err := s.client.Get(r.Context(), "remote_config", s.cfg.RemoteConfigAPI)
	if err != nil || !resp.OK() || !json.Valid(resp.Body) {
		s.logUpstreamFailure(r, "remote_config", resp, err)
		httputil.WriteError(w, errors.Internal("Error fetching remote config"))
		return
	}

	httputil.WriteRaw(w, http.StatusOK, resp.Body)
}

// handlePutRemoteConfig runs the reconciler: it resolves the target
// document from the request's selector and updates it, or creates a new
// version document when the version path finds no match.
//
// Note this mutating route enforces no bearer token, unlike its sibling
// book and author routes. That asymmetry is inherited from the deployed
// contract and is tracked as an open security question rather than fixed
// here; see DESIGN.md.
func (s *Service) handlePutRemoteConfig(w http.ResponseWriter, r *http.Request) {
	if s.reconciler == nil {
		httputil.WriteError(w, errors.ConfigMissing("API is not defined", http.StatusBadRequest))
		return
	}

	var body map[string]any
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.WriteError(w, errors.Internal("Error updating remote config").WithDetails(err.Error()))
		return
	}

	result, err := s.reconciler.Reconcile(r.Context(), remoteconfig.ParseRequest(body))
	if err != nil {
		s.log.WithContext(r.Context()).WithError(err).Warn("remote config reconcile failed")
		httputil.WriteError(w, err)
		return
	}

	response := result.Document.Fields()
	if result.Created {
		response["message"] = "Minimum version config created successfully"
		httputil.WriteJSON(w, http.StatusCreated, response)
		return
	}
	response["message"] = "Remote config updated successfully"
	httputil.WriteJSON(w, http.StatusOK, response)
}
