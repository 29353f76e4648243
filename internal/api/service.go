// Package api exposes the catalog's HTTP surface: the /api proxy routes,
// the remote configuration endpoints and the standard health/info/metrics
// routes.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/bookhaven/catalog/internal/config"
	"github.com/bookhaven/catalog/internal/httputil"
	"github.com/bookhaven/catalog/internal/logging"
	"github.com/bookhaven/catalog/internal/metrics"
	"github.com/bookhaven/catalog/internal/middleware"
	"github.com/bookhaven/catalog/internal/remoteconfig"
	"github.com/bookhaven/catalog/internal/vision"
)

const (
	ServiceName = "catalog"
	Version     = "1.0.0"
)

// Service bundles the proxy handlers and their collaborators. Everything it
// needs is injected here by the process entry point; there is no package
// level state.
type Service struct {
	cfg    *config.Config
	log    *logging.Logger
	client *httputil.Client

	vision     *vision.Client
	reconciler *remoteconfig.Reconciler

	router    *mux.Router
	startTime time.Time
}

// New wires a Service from configuration. Upstream URLs may be missing;
// the affected routes answer with their documented configuration error.
func New(cfg *config.Config, log *logging.Logger) *Service {
	client := httputil.NewClient(cfg.UpstreamTimeout)

	s := &Service{
		cfg:       cfg,
		log:       log,
		client:    client,
		startTime: time.Now(),
	}

	if cfg.VisionAPIURL != "" && cfg.VisionAPIKey != "" {
		s.vision = vision.New(cfg.VisionAPIURL, cfg.VisionAPIKey, client)
	}
	if cfg.RemoteConfigAPI != "" {
		store := remoteconfig.NewHTTPStore(cfg.RemoteConfigAPI, client)
		s.reconciler = remoteconfig.NewReconciler(store, log)
	}

	s.router = s.buildRouter()
	return s
}

// Router returns the fully wired HTTP handler.
func (s *Service) Router() *mux.Router {
	return s.router
}

func (s *Service) buildRouter() *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.Recover(s.log))
	r.Use(middleware.NewCORS(s.cfg.AllowedOrigins).Handler)
	r.Use(middleware.Logging(s.log))
	r.Use(middleware.Metrics())

	r.HandleFunc("/api/books", s.handleListBooks).Methods(http.MethodGet)
	r.HandleFunc("/api/books", s.handleDeleteBook).Methods(http.MethodDelete)
	r.HandleFunc("/api/books", s.handleUpdateBook).Methods(http.MethodPut)
	r.HandleFunc("/api/books", s.handleCopyBook).Methods(http.MethodPost)

	r.HandleFunc("/api/authors", s.handleListAuthors).Methods(http.MethodGet)
	r.HandleFunc("/api/authors", s.handleAddAuthor).Methods(http.MethodPost)
	r.HandleFunc("/api/authors", s.handleDeleteAuthor).Methods(http.MethodDelete)

	r.HandleFunc("/api/add", s.handleAddBook).Methods(http.MethodPost)
	r.HandleFunc("/api/collections", s.handleListCollections).Methods(http.MethodGet)
	r.HandleFunc("/api/newBooks", s.handleNewBooks).Methods(http.MethodGet)
	r.HandleFunc("/api/usersStats", s.handleUsersStats).Methods(http.MethodGet)

	r.HandleFunc("/api/remote_config", s.handleGetRemoteConfig).Methods(http.MethodGet)
	r.HandleFunc("/api/remote_config", s.handlePutRemoteConfig).Methods(http.MethodPut)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/info", s.handleInfo).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return r
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// InfoResponse is the /info payload.
type InfoResponse struct {
	Service   string         `json:"service"`
	Version   string         `json:"version"`
	Uptime    string         `json:"uptime"`
	Upstreams map[string]any `json:"upstreams"`
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	checks := map[string]string{}
	for name, url := range s.upstreams() {
		if url == "" {
			checks[name] = "not_configured"
			status = "degraded"
		} else {
			checks[name] = "configured"
		}
	}

	httputil.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    status,
		Service:   ServiceName,
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
		Checks:    checks,
	})
}

func (s *Service) handleInfo(w http.ResponseWriter, r *http.Request) {
	upstreams := map[string]any{}
	for name, url := range s.upstreams() {
		upstreams[name] = url != ""
	}

	httputil.WriteJSON(w, http.StatusOK, InfoResponse{
		Service:   ServiceName,
		Version:   Version,
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Upstreams: upstreams,
	})
}

// logUpstreamFailure records the upstream status and body server-side; the
// client only ever sees the generic route error.
func (s *Service) logUpstreamFailure(r *http.Request, upstream string, resp *httputil.Response, err error) {
	entry := s.log.WithContext(r.Context()).WithField("upstream", upstream)
	if err != nil {
		entry.WithError(err).Error("upstream request failed")
		return
	}
	body := resp.Body
	if len(body) > 512 {
		body = body[:512]
	}
	entry.WithField("status", resp.StatusCode).
		WithField("body", string(body)).
		Error("upstream returned non-success status")
}

func (s *Service) upstreams() map[string]string {
	return map[string]string{
		"books":         s.cfg.BooksAPI,
		"authors":       s.cfg.AuthorAPI,
		"collections":   s.cfg.CollectionsAPI,
		"new_books":     s.cfg.NewBooksAPI,
		"remote_config": s.cfg.RemoteConfigAPI,
		"users_stats":   s.cfg.UsersStatsAPI,
		"vision":        s.cfg.VisionAPIURL,
	}
}
