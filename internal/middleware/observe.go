package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/bookhaven/catalog/internal/httputil"
	"github.com/bookhaven/catalog/internal/logging"
	"github.com/bookhaven/catalog/internal/metrics"
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Logging logs each request with a trace ID. The ID is taken from the
// X-Trace-ID header when the caller supplies one, generated otherwise, and
// always echoed back on the response.
func Logging(logger *logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			traceID := r.Header.Get("X-Trace-ID")
			if traceID == "" {
				traceID = logging.NewTraceID()
			}
			ctx := logging.WithTraceID(r.Context(), traceID)
			r = r.WithContext(ctx)
			w.Header().Set("X-Trace-ID", traceID)

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			logger.LogRequest(ctx, r.Method, r.URL.Path, wrapped.statusCode, time.Since(start))
		})
	}
}

// Metrics records Prometheus metrics for each request, labelled by the mux
// route template rather than the raw path.
func Metrics() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			metrics.IncInFlight()
			defer metrics.DecInFlight()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			path := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if template, err := route.GetPathTemplate(); err == nil {
					path = template
				}
			}

			metrics.ObserveHTTPRequest(r.Method, path, strconv.Itoa(wrapped.statusCode), time.Since(start))
		})
	}
}

// Recover converts a handler panic into a generic 500 so one bad request
// cannot take the process down.
func Recover(logger *logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.WithContext(r.Context()).
						WithField("panic", rec).
						WithField("path", r.URL.Path).
						Error("handler panic")
					httputil.WriteJSON(w, http.StatusInternalServerError,
						map[string]any{"error": "Internal Server Error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
