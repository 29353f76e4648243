// Package httputil provides JSON request/response helpers and the outbound
// client used by the proxy handlers.
package httputil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bookhaven/catalog/internal/errors"
)

const maxBodyBytes = 8 << 20

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteRaw relays an already-encoded JSON payload.
func WriteRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// WriteError writes err as {"error": message, "details": ...} using the
// status carried by the error, defaulting to 500.
func WriteError(w http.ResponseWriter, err error) {
	body := map[string]any{}
	status := errors.Status(err)

	if se := errors.AsService(err); se != nil {
		body["error"] = se.Message
		if se.Details != nil {
			body["details"] = se.Details
		}
	} else {
		body["error"] = "Internal Server Error"
	}

	WriteJSON(w, status, body)
}

// DecodeJSON reads the request body into v, rejecting oversized payloads.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("empty request body")
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return fmt.Errorf("request body too large")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// BearerToken extracts the token from an "Authorization: Bearer <t>" header.
// The token is treated as opaque; verification belongs to the upstream.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
