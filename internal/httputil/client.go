package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bookhaven/catalog/internal/metrics"
)

// Client is the outbound HTTP client for upstream APIs. Calls are made
// exactly once: the proxy surface deliberately carries no retry or
// circuit-breaking behavior.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a Client with the given timeout (default 30s).
func NewClient(timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Request describes one outbound call. URL must be absolute; the proxy
// handlers build it by concatenation to preserve the upstream contract.
type Request struct {
	Method string
	URL    string
	// Upstream names the target API for metrics labels.
	Upstream string
	// Body, when non-nil, is marshalled as JSON.
	Body any
	// RawBody is relayed verbatim when Body is nil.
	RawBody []byte
	// Bearer, when set, is sent as "Authorization: Bearer <t>".
	Bearer string
	// Header entries are copied onto the request last.
	Header http.Header
}

// Response is the upstream reply with the body fully read.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// OK reports whether the status is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// ErrorMessage extracts an error or message field from a JSON error body,
// or "" when neither is present.
func (r *Response) ErrorMessage() string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(r.Body, &payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}

// Do executes the request and reads the full response body.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	var bodyReader io.Reader
	contentType := ""

	switch {
	case req.Body != nil:
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
		contentType = "application/json"
	case req.RawBody != nil:
		bodyReader = bytes.NewReader(req.RawBody)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Bearer)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Set(key, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if req.Upstream != "" {
			metrics.ObserveUpstream(req.Upstream, "error", time.Since(start))
		}
		return nil, fmt.Errorf("upstream request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read upstream response: %w", err)
	}

	if req.Upstream != "" {
		metrics.ObserveUpstream(req.Upstream, strconv.Itoa(resp.StatusCode), time.Since(start))
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Header:     resp.Header,
	}, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, upstream, url string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, URL: url, Upstream: upstream})
}
