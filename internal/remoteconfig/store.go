package remoteconfig

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bookhaven/catalog/internal/errors"
	"github.com/bookhaven/catalog/internal/httputil"
)

const upstreamName = "remote_config"

// HTTPStore talks to the external configuration store's REST surface:
// GET <api> lists documents, POST <api> creates one, PUT <api>/<docId>
// replaces one.
type HTTPStore struct {
	api    string
	client *httputil.Client
}

// NewHTTPStore builds a store client for the configured API base URL.
func NewHTTPStore(api string, client *httputil.Client) *HTTPStore {
	return &HTTPStore{api: api, client: client}
}

// List fetches the full collection of configuration documents.
func (s *HTTPStore) List(ctx context.Context) ([]Document, error) {
	resp, err := s.client.Get(ctx, upstreamName, s.api)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, fmt.Errorf("failed to fetch current remote config: status %d", resp.StatusCode)
	}

	var docs []Document
	if err := resp.JSON(&docs); err != nil {
		return nil, fmt.Errorf("decode remote config list: %w", err)
	}
	return docs, nil
}

// Create persists a new document. The store assigns the docId; the created
// document is not read back.
func (s *HTTPStore) Create(ctx context.Context, doc Document) error {
	resp, err := s.client.Do(ctx, httputil.Request{
		Method:   http.MethodPost,
		URL:      s.api,
		Upstream: upstreamName,
		Body:     doc,
	})
	if err != nil {
		return err
	}
	if !resp.OK() {
		return upstreamError(resp)
	}
	return nil
}

// Update replaces the document with the given docId. When the document
// carries a revision it is sent as If-Match so the store can reject a
// concurrent modification; such a rejection surfaces as a conflict.
func (s *HTTPStore) Update(ctx context.Context, docID string, doc Document) error {
	req := httputil.Request{
		Method:   http.MethodPut,
		URL:      s.api + "/" + docID,
		Upstream: upstreamName,
		Body:     doc,
	}
	if doc.Revision != "" {
		req.Header = http.Header{"If-Match": []string{doc.Revision}}
	}

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusPreconditionFailed {
		se := errors.Conflict("Remote config was modified concurrently")
		if msg := resp.ErrorMessage(); msg != "" {
			se.Details = msg
		}
		return se
	}
	if !resp.OK() {
		return upstreamError(resp)
	}
	return nil
}

// upstreamError converts a non-2xx store reply into a ServiceError that
// keeps the upstream's status code, the one deliberate place this service
// relays upstream statuses instead of collapsing them to 500.
func upstreamError(resp *httputil.Response) error {
	se := errors.Upstream("remote config store request failed", resp.StatusCode)
	if msg := resp.ErrorMessage(); msg != "" {
		se.Details = msg
	}
	return se
}
