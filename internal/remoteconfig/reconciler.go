package remoteconfig

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/bookhaven/catalog/internal/errors"
	"github.com/bookhaven/catalog/internal/logging"
	"github.com/bookhaven/catalog/internal/metrics"
)

// Store is the persistence surface for configuration documents. The HTTP
// implementation lives in store.go; tests use an in-memory fake.
type Store interface {
	List(ctx context.Context) ([]Document, error)
	Create(ctx context.Context, doc Document) error
	Update(ctx context.Context, docID string, doc Document) error
}

// Request is a parsed reconcile call: a selector plus a patch.
type Request struct {
	// DocumentID selects a document by store identifier.
	DocumentID string

	// ContentUpdateDate is required whenever DocumentID is set.
	ContentUpdateDate any

	// MinimumVersion is the version selector, taken from either the
	// minimumVersion or minimum_required_version body field.
	MinimumVersion any

	// Patch holds the remaining body fields.
	Patch map[string]any
}

// ParseRequest splits a decoded request body into selector and patch.
// The minimumVersion field wins over minimum_required_version when both
// carry a non-empty value.
func ParseRequest(body map[string]any) Request {
	req := Request{Patch: make(map[string]any)}

	for key, value := range body {
		switch key {
		case "documentId":
			req.DocumentID = stringify(value)
		case fieldContentUpdateDate:
			req.ContentUpdateDate = value
		case fieldLegacyMinVersion, fieldMinimumVersion:
			// handled below to keep precedence explicit
		default:
			req.Patch[key] = value
		}
	}

	if v, ok := body[fieldLegacyMinVersion]; ok && truthy(v) {
		req.MinimumVersion = v
	} else if v, ok := body[fieldMinimumVersion]; ok && truthy(v) {
		req.MinimumVersion = v
	}

	return req
}

// Result is the outcome of a reconcile call.
type Result struct {
	Document Document
	// Created is true when a new document was written instead of an
	// existing one being updated.
	Created bool
}

// Reconciler resolves a config document from a selector and applies a patch,
// creating the document when the version path finds nothing to update.
type Reconciler struct {
	store Store
	log   *logging.Logger
}

// NewReconciler wires a Reconciler to its store.
func NewReconciler(store Store, log *logging.Logger) *Reconciler {
	return &Reconciler{store: store, log: log}
}

// Reconcile validates the request, resolves at most one target document and
// either updates it in place or creates a new one. Two concurrent calls for
// the same document are serialized only by the store's revision check; a
// store without revisions keeps the legacy last-write-wins behavior.
func (r *Reconciler) Reconcile(ctx context.Context, req Request) (*Result, error) {
	if req.DocumentID != "" && !truthy(req.ContentUpdateDate) {
		metrics.RecordReconcile("invalid")
		return nil, errors.BadRequest("content_update_date is required")
	}
	if req.DocumentID == "" && !truthy(req.MinimumVersion) {
		metrics.RecordReconcile("invalid")
		return nil, errors.BadRequest("Either documentId or minimumVersion is required")
	}

	docs, err := r.store.List(ctx)
	if err != nil {
		metrics.RecordReconcile("error")
		return nil, errors.Internal("Error updating remote config").
			WithDetails(err.Error()).WithCause(err)
	}

	target := r.resolve(docs, req)

	if target == nil {
		if truthy(req.MinimumVersion) {
			return r.create(ctx, req)
		}
		metrics.RecordReconcile("not_found")
		return nil, errors.NotFound("No matching document found")
	}

	return r.update(ctx, *target, req)
}

// resolve walks the resolution ladder: docId match, exact version match on
// either version field, stringified version match, then any document that
// carries a minimum_required_version field at all. The last step treats any
// version-config document as "the" version document; surprising, but the
// deployed store content depends on it.
func (r *Reconciler) resolve(docs []Document, req Request) *Document {
	var target *Document

	if req.DocumentID != "" {
		for i := range docs {
			if docs[i].DocID == req.DocumentID {
				target = &docs[i]
				break
			}
		}
	} else if truthy(req.MinimumVersion) {
		for i := range docs {
			if strictEqual(docs[i].MinimumRequiredVersion, req.MinimumVersion) ||
				strictEqual(docs[i].LegacyMinimumVersion, req.MinimumVersion) {
				target = &docs[i]
				break
			}
		}
		if target == nil {
			for i := range docs {
				if docs[i].MinimumRequiredVersion != nil &&
					stringify(docs[i].MinimumRequiredVersion) == stringify(req.MinimumVersion) {
					target = &docs[i]
					break
				}
			}
		}
	}

	if target == nil && truthy(req.MinimumVersion) {
		for i := range docs {
			if docs[i].MinimumRequiredVersion != nil {
				target = &docs[i]
				break
			}
		}
	}

	return target
}

// create builds a new version document from the patch, dropping empty and
// null values, and persists it.
func (r *Reconciler) create(ctx context.Context, req Request) (*Result, error) {
	doc := Document{MinimumRequiredVersion: req.MinimumVersion}
	for key, value := range req.Patch {
		if value == nil {
			continue
		}
		if s, ok := value.(string); ok && s == "" {
			continue
		}
		doc.SetField(key, value)
	}

	if err := r.store.Create(ctx, doc); err != nil {
		metrics.RecordReconcile("error")
		return nil, storeError(err, "Failed to create minimum version config")
	}

	r.log.WithContext(ctx).WithField("minimum_version", stringify(req.MinimumVersion)).
		Info("remote config document created")
	metrics.RecordReconcile("created")

	return &Result{Document: doc, Created: true}, nil
}

// update overlays the patch on the resolved document. The documentId path
// touches only content_update_date; the version path merges the whole patch
// and pins minimum_required_version. The two branches never mix.
func (r *Reconciler) update(ctx context.Context, target Document, req Request) (*Result, error) {
	updated := target.Clone()

	if req.DocumentID != "" {
		updated.ContentUpdateDate = stringify(req.ContentUpdateDate)
	}
	if truthy(req.MinimumVersion) && req.DocumentID == "" {
		for key, value := range req.Patch {
			updated.SetField(key, value)
		}
		updated.MinimumRequiredVersion = req.MinimumVersion
	}

	if err := r.store.Update(ctx, target.DocID, updated); err != nil {
		metrics.RecordReconcile("error")
		return nil, storeError(err, "Failed to update remote config")
	}

	r.log.WithContext(ctx).WithField("doc_id", target.DocID).
		Info("remote config document updated")
	metrics.RecordReconcile("updated")

	return &Result{Document: updated}, nil
}

// storeError rebrands a store failure with the branch's client-facing
// message while keeping the upstream's status and details.
func storeError(err error, message string) error {
	if se := errors.AsService(err); se != nil {
		out := errors.Upstream(message, se.HTTPStatus)
		out.Details = se.Details
		return out.WithCause(err)
	}
	return errors.Internal(message).WithDetails(err.Error()).WithCause(err)
}

// truthy mirrors the loose presence checks the config callers rely on:
// nil, empty string, zero and false all count as absent.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return val != ""
	case bool:
		return val
	case float64:
		return val != 0
	case json.Number:
		return val.String() != "0" && val.String() != ""
	default:
		return true
	}
}

// strictEqual is an exact-match comparison across JSON value types: a
// string never equals a number here, which is what makes the stringified
// fallback in resolve observable.
func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	return reflect.DeepEqual(a, b)
}
