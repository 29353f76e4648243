// Package remoteconfig implements the remote configuration reconciler and
// its document store client.
package remoteconfig

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Known document field names. Everything else rides in Extra so that an
// update never drops fields this service does not understand.
const (
	fieldDocID             = "docId"
	fieldRevision          = "_rev"
	fieldMinimumVersion    = "minimum_required_version"
	fieldLegacyMinVersion  = "minimumVersion"
	fieldContentUpdateDate = "content_update_date"
	fieldUpdateReviews     = "update_reviews"
)

// Document is one row of application-wide configuration.
//
// The two version fields stay untyped: the store is known to return numeric
// values for fields the callers write as strings, and the reconciler's
// matching rules distinguish an exact match from a stringified one.
type Document struct {
	// DocID is assigned by the store on creation; empty on a document
	// that has not been persisted yet.
	DocID string

	// Revision is the optimistic-concurrency token echoed on update.
	// Empty on stores that do not version documents.
	Revision string

	MinimumRequiredVersion any
	LegacyMinimumVersion   any

	// ContentUpdateDate is a stringified integer counter bumped to
	// invalidate client content caches. Interpreting the value is the
	// caller's business; the reconciler stores what it is given.
	ContentUpdateDate string

	// UpdateReviews is an opaque URL to an external maintenance service.
	UpdateReviews string

	// Extra holds every field outside the allow-list above.
	Extra map[string]any
}

// Clone returns a deep-enough copy for single-level merging.
func (d Document) Clone() Document {
	out := d
	if d.Extra != nil {
		out.Extra = make(map[string]any, len(d.Extra))
		for k, v := range d.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// SetField assigns a patch value to the matching typed field, or to Extra.
// The docId and revision fields are deliberately not assignable from a
// patch: only the store hands those out.
func (d *Document) SetField(key string, value any) {
	switch key {
	case fieldDocID, fieldRevision:
		return
	case fieldMinimumVersion:
		d.MinimumRequiredVersion = value
	case fieldLegacyMinVersion:
		d.LegacyMinimumVersion = value
	case fieldContentUpdateDate:
		d.ContentUpdateDate = stringify(value)
	case fieldUpdateReviews:
		d.UpdateReviews = stringify(value)
	default:
		if d.Extra == nil {
			d.Extra = make(map[string]any)
		}
		d.Extra[key] = value
	}
}

// Fields returns the document as a flat map, the shape it has on the wire.
func (d Document) Fields() map[string]any {
	out := make(map[string]any, len(d.Extra)+6)
	for k, v := range d.Extra {
		out[k] = v
	}
	if d.DocID != "" {
		out[fieldDocID] = d.DocID
	}
	if d.Revision != "" {
		out[fieldRevision] = d.Revision
	}
	if d.MinimumRequiredVersion != nil {
		out[fieldMinimumVersion] = d.MinimumRequiredVersion
	}
	if d.LegacyMinimumVersion != nil {
		out[fieldLegacyMinVersion] = d.LegacyMinimumVersion
	}
	if d.ContentUpdateDate != "" {
		out[fieldContentUpdateDate] = d.ContentUpdateDate
	}
	if d.UpdateReviews != "" {
		out[fieldUpdateReviews] = d.UpdateReviews
	}
	return out
}

// MarshalJSON flattens the document back into a single JSON object.
func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Fields())
}

// UnmarshalJSON splits a JSON object into the typed fields and Extra.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*d = Document{}
	// Deterministic order keeps error behavior stable; maps range randomly.
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := raw[k]
		switch k {
		case fieldDocID:
			d.DocID = stringify(v)
		case fieldRevision:
			d.Revision = stringify(v)
		case fieldMinimumVersion:
			d.MinimumRequiredVersion = v
		case fieldLegacyMinVersion:
			d.LegacyMinimumVersion = v
		case fieldContentUpdateDate:
			d.ContentUpdateDate = stringify(v)
		case fieldUpdateReviews:
			d.UpdateReviews = stringify(v)
		default:
			if d.Extra == nil {
				d.Extra = make(map[string]any)
			}
			d.Extra[k] = v
		}
	}
	return nil
}

// stringify renders a JSON value the way the config callers expect:
// numbers lose a trailing ".0", strings pass through, nil becomes "".
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	default:
		// %v prints float64(5) as "5" and 1.5 as "1.5", matching the
		// stringified comparison the callers rely on.
		return fmt.Sprintf("%v", val)
	}
}
