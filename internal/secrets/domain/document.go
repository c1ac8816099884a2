// Package domain defines the secret document and its versioned views.
// The whole set of secrets is persisted as a single flat JSON object; every write
// produces a new store-assigned version of that object.
package domain

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/allisson/blueprint-secrets/internal/errors"
)

// Document maps secret keys to secret values. It is the entire persisted payload.
type Document map[string]string

// Keys returns the document keys in sorted order. The result is never nil.
func (d Document) Keys() []string {
	keys := slices.AppendSeq(make([]string, 0, len(d)), maps.Keys(d))
	slices.Sort(keys)
	return keys
}

// Clone returns a shallow copy of the document. A nil document clones to an empty one.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	maps.Copy(out, d)
	return out
}

// Serialize encodes the document as a JSON object. Keys are emitted in sorted order.
func (d Document) Serialize() (string, error) {
	if d == nil {
		d = Document{}
	}
	b, err := json.Marshal(map[string]string(d))
	if err != nil {
		return "", errors.Wrap(err, "failed to serialize secret document")
	}
	return string(b), nil
}

// ParseDocument decodes a stored document. Anything other than a JSON object whose
// values are all strings is reported as ErrMalformedDocument.
func ParseDocument(raw string) (Document, error) {
	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, errors.Wrap(ErrMalformedDocument, err.Error())
	}
	if decoded == nil {
		return nil, errors.Wrap(ErrMalformedDocument, "document is null")
	}

	doc := make(Document, len(decoded))
	for key, value := range decoded {
		s, ok := value.(string)
		if !ok {
			return nil, errors.Wrap(ErrMalformedDocument, fmt.Sprintf("value of %q is not a string", key))
		}
		doc[key] = s
	}
	return doc, nil
}

// StoredDocument is the document exactly as a store holds it. Raw is not yet
// parsed and may be empty when the store has a version without a payload.
type StoredDocument struct {
	Raw       string
	VersionID string
	CreatedAt time.Time
}

// VersionedDocument is a document together with the store's version metadata.
type VersionedDocument struct {
	// Secrets is the full key/value map.
	Secrets Document
	// VersionID is the opaque, store-assigned version identifier. Display only.
	VersionID string
	// CreatedAt is when the store created this version.
	CreatedAt time.Time
}

// KeyValue is a single secret read out of a versioned document.
type KeyValue struct {
	Key       string
	Value     string
	VersionID string
	CreatedAt time.Time
}

// SetInput is a validated write request.
type SetInput struct {
	// Secrets is the full replacement map (or the overlay when merging).
	Secrets Document
	// Description, when non-nil, is written to the store metadata after the document.
	Description *string
}

// WriteResult is the outcome of a successful document write.
type WriteResult struct {
	// Secrets is the authoritative map that was persisted.
	Secrets Document
	// VersionID is the version assigned by the store to the new document.
	VersionID string
	// CreatedAt is when the store recorded the new version.
	CreatedAt time.Time
	// Warning is set when the best-effort description update failed.
	Warning string
}

// WriteMode selects how a write combines with the stored document.
type WriteMode string

const (
	// WriteModeReplace substitutes the whole document; absent keys are dropped.
	WriteModeReplace WriteMode = "replace"
	// WriteModeMerge overlays the new keys onto the stored document.
	WriteModeMerge WriteMode = "merge"
)

// ParseWriteMode converts a configuration value into a WriteMode.
func ParseWriteMode(s string) (WriteMode, error) {
	switch WriteMode(s) {
	case WriteModeReplace, "":
		return WriteModeReplace, nil
	case WriteModeMerge:
		return WriteModeMerge, nil
	default:
		return "", errors.Wrapf(ErrInvalidWriteMode, "%q (valid options: replace, merge)", s)
	}
}
