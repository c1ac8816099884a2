// Package store implements the secret document stores. Every store keeps exactly
// one JSON document per identifier and assigns an opaque version on each put.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/blueprint-secrets/internal/errors"
	"github.com/allisson/blueprint-secrets/internal/secrets/domain"
)

// MemoryStore keeps documents in process memory. It is meant for development and tests.
type MemoryStore struct {
	mu           sync.RWMutex
	documents    map[string]domain.StoredDocument
	descriptions map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		documents:    make(map[string]domain.StoredDocument),
		descriptions: make(map[string]string),
	}
}

// Get returns the latest document for id.
func (m *MemoryStore) Get(ctx context.Context, id string) (*domain.StoredDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.documents[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return &doc, nil
}

// Put replaces the document for id with raw.
func (m *MemoryStore) Put(ctx context.Context, id, raw string) (*domain.StoredDocument, error) {
	version, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate version id")
	}

	doc := domain.StoredDocument{
		Raw:       raw,
		VersionID: version.String(),
		CreatedAt: time.Now().UTC(),
	}

	m.mu.Lock()
	m.documents[id] = doc
	m.mu.Unlock()

	return &doc, nil
}

// SetDescription records a description for id.
func (m *MemoryStore) SetDescription(ctx context.Context, id, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.descriptions[id] = description
	return nil
}

// Description returns the description recorded for id.
func (m *MemoryStore) Description(id string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	description, ok := m.descriptions[id]
	return description, ok
}
