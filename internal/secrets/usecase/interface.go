// Package usecase implements the read and write contracts of the secret document.
// Use cases are transport independent: the HTTP API, the web UI and the CLI all
// call the same SecretsUseCase.
package usecase

import (
	"context"

	secretsDomain "github.com/allisson/blueprint-secrets/internal/secrets/domain"
)

// SecretStore persists one JSON document per identifier.
// Get returns secretsDomain.ErrDocumentNotFound when the store holds nothing for id.
type SecretStore interface {
	Get(ctx context.Context, id string) (*secretsDomain.StoredDocument, error)
	Put(ctx context.Context, id, raw string) (*secretsDomain.StoredDocument, error)
	SetDescription(ctx context.Context, id, description string) error
}

// SecretsUseCase defines the business logic around the secret document.
type SecretsUseCase interface {
	// Get returns the whole document with its version metadata.
	Get(ctx context.Context) (*secretsDomain.VersionedDocument, error)
	// GetKey returns a single secret value together with the document version metadata.
	GetKey(ctx context.Context, key string) (*secretsDomain.KeyValue, error)
	// Set writes a new version of the document and, when asked, its description.
	// The description update is best effort: its failure is reported in WriteResult.Warning.
	Set(ctx context.Context, input *secretsDomain.SetInput) (*secretsDomain.WriteResult, error)
}
