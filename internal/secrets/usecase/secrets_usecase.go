package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	apperrors "github.com/allisson/blueprint-secrets/internal/errors"
	secretsDomain "github.com/allisson/blueprint-secrets/internal/secrets/domain"
)

// secretsUseCase implements SecretsUseCase for a single document identifier.
type secretsUseCase struct {
	store     SecretStore
	secretID  string
	writeMode secretsDomain.WriteMode
	logger    *slog.Logger
}

// NewSecretsUseCase creates a SecretsUseCase bound to the document secretID.
func NewSecretsUseCase(
	store SecretStore,
	secretID string,
	writeMode secretsDomain.WriteMode,
	logger *slog.Logger,
) SecretsUseCase {
	return &secretsUseCase{
		store:     store,
		secretID:  secretID,
		writeMode: writeMode,
		logger:    logger,
	}
}

// Get reads and parses the current document. An absent or empty document is
// ErrDocumentNotFound; store failures are returned as reported by the store.
func (s *secretsUseCase) Get(ctx context.Context) (*secretsDomain.VersionedDocument, error) {
	stored, err := s.store.Get(ctx, s.secretID)
	if err != nil {
		if apperrors.Is(err, secretsDomain.ErrDocumentNotFound) {
			return nil, secretsDomain.ErrDocumentNotFound
		}
		return nil, err
	}
	if strings.TrimSpace(stored.Raw) == "" {
		return nil, secretsDomain.ErrDocumentNotFound
	}

	doc, err := secretsDomain.ParseDocument(stored.Raw)
	if err != nil {
		return nil, err
	}

	return &secretsDomain.VersionedDocument{
		Secrets:   doc,
		VersionID: stored.VersionID,
		CreatedAt: stored.CreatedAt,
	}, nil
}

// GetKey reads the document and picks a single key out of it.
func (s *secretsUseCase) GetKey(ctx context.Context, key string) (*secretsDomain.KeyValue, error) {
	doc, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	value, ok := doc.Secrets[key]
	if !ok {
		return nil, secretsDomain.KeyNotFoundError(key)
	}

	return &secretsDomain.KeyValue{
		Key:       key,
		Value:     value,
		VersionID: doc.VersionID,
		CreatedAt: doc.CreatedAt,
	}, nil
}

// Set validates the input and writes it as a new document version.
func (s *secretsUseCase) Set(
	ctx context.Context,
	input *secretsDomain.SetInput,
) (*secretsDomain.WriteResult, error) {
	if input == nil || input.Secrets == nil {
		return nil, apperrors.Wrap(secretsDomain.ErrInvalidSecretsShape, "secrets is required")
	}
	for key := range input.Secrets {
		if key == "" {
			return nil, apperrors.Wrap(secretsDomain.ErrInvalidSecretsShape, "empty secret key")
		}
	}

	secrets := input.Secrets.Clone()
	if s.writeMode == secretsDomain.WriteModeMerge {
		current, err := s.current(ctx)
		if err != nil {
			return nil, err
		}
		maps.Copy(current, secrets)
		secrets = current
	}

	raw, err := secrets.Serialize()
	if err != nil {
		return nil, err
	}

	written, err := s.store.Put(ctx, s.secretID, raw)
	if err != nil {
		return nil, err
	}

	result := &secretsDomain.WriteResult{
		Secrets:   secrets,
		VersionID: written.VersionID,
		CreatedAt: written.CreatedAt,
	}

	if input.Description != nil {
		if err := s.store.SetDescription(ctx, s.secretID, *input.Description); err != nil {
			s.logger.Warn("secret description update failed after successful write",
				slog.String("secret_id", s.secretID),
				slog.String("version_id", written.VersionID),
				slog.Any("error", err),
			)
			result.Warning = fmt.Sprintf("secrets were saved but the description was not updated: %v", err)
		}
	}

	return result, nil
}

// current returns the stored document for merging; an absent document is empty.
func (s *secretsUseCase) current(ctx context.Context) (secretsDomain.Document, error) {
	doc, err := s.Get(ctx)
	if err != nil {
		if apperrors.Is(err, secretsDomain.ErrDocumentNotFound) {
			return secretsDomain.Document{}, nil
		}
		return nil, err
	}
	return doc.Secrets, nil
}
