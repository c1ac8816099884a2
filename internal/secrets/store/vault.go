package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/hashicorp/vault/api"

	apperrors "github.com/allisson/blueprint-secrets/internal/errors"
	"github.com/allisson/blueprint-secrets/internal/secrets/domain"
)

// NewVaultClient builds a Vault client for address. Retries are disabled.
func NewVaultClient(address, token string) (*api.Client, error) {
	cfg := api.DefaultConfig()
	if cfg.Error != nil {
		return nil, fmt.Errorf("failed to read vault config: %w", cfg.Error)
	}
	cfg.Address = address
	cfg.MaxRetries = 0

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if token != "" {
		client.SetToken(token)
	}
	return client, nil
}

// VaultKVStore keeps the document as the data of a KV v2 secret. Each document key
// is a field of the secret, so the payload stays readable with the vault CLI.
type VaultKVStore struct {
	kv *api.KVv2
}

// NewVaultKVStore creates a store for the KV v2 engine mounted at mount.
func NewVaultKVStore(client *api.Client, mount string) *VaultKVStore {
	return &VaultKVStore{kv: client.KVv2(mount)}
}

// Get reads the latest version at path id.
func (v *VaultKVStore) Get(ctx context.Context, id string) (*domain.StoredDocument, error) {
	secret, err := v.kv.Get(ctx, id)
	if err != nil {
		if apperrors.Is(err, api.ErrSecretNotFound) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	if secret == nil || secret.Data == nil {
		return nil, domain.ErrDocumentNotFound
	}

	raw, err := json.Marshal(secret.Data)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encode vault secret data")
	}

	doc := &domain.StoredDocument{Raw: string(raw)}
	if secret.VersionMetadata != nil {
		doc.VersionID = strconv.Itoa(secret.VersionMetadata.Version)
		doc.CreatedAt = secret.VersionMetadata.CreatedTime
	}
	return doc, nil
}

// Put writes raw as a new version at path id.
func (v *VaultKVStore) Put(ctx context.Context, id, raw string) (*domain.StoredDocument, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, apperrors.Wrap(err, "vault store requires a JSON object document")
	}
	if data == nil {
		data = map[string]any{}
	}

	secret, err := v.kv.Put(ctx, id, data)
	if err != nil {
		return nil, err
	}

	doc := &domain.StoredDocument{Raw: raw}
	if secret != nil && secret.VersionMetadata != nil {
		doc.VersionID = strconv.Itoa(secret.VersionMetadata.Version)
		doc.CreatedAt = secret.VersionMetadata.CreatedTime
	}
	return doc, nil
}

// SetDescription stores description in the secret's custom metadata.
func (v *VaultKVStore) SetDescription(ctx context.Context, id, description string) error {
	return v.kv.PatchMetadata(ctx, id, api.KVMetadataPatchInput{
		CustomMetadata: map[string]any{descriptionAnnotation: description},
	})
}
