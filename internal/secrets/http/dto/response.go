package dto

import (
	"time"

	secretsDomain "github.com/allisson/blueprint-secrets/internal/secrets/domain"
)

// GetSecretsResponse is the body of GET /v1/secrets.
type GetSecretsResponse struct {
	SecretKeys  []string          `json:"secretKeys"`
	VersionID   string            `json:"versionId"`
	CreatedDate time.Time         `json:"createdDate,omitzero"`
	Secrets     map[string]string `json:"secrets"`
}

// GetSecretKeyResponse is the body of GET /v1/secrets/keys/:key.
type GetSecretKeyResponse struct {
	SecretKey   string    `json:"secretKey"`
	SecretValue string    `json:"secretValue"`
	VersionID   string    `json:"versionId"`
	CreatedDate time.Time `json:"createdDate,omitzero"`
}

// SetSecretsResponse is the body of a successful write. Secrets is the map the
// store now holds, which the client adopts as its authoritative state.
type SetSecretsResponse struct {
	Secrets   map[string]string `json:"secrets"`
	VersionID string            `json:"versionId"`
	Warning   string            `json:"warning,omitempty"`
}

// MapDocumentToResponse converts a versioned document to a read response.
func MapDocumentToResponse(doc *secretsDomain.VersionedDocument) GetSecretsResponse {
	secrets := doc.Secrets.Clone()
	return GetSecretsResponse{
		SecretKeys:  secrets.Keys(),
		VersionID:   doc.VersionID,
		CreatedDate: doc.CreatedAt,
		Secrets:     secrets,
	}
}

// MapKeyValueToResponse converts a single key lookup to a response.
func MapKeyValueToResponse(kv *secretsDomain.KeyValue) GetSecretKeyResponse {
	return GetSecretKeyResponse{
		SecretKey:   kv.Key,
		SecretValue: kv.Value,
		VersionID:   kv.VersionID,
		CreatedDate: kv.CreatedAt,
	}
}

// MapWriteResultToResponse converts a write result to a response.
func MapWriteResultToResponse(result *secretsDomain.WriteResult) SetSecretsResponse {
	return SetSecretsResponse{
		Secrets:   result.Secrets.Clone(),
		VersionID: result.VersionID,
		Warning:   result.Warning,
	}
}
