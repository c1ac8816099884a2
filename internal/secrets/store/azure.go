package store

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"

	apperrors "github.com/allisson/blueprint-secrets/internal/errors"
	"github.com/allisson/blueprint-secrets/internal/secrets/domain"
)

const documentContentType = "application/json"

// KeyVaultClientAPI is the subset of the Key Vault secrets client used by the store.
type KeyVaultClientAPI interface {
	GetSecret(
		ctx context.Context,
		name string,
		version string,
		options *azsecrets.GetSecretOptions,
	) (azsecrets.GetSecretResponse, error)
	SetSecret(
		ctx context.Context,
		name string,
		parameters azsecrets.SetSecretParameters,
		options *azsecrets.SetSecretOptions,
	) (azsecrets.SetSecretResponse, error)
	UpdateSecretProperties(
		ctx context.Context,
		name string,
		version string,
		parameters azsecrets.UpdateSecretPropertiesParameters,
		options *azsecrets.UpdateSecretPropertiesOptions,
	) (azsecrets.UpdateSecretPropertiesResponse, error)
}

// NewKeyVaultClient builds a Key Vault client authenticated with the default
// Azure credential chain. Retries are disabled.
func NewKeyVaultClient(vaultURL string) (*azsecrets.Client, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	client, err := azsecrets.NewClient(vaultURL, cred, &azsecrets.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{MaxRetries: -1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure Key Vault client: %w", err)
	}
	return client, nil
}

// AzureKeyVaultStore keeps the document as the value of one Key Vault secret.
type AzureKeyVaultStore struct {
	client KeyVaultClientAPI
}

// NewAzureKeyVaultStore creates a store on top of client.
func NewAzureKeyVaultStore(client KeyVaultClientAPI) *AzureKeyVaultStore {
	return &AzureKeyVaultStore{client: client}
}

// Get reads the latest version of the secret.
func (a *AzureKeyVaultStore) Get(ctx context.Context, id string) (*domain.StoredDocument, error) {
	resp, err := a.client.GetSecret(ctx, id, "", nil)
	if err != nil {
		if isAzureNotFound(err) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	return storedFromAzure(resp.Secret, ""), nil
}

// Put sets a new version of the secret.
func (a *AzureKeyVaultStore) Put(ctx context.Context, id, raw string) (*domain.StoredDocument, error) {
	contentType := documentContentType
	resp, err := a.client.SetSecret(ctx, id, azsecrets.SetSecretParameters{
		Value:       &raw,
		ContentType: &contentType,
	}, nil)
	if err != nil {
		return nil, err
	}
	return storedFromAzure(resp.Secret, raw), nil
}

// SetDescription stores description as a tag on the latest version.
func (a *AzureKeyVaultStore) SetDescription(ctx context.Context, id, description string) error {
	_, err := a.client.UpdateSecretProperties(ctx, id, "", azsecrets.UpdateSecretPropertiesParameters{
		Tags: map[string]*string{descriptionAnnotation: &description},
	}, nil)
	return err
}

func storedFromAzure(secret azsecrets.Secret, fallbackRaw string) *domain.StoredDocument {
	doc := &domain.StoredDocument{Raw: fallbackRaw}
	if secret.Value != nil {
		doc.Raw = *secret.Value
	}
	if secret.ID != nil {
		doc.VersionID = secret.ID.Version()
	}
	if secret.Attributes != nil && secret.Attributes.Created != nil {
		doc.CreatedAt = secret.Attributes.Created.UTC()
	} else {
		doc.CreatedAt = time.Now().UTC()
	}
	return doc
}

func isAzureNotFound(err error) bool {
	var respErr *azcore.ResponseError
	if apperrors.As(err, &respErr) {
		return respErr.StatusCode == http.StatusNotFound || respErr.ErrorCode == "SecretNotFound"
	}
	return false
}
