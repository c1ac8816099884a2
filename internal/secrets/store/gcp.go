package store

import (
	"context"
	"fmt"
	"maps"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/fieldmaskpb"

	"github.com/allisson/blueprint-secrets/internal/secrets/domain"
)

// descriptionAnnotation is the secret annotation holding the document description.
const descriptionAnnotation = "description"

// SecretManagerClientAPI is the subset of the Secret Manager client used by the store.
type SecretManagerClientAPI interface {
	AccessSecretVersion(
		ctx context.Context,
		req *secretmanagerpb.AccessSecretVersionRequest,
		opts ...gax.CallOption,
	) (*secretmanagerpb.AccessSecretVersionResponse, error)
	GetSecretVersion(
		ctx context.Context,
		req *secretmanagerpb.GetSecretVersionRequest,
		opts ...gax.CallOption,
	) (*secretmanagerpb.SecretVersion, error)
	AddSecretVersion(
		ctx context.Context,
		req *secretmanagerpb.AddSecretVersionRequest,
		opts ...gax.CallOption,
	) (*secretmanagerpb.SecretVersion, error)
	GetSecret(
		ctx context.Context,
		req *secretmanagerpb.GetSecretRequest,
		opts ...gax.CallOption,
	) (*secretmanagerpb.Secret, error)
	UpdateSecret(
		ctx context.Context,
		req *secretmanagerpb.UpdateSecretRequest,
		opts ...gax.CallOption,
	) (*secretmanagerpb.Secret, error)
}

// NewSecretManagerClient builds a Secret Manager client. An empty credentialsFile
// falls back to application default credentials.
func NewSecretManagerClient(ctx context.Context, credentialsFile string) (*secretmanager.Client, error) {
	var clientOptions []option.ClientOption
	if credentialsFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(credentialsFile))
	}

	client, err := secretmanager.NewClient(ctx, clientOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCP Secret Manager client: %w", err)
	}
	return client, nil
}

// GCPSecretManagerStore keeps each document version as a Secret Manager secret version.
// The identifier is a secret name within projectID, or a full "projects/..." resource name.
type GCPSecretManagerStore struct {
	client    SecretManagerClientAPI
	projectID string
}

// NewGCPSecretManagerStore creates a store on top of client.
func NewGCPSecretManagerStore(client SecretManagerClientAPI, projectID string) *GCPSecretManagerStore {
	return &GCPSecretManagerStore{client: client, projectID: projectID}
}

// Get reads the latest enabled version.
func (g *GCPSecretManagerStore) Get(ctx context.Context, id string) (*domain.StoredDocument, error) {
	accessed, err := g.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: g.secretName(id) + "/versions/latest",
	}, noRetry())
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}

	version, err := g.client.GetSecretVersion(ctx, &secretmanagerpb.GetSecretVersionRequest{
		Name: accessed.GetName(),
	}, noRetry())
	if err != nil {
		return nil, err
	}

	return &domain.StoredDocument{
		Raw:       string(accessed.GetPayload().GetData()),
		VersionID: versionID(accessed.GetName()),
		CreatedAt: version.GetCreateTime().AsTime(),
	}, nil
}

// Put adds a new secret version holding raw.
func (g *GCPSecretManagerStore) Put(ctx context.Context, id, raw string) (*domain.StoredDocument, error) {
	version, err := g.client.AddSecretVersion(ctx, &secretmanagerpb.AddSecretVersionRequest{
		Parent:  g.secretName(id),
		Payload: &secretmanagerpb.SecretPayload{Data: []byte(raw)},
	}, noRetry())
	if err != nil {
		return nil, err
	}

	return &domain.StoredDocument{
		Raw:       raw,
		VersionID: versionID(version.GetName()),
		CreatedAt: version.GetCreateTime().AsTime(),
	}, nil
}

// SetDescription stores description as a secret annotation, keeping the other
// annotations. The etag guards against a concurrent annotation change.
func (g *GCPSecretManagerStore) SetDescription(ctx context.Context, id, description string) error {
	name := g.secretName(id)

	secret, err := g.client.GetSecret(ctx, &secretmanagerpb.GetSecretRequest{Name: name}, noRetry())
	if err != nil {
		return err
	}

	annotations := make(map[string]string, len(secret.GetAnnotations())+1)
	maps.Copy(annotations, secret.GetAnnotations())
	annotations[descriptionAnnotation] = description

	_, err = g.client.UpdateSecret(ctx, &secretmanagerpb.UpdateSecretRequest{
		Secret: &secretmanagerpb.Secret{
			Name:        name,
			Etag:        secret.GetEtag(),
			Annotations: annotations,
		},
		UpdateMask: &fieldmaskpb.FieldMask{Paths: []string{"annotations"}},
	}, noRetry())
	return err
}

func (g *GCPSecretManagerStore) secretName(id string) string {
	if strings.HasPrefix(id, "projects/") {
		return id
	}
	return fmt.Sprintf("projects/%s/secrets/%s", g.projectID, id)
}

// versionID extracts the trailing version number from a version resource name.
func versionID(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// noRetry disables the client's default retry policy for a call.
func noRetry() gax.CallOption {
	return gax.WithRetry(func() gax.Retryer { return nil })
}
