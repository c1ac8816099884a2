package store

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	apperrors "github.com/allisson/blueprint-secrets/internal/errors"
	"github.com/allisson/blueprint-secrets/internal/secrets/domain"
)

// SecretsManagerClientAPI is the subset of the Secrets Manager client used by the store.
type SecretsManagerClientAPI interface {
	GetSecretValue(
		ctx context.Context,
		params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.GetSecretValueOutput, error)
	PutSecretValue(
		ctx context.Context,
		params *secretsmanager.PutSecretValueInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.PutSecretValueOutput, error)
	UpdateSecret(
		ctx context.Context,
		params *secretsmanager.UpdateSecretInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.UpdateSecretOutput, error)
}

// AWSConfig configures the Secrets Manager client.
type AWSConfig struct {
	Region string
	// EndpointURL overrides the service endpoint (LocalStack).
	EndpointURL string
	// AccessKeyID and SecretAccessKey are only used together with EndpointURL.
	AccessKeyID     string
	SecretAccessKey string
}

// NewSecretsManagerClient builds a Secrets Manager client that makes a single attempt per call.
func NewSecretsManagerClient(ctx context.Context, cfg AWSConfig) (*secretsmanager.Client, error) {
	configOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
		config.WithRetryMaxAttempts(1),
	}

	if cfg.EndpointURL != "" && cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		configOpts = append(configOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var clientOpts []func(*secretsmanager.Options)
	if cfg.EndpointURL != "" {
		endpoint := cfg.EndpointURL
		clientOpts = append(clientOpts, func(o *secretsmanager.Options) {
			o.BaseEndpoint = &endpoint
		})
	}

	return secretsmanager.NewFromConfig(awsCfg, clientOpts...), nil
}

// AWSSecretsManagerStore keeps the document as the SecretString of one Secrets Manager secret.
// The identifier is the secret name or ARN.
type AWSSecretsManagerStore struct {
	client SecretsManagerClientAPI
}

// NewAWSSecretsManagerStore creates a store on top of client.
func NewAWSSecretsManagerStore(client SecretsManagerClientAPI) *AWSSecretsManagerStore {
	return &AWSSecretsManagerStore{client: client}
}

// Get reads the current version of the secret.
func (a *AWSSecretsManagerStore) Get(ctx context.Context, id string) (*domain.StoredDocument, error) {
	output, err := a.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		if isResourceNotFound(err) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}

	return &domain.StoredDocument{
		Raw:       aws.ToString(output.SecretString),
		VersionID: aws.ToString(output.VersionId),
		CreatedAt: aws.ToTime(output.CreatedDate),
	}, nil
}

// Put stores raw as a new version of the secret.
func (a *AWSSecretsManagerStore) Put(ctx context.Context, id, raw string) (*domain.StoredDocument, error) {
	output, err := a.client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(id),
		SecretString: aws.String(raw),
	})
	if err != nil {
		return nil, err
	}

	return &domain.StoredDocument{
		Raw:       raw,
		VersionID: aws.ToString(output.VersionId),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// SetDescription updates the secret description.
func (a *AWSSecretsManagerStore) SetDescription(ctx context.Context, id, description string) error {
	_, err := a.client.UpdateSecret(ctx, &secretsmanager.UpdateSecretInput{
		SecretId:    aws.String(id),
		Description: aws.String(description),
	})
	return err
}

func isResourceNotFound(err error) bool {
	var notFound *types.ResourceNotFoundException
	return apperrors.As(err, &notFound)
}
