package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/blueprint-secrets/internal/secrets/domain"
)

// fakeSecretsManager keeps one SecretString per secret id.
type fakeSecretsManager struct {
	values       map[string]string
	versions     map[string]string
	descriptions map[string]string
	created      time.Time
	putCount     int
	err          error
}

func newFakeSecretsManager() *fakeSecretsManager {
	return &fakeSecretsManager{
		values:       make(map[string]string),
		versions:     make(map[string]string),
		descriptions: make(map[string]string),
		created:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func (f *fakeSecretsManager) GetSecretValue(
	ctx context.Context,
	params *secretsmanager.GetSecretValueInput,
	optFns ...func(*secretsmanager.Options),
) (*secretsmanager.GetSecretValueOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	id := aws.ToString(params.SecretId)
	value, ok := f.values[id]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("Secrets Manager can't find the specified secret.")}
	}
	return &secretsmanager.GetSecretValueOutput{
		SecretString: aws.String(value),
		VersionId:    aws.String(f.versions[id]),
		CreatedDate:  aws.Time(f.created),
	}, nil
}

func (f *fakeSecretsManager) PutSecretValue(
	ctx context.Context,
	params *secretsmanager.PutSecretValueInput,
	optFns ...func(*secretsmanager.Options),
) (*secretsmanager.PutSecretValueOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.putCount++
	id := aws.ToString(params.SecretId)
	f.values[id] = aws.ToString(params.SecretString)
	f.versions[id] = fmt.Sprintf("v%d", f.putCount)
	return &secretsmanager.PutSecretValueOutput{VersionId: aws.String(f.versions[id])}, nil
}

func (f *fakeSecretsManager) UpdateSecret(
	ctx context.Context,
	params *secretsmanager.UpdateSecretInput,
	optFns ...func(*secretsmanager.Options),
) (*secretsmanager.UpdateSecretOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.descriptions[aws.ToString(params.SecretId)] = aws.ToString(params.Description)
	return &secretsmanager.UpdateSecretOutput{}, nil
}

func TestAWSSecretsManagerStore_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		fake := newFakeSecretsManager()
		fake.values["blueprint-secrets"] = `{"a":"1"}`
		fake.versions["blueprint-secrets"] = "ver-1"
		s := NewAWSSecretsManagerStore(fake)

		doc, err := s.Get(ctx, "blueprint-secrets")

		require.NoError(t, err)
		assert.Equal(t, `{"a":"1"}`, doc.Raw)
		assert.Equal(t, "ver-1", doc.VersionID)
		assert.Equal(t, fake.created, doc.CreatedAt)
	})

	t.Run("ResourceNotFound", func(t *testing.T) {
		s := NewAWSSecretsManagerStore(newFakeSecretsManager())

		_, err := s.Get(ctx, "blueprint-secrets")

		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	})

	t.Run("BackendError", func(t *testing.T) {
		fake := newFakeSecretsManager()
		fake.err = assert.AnError
		s := NewAWSSecretsManagerStore(fake)

		_, err := s.Get(ctx, "blueprint-secrets")

		assert.ErrorIs(t, err, assert.AnError)
		assert.NotErrorIs(t, err, domain.ErrDocumentNotFound)
	})
}

func TestAWSSecretsManagerStore_PutAndDescribe(t *testing.T) {
	ctx := context.Background()
	fake := newFakeSecretsManager()
	s := NewAWSSecretsManagerStore(fake)

	doc, err := s.Put(ctx, "blueprint-secrets", `{"c":"3"}`)
	require.NoError(t, err)
	assert.Equal(t, "v1", doc.VersionID)
	assert.Equal(t, `{"c":"3"}`, fake.values["blueprint-secrets"])

	require.NoError(t, s.SetDescription(ctx, "blueprint-secrets", "deploy keys"))
	assert.Equal(t, "deploy keys", fake.descriptions["blueprint-secrets"])

	fake.err = assert.AnError
	_, err = s.Put(ctx, "blueprint-secrets", `{}`)
	assert.ErrorIs(t, err, assert.AnError)
	assert.ErrorIs(t, s.SetDescription(ctx, "blueprint-secrets", "x"), assert.AnError)
}
