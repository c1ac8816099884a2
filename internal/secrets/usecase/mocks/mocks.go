// Package mocks provides mock implementations of the secrets use case interfaces.
package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	secretsDomain "github.com/allisson/blueprint-secrets/internal/secrets/domain"
)

// MockSecretStore is a mock implementation of usecase.SecretStore.
type MockSecretStore struct {
	mock.Mock
}

// NewMockSecretStore creates a MockSecretStore whose expectations are asserted on cleanup.
func NewMockSecretStore(t *testing.T) *MockSecretStore {
	m := &MockSecretStore{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Get mocks the Get method of SecretStore.
func (m *MockSecretStore) Get(ctx context.Context, id string) (*secretsDomain.StoredDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.StoredDocument), args.Error(1)
}

// Put mocks the Put method of SecretStore.
func (m *MockSecretStore) Put(ctx context.Context, id, raw string) (*secretsDomain.StoredDocument, error) {
	args := m.Called(ctx, id, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.StoredDocument), args.Error(1)
}

// SetDescription mocks the SetDescription method of SecretStore.
func (m *MockSecretStore) SetDescription(ctx context.Context, id, description string) error {
	args := m.Called(ctx, id, description)
	return args.Error(0)
}

// MockSecretsUseCase is a mock implementation of usecase.SecretsUseCase.
type MockSecretsUseCase struct {
	mock.Mock
}

// NewMockSecretsUseCase creates a MockSecretsUseCase whose expectations are asserted on cleanup.
func NewMockSecretsUseCase(t *testing.T) *MockSecretsUseCase {
	m := &MockSecretsUseCase{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Get mocks the Get method of SecretsUseCase.
func (m *MockSecretsUseCase) Get(ctx context.Context) (*secretsDomain.VersionedDocument, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.VersionedDocument), args.Error(1)
}

// GetKey mocks the GetKey method of SecretsUseCase.
func (m *MockSecretsUseCase) GetKey(ctx context.Context, key string) (*secretsDomain.KeyValue, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.KeyValue), args.Error(1)
}

// Set mocks the Set method of SecretsUseCase.
func (m *MockSecretsUseCase) Set(
	ctx context.Context,
	input *secretsDomain.SetInput,
) (*secretsDomain.WriteResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*secretsDomain.WriteResult), args.Error(1)
}
