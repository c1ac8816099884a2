package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/blueprint-secrets/internal/auth/domain"
	apperrors "github.com/allisson/blueprint-secrets/internal/errors"
)

func TestClientUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		secretService := &mockSecretService{}
		secretService.On("GenerateSecret").Return("bps_plain", "$argon2id$hash", nil).Once()

		output, err := NewClientUseCase(secretService).Create(ctx, &authDomain.CreateClientInput{
			Name:     "deployer",
			IsActive: true,
			Groups:   []string{"DEPLOYER"},
		})

		require.NoError(t, err)
		assert.Equal(t, "bps_plain", output.PlainSecret)
		assert.NotEqual(t, uuid.Nil, output.Client.ID)
		assert.Equal(t, "deployer", output.Client.Name)
		assert.Equal(t, "$argon2id$hash", output.Client.Secret)
		assert.True(t, output.Client.IsActive)
		assert.Equal(t, []string{"DEPLOYER"}, output.Client.Groups)
		secretService.AssertExpectations(t)
	})

	t.Run("Error_SecretGeneration", func(t *testing.T) {
		secretService := &mockSecretService{}
		secretService.On("GenerateSecret").Return("", "", errors.New("entropy")).Once()

		_, err := NewClientUseCase(secretService).Create(ctx, &authDomain.CreateClientInput{Name: "deployer"})

		assert.EqualError(t, err, "entropy")
	})

	tests := []struct {
		name  string
		input *authDomain.CreateClientInput
	}{
		{name: "NilInput", input: nil},
		{name: "BlankName", input: &authDomain.CreateClientInput{Name: "   "}},
		{name: "BlankGroup", input: &authDomain.CreateClientInput{Name: "ci", Groups: []string{""}}},
		{name: "PaddedGroup", input: &authDomain.CreateClientInput{Name: "ci", Groups: []string{" ops"}}},
	}

	for _, tt := range tests {
		t.Run("Error_"+tt.name, func(t *testing.T) {
			secretService := &mockSecretService{}

			_, err := NewClientUseCase(secretService).Create(ctx, tt.input)

			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			secretService.AssertNotCalled(t, "GenerateSecret")
		})
	}
}
