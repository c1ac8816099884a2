package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/blueprint-secrets/internal/auth/domain"
)

type mockClientUseCase struct {
	mock.Mock
}

func (m *mockClientUseCase) Create(
	ctx context.Context,
	input *authDomain.CreateClientInput,
) (*authDomain.CreateClientOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.CreateClientOutput), args.Error(1)
}

func TestRunCreateClient(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clientID := uuid.Must(uuid.NewV7())

	input := &authDomain.CreateClientInput{
		Name:     "deployer",
		IsActive: true,
		Groups:   []string{"DEPLOYER"},
	}
	output := &authDomain.CreateClientOutput{
		Client: &authDomain.Client{
			ID:       clientID,
			Name:     "deployer",
			Secret:   "$argon2id$hash",
			IsActive: true,
			Groups:   []string{"DEPLOYER"},
		},
		PlainSecret: "plain-secret",
	}

	t.Run("text", func(t *testing.T) {
		useCase := &mockClientUseCase{}
		useCase.On("Create", ctx, input).Return(output, nil)

		var out bytes.Buffer
		err := RunCreateClient(ctx, useCase, logger, "deployer", true, []string{"DEPLOYER"}, "text", &out)

		require.NoError(t, err)
		assert.Contains(t, out.String(), "Client ID: "+clientID.String())
		assert.Contains(t, out.String(), "Secret: plain-secret")
		assert.Contains(t, out.String(), "id: "+clientID.String())
		assert.Contains(t, out.String(), "secret_hash: $argon2id$hash")
		assert.Contains(t, out.String(), "- DEPLOYER")
		useCase.AssertExpectations(t)
	})

	t.Run("json", func(t *testing.T) {
		useCase := &mockClientUseCase{}
		useCase.On("Create", ctx, input).Return(output, nil)

		var out bytes.Buffer
		err := RunCreateClient(ctx, useCase, logger, "deployer", true, []string{"DEPLOYER"}, "json", &out)
		require.NoError(t, err)

		var result map[string]string
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		assert.Equal(t, clientID.String(), result["client_id"])
		assert.Equal(t, "plain-secret", result["secret"])
		assert.Contains(t, result["clients_file"], "name: deployer")
		useCase.AssertExpectations(t)
	})

	t.Run("use-case-error", func(t *testing.T) {
		useCase := &mockClientUseCase{}
		useCase.On("Create", ctx, mock.Anything).Return(nil, errors.New("name is required"))

		var out bytes.Buffer
		err := RunCreateClient(ctx, useCase, logger, "", true, nil, "text", &out)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create client")
		assert.Empty(t, out.String())
		useCase.AssertExpectations(t)
	})
}
