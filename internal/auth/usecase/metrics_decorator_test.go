package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/blueprint-secrets/internal/auth/domain"
)

type mockTokenUseCase struct {
	mock.Mock
}

func (m *mockTokenUseCase) Issue(
	ctx context.Context,
	input *authDomain.IssueTokenInput,
) (*authDomain.IssueTokenOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.IssueTokenOutput), args.Error(1)
}

func (m *mockTokenUseCase) Authenticate(ctx context.Context, tokenHash string) (*authDomain.Client, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.Client), args.Error(1)
}

func (m *mockTokenUseCase) Revoke(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func expectRecord(m *mockBusinessMetrics, ctx context.Context, operation, status string) {
	m.On("RecordOperation", ctx, "auth", operation, status).Return().Once()
	m.On("RecordDuration", ctx, "auth", operation, mock.AnythingOfType("time.Duration"), status).Return().Once()
}

func TestTokenUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()

	t.Run("Issue_Success", func(t *testing.T) {
		next := &mockTokenUseCase{}
		m := &mockBusinessMetrics{}
		input := &authDomain.IssueTokenInput{ClientSecret: "x"}
		output := &authDomain.IssueTokenOutput{PlainToken: "bpt_x"}

		next.On("Issue", ctx, input).Return(output, nil).Once()
		expectRecord(m, ctx, "token_issue", "success")

		result, err := NewTokenUseCaseWithMetrics(next, m).Issue(ctx, input)

		assert.NoError(t, err)
		assert.Equal(t, output, result)
		m.AssertExpectations(t)
	})

	t.Run("Authenticate_Error", func(t *testing.T) {
		next := &mockTokenUseCase{}
		m := &mockBusinessMetrics{}

		next.On("Authenticate", ctx, "hash").Return(nil, authDomain.ErrInvalidCredentials).Once()
		expectRecord(m, ctx, "token_authenticate", "error")

		_, err := NewTokenUseCaseWithMetrics(next, m).Authenticate(ctx, "hash")

		assert.ErrorIs(t, err, authDomain.ErrInvalidCredentials)
		m.AssertExpectations(t)
	})

	t.Run("Revoke_Error", func(t *testing.T) {
		next := &mockTokenUseCase{}
		m := &mockBusinessMetrics{}

		next.On("Revoke", ctx, "hash").Return(errors.New("boom")).Once()
		expectRecord(m, ctx, "token_revoke", "error")

		err := NewTokenUseCaseWithMetrics(next, m).Revoke(ctx, "hash")

		assert.EqualError(t, err, "boom")
		m.AssertExpectations(t)
	})
}
