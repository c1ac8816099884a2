// Package usecase implements client provisioning and token-based authentication.
package usecase

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/allisson/blueprint-secrets/internal/auth/domain"
)

// ClientRepository looks clients up by id. Returns ErrClientNotFound when absent.
type ClientRepository interface {
	Get(ctx context.Context, clientID uuid.UUID) (*authDomain.Client, error)
}

// TokenRepository persists issued tokens by hash.
type TokenRepository interface {
	Create(ctx context.Context, token *authDomain.Token) error
	Update(ctx context.Context, token *authDomain.Token) error
	// GetByTokenHash returns ErrTokenNotFound when no token has the hash.
	GetByTokenHash(ctx context.Context, tokenHash string) (*authDomain.Token, error)
}

// ClientUseCase provisions clients. Clients are not persisted here: the caller
// writes the returned client into the clients file.
type ClientUseCase interface {
	Create(ctx context.Context, input *authDomain.CreateClientInput) (*authDomain.CreateClientOutput, error)
}

// TokenUseCase exchanges client credentials for bearer tokens and resolves tokens back to clients.
type TokenUseCase interface {
	// Issue returns ErrInvalidCredentials for unknown clients and wrong secrets alike.
	Issue(ctx context.Context, input *authDomain.IssueTokenInput) (*authDomain.IssueTokenOutput, error)

	// Authenticate returns the client owning a usable token.
	Authenticate(ctx context.Context, tokenHash string) (*authDomain.Client, error)

	// Revoke makes the token unusable. Revoking an unknown token is not an error.
	Revoke(ctx context.Context, tokenHash string) error
}
