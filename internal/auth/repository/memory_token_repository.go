package repository

import (
	"context"
	"sync"
	"time"

	authDomain "github.com/allisson/blueprint-secrets/internal/auth/domain"
)

// MemoryTokenRepository keeps issued tokens keyed by hash. Tokens do not survive
// a restart; clients simply authenticate again.
type MemoryTokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]*authDomain.Token
	now    func() time.Time
}

// NewMemoryTokenRepository creates an empty token repository.
func NewMemoryTokenRepository() *MemoryTokenRepository {
	return &MemoryTokenRepository{
		tokens: make(map[string]*authDomain.Token),
		now:    time.Now,
	}
}

// Create stores token and drops tokens that can no longer be used.
func (r *MemoryTokenRepository) Create(_ context.Context, token *authDomain.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	for hash, existing := range r.tokens {
		if !existing.IsUsable(now) {
			delete(r.tokens, hash)
		}
	}

	stored := *token
	r.tokens[token.TokenHash] = &stored
	return nil
}

// GetByTokenHash returns a copy of the token stored under tokenHash.
func (r *MemoryTokenRepository) GetByTokenHash(_ context.Context, tokenHash string) (*authDomain.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.tokens[tokenHash]
	if !ok {
		return nil, authDomain.ErrTokenNotFound
	}
	found := *token
	return &found, nil
}

// Update replaces the stored token with the same hash.
func (r *MemoryTokenRepository) Update(_ context.Context, token *authDomain.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[token.TokenHash]; !ok {
		return authDomain.ErrTokenNotFound
	}
	stored := *token
	r.tokens[token.TokenHash] = &stored
	return nil
}
