package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// TokenPrefix marks bearer tokens issued by this service.
const TokenPrefix = "bpt_"

type tokenService struct{}

// NewTokenService creates a TokenService. Tokens carry 128 bits of randomness and
// are stored as their SHA-256 hex digest.
func NewTokenService() TokenService {
	return &tokenService{}
}

func (t *tokenService) GenerateToken() (string, string, error) {
	plainToken := TokenPrefix + rand.Text()
	return plainToken, t.HashToken(plainToken), nil
}

func (t *tokenService) HashToken(plainToken string) string {
	sum := sha256.Sum256([]byte(plainToken))
	return hex.EncodeToString(sum[:])
}
