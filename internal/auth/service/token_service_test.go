package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_GenerateToken(t *testing.T) {
	service := NewTokenService()

	plainToken, tokenHash, err := service.GenerateToken()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(plainToken, TokenPrefix))
	assert.Len(t, tokenHash, 64)
	assert.Equal(t, service.HashToken(plainToken), tokenHash)

	otherToken, otherHash, err := service.GenerateToken()
	require.NoError(t, err)
	assert.NotEqual(t, plainToken, otherToken)
	assert.NotEqual(t, tokenHash, otherHash)
}

func TestTokenService_HashToken(t *testing.T) {
	service := NewTokenService()

	// sha256("abc")
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", service.HashToken("abc"))
}
