// Package service provides the credential primitives used by authentication:
// client secret hashing and bearer token generation.
package service

// SecretService generates and verifies client secrets.
type SecretService interface {
	// GenerateSecret returns a new plain secret and its hash. Only the hash is stored.
	GenerateSecret() (plainSecret string, hashedSecret string, err error)

	// HashSecret hashes a plain secret.
	HashSecret(plainSecret string) (hashedSecret string, err error)

	// CompareSecret reports whether plainSecret matches hashedSecret.
	CompareSecret(plainSecret string, hashedSecret string) bool
}

// TokenService generates bearer tokens and the hashes they are looked up by.
type TokenService interface {
	GenerateToken() (plainToken string, tokenHash string, err error)
	HashToken(plainToken string) string
}
