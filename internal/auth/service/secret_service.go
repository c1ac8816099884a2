package service

import (
	"crypto/rand"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/blueprint-secrets/internal/errors"
)

// SecretPrefix marks client secrets so they are recognizable in config and logs scanners.
const SecretPrefix = "bps_"

type secretService struct {
	hasher *pwdhash.PasswordHasher
}

// NewSecretService creates a SecretService hashing with Argon2id under the moderate policy.
func NewSecretService() SecretService {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyModerate))
	if err != nil {
		panic(err)
	}
	return &secretService{hasher: hasher}
}

func (s *secretService) GenerateSecret() (string, string, error) {
	plainSecret := SecretPrefix + rand.Text()

	hashedSecret, err := s.HashSecret(plainSecret)
	if err != nil {
		return "", "", err
	}
	return plainSecret, hashedSecret, nil
}

func (s *secretService) HashSecret(plainSecret string) (string, error) {
	hashedSecret, err := s.hasher.Hash([]byte(plainSecret))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash secret")
	}
	return hashedSecret, nil
}

// CompareSecret treats a malformed hash as a mismatch.
func (s *secretService) CompareSecret(plainSecret string, hashedSecret string) bool {
	ok, err := s.hasher.Verify([]byte(plainSecret), hashedSecret)
	return err == nil && ok
}
