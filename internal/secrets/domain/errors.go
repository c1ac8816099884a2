// Package domain defines core domain models and errors for the secret document.
package domain

import (
	"github.com/allisson/blueprint-secrets/internal/errors"
)

// Secret document error definitions.
var (
	// ErrDocumentNotFound indicates the store holds no document (or an empty one) for the identifier.
	ErrDocumentNotFound = errors.Wrap(errors.ErrNotFound, "Secret not found or empty")

	// ErrMalformedDocument indicates the stored document is not a flat JSON object of strings.
	// It is not an input error: it maps to an internal error.
	ErrMalformedDocument = errors.New("stored secret document is malformed")

	// ErrInvalidSecretsJSON indicates the secrets argument was a string that does not decode as JSON.
	ErrInvalidSecretsJSON = errors.Wrap(errors.ErrInvalidInput, "invalid JSON in secrets argument")

	// ErrInvalidSecretsShape indicates the decoded secrets argument is not a flat object of strings.
	ErrInvalidSecretsShape = errors.Wrap(
		errors.ErrInvalidInput,
		`secrets must be a JSON object mapping non-empty keys to string values, e.g. {"API_KEY": "value"}`,
	)

	// ErrInvalidWriteMode indicates an unknown write mode in configuration.
	ErrInvalidWriteMode = errors.New("invalid secrets write mode")
)

// KeyNotFoundError reports a document that exists but lacks key.
func KeyNotFoundError(key string) error {
	return errors.Wrapf(errors.ErrNotFound, "Secret key '%s' not found", key)
}
