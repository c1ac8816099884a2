package domain

import (
	"github.com/allisson/blueprint-secrets/internal/errors"
)

// Authentication and authorization errors.
var (
	// ErrClientNotFound indicates a client with the specified ID was not found.
	ErrClientNotFound = errors.Wrap(errors.ErrNotFound, "client not found")

	// ErrTokenNotFound indicates a token with the specified hash was not found.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "token not found")

	// ErrInvalidCredentials covers unknown clients, wrong secrets and unusable tokens alike.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrClientInactive indicates the client exists but is disabled.
	ErrClientInactive = errors.Wrap(errors.ErrForbidden, "client is inactive")

	// ErrAccessDenied indicates the client is not in any group the access policy requires.
	ErrAccessDenied = errors.Wrap(errors.ErrForbidden, "client is not allowed to access secrets")
)
