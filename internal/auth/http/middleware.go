// Package http provides the token endpoint and the authentication and
// authorization middleware guarding the secrets API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/blueprint-secrets/internal/auth/domain"
	authService "github.com/allisson/blueprint-secrets/internal/auth/service"
	authUseCase "github.com/allisson/blueprint-secrets/internal/auth/usecase"
	apperrors "github.com/allisson/blueprint-secrets/internal/errors"
	"github.com/allisson/blueprint-secrets/internal/httputil"
)

// SessionCookieName is the cookie holding the browser session token.
const SessionCookieName = "blueprint_session"

const authFailedMessage = "Failed to authenticate"

// TokenFromRequest extracts the plain token from the Authorization header
// ("Bearer <token>", scheme case-insensitive) or, failing that, from the session cookie.
func TokenFromRequest(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		const bearerPrefix = "bearer "
		if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
			return "", false
		}
		token := strings.TrimSpace(header[len(bearerPrefix):])
		return token, token != ""
	}

	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}
	return "", false
}

// Authenticator resolves request tokens to clients.
type Authenticator struct {
	tokenUseCase authUseCase.TokenUseCase
	tokenService authService.TokenService
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(tokenUseCase authUseCase.TokenUseCase, tokenService authService.TokenService) *Authenticator {
	return &Authenticator{tokenUseCase: tokenUseCase, tokenService: tokenService}
}

// Authenticate returns the client owning the request's token.
func (a *Authenticator) Authenticate(r *http.Request) (*authDomain.Client, error) {
	plainToken, ok := TokenFromRequest(r)
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrUnauthorized, "missing or malformed credentials")
	}
	return a.tokenUseCase.Authenticate(r.Context(), a.tokenService.HashToken(plainToken))
}

// Revoke invalidates the request's token, if any.
func (a *Authenticator) Revoke(ctx context.Context, r *http.Request) error {
	plainToken, ok := TokenFromRequest(r)
	if !ok {
		return nil
	}
	return a.tokenUseCase.Revoke(ctx, a.tokenService.HashToken(plainToken))
}

// AuthenticationMiddleware rejects requests without a usable token (401, or 403
// for inactive clients) and stores the client in the request context.
func AuthenticationMiddleware(authenticator *Authenticator, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, err := authenticator.Authenticate(c.Request)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, authFailedMessage, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithClient(c.Request.Context(), client))
		c.Next()
	}
}

// AuthorizationMiddleware enforces policy on the client stored by AuthenticationMiddleware.
func AuthorizationMiddleware(policy authDomain.AccessPolicy, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		client, ok := GetClient(c.Request.Context())
		if !ok {
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, authFailedMessage, logger)
			c.Abort()
			return
		}

		if !policy.Allows(client) {
			logger.Debug("authorization failed",
				slog.String("client_id", client.ID.String()),
				slog.String("client_name", client.Name),
				slog.Any("required_groups", policy.RequiredGroups))
			httputil.HandleErrorGin(c, authDomain.ErrAccessDenied, authFailedMessage, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
