package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/blueprint-secrets/internal/auth/http/dto"
	authUseCase "github.com/allisson/blueprint-secrets/internal/auth/usecase"
	"github.com/allisson/blueprint-secrets/internal/httputil"
	customValidation "github.com/allisson/blueprint-secrets/internal/validation"
)

// TokenHandler serves token issuance and revocation.
type TokenHandler struct {
	tokenUseCase  authUseCase.TokenUseCase
	authenticator *Authenticator
	logger        *slog.Logger
}

// NewTokenHandler creates a new token handler.
func NewTokenHandler(
	tokenUseCase authUseCase.TokenUseCase,
	authenticator *Authenticator,
	logger *slog.Logger,
) *TokenHandler {
	return &TokenHandler{
		tokenUseCase:  tokenUseCase,
		authenticator: authenticator,
		logger:        logger,
	}
}

// IssueTokenHandler exchanges client credentials for a bearer token.
// POST /v1/token
func (h *TokenHandler) IssueTokenHandler(c *gin.Context) {
	var req dto.IssueTokenRequest
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleErrorGin(c, customValidation.WrapValidationError(err), authFailedMessage, h.logger)
		return
	}

	output, err := h.tokenUseCase.Issue(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, authFailedMessage, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapIssueTokenOutputToResponse(output))
}

// RevokeTokenHandler revokes the token the request was authenticated with.
// DELETE /v1/token
func (h *TokenHandler) RevokeTokenHandler(c *gin.Context) {
	if err := h.authenticator.Revoke(c.Request.Context(), c.Request); err != nil {
		httputil.HandleErrorGin(c, err, authFailedMessage, h.logger)
		return
	}
	c.Status(http.StatusNoContent)
}
