// Package http provides the JSON API over the secret document.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/blueprint-secrets/internal/httputil"
	"github.com/allisson/blueprint-secrets/internal/secrets/http/dto"
	secretsUseCase "github.com/allisson/blueprint-secrets/internal/secrets/usecase"
)

const (
	retrieveFailedMessage = "Failed to retrieve secret"
	updateFailedMessage   = "Failed to update secret"
)

// SecretsHandler serves reads and writes of the secret document.
type SecretsHandler struct {
	secretsUseCase secretsUseCase.SecretsUseCase
	logger         *slog.Logger
}

// NewSecretsHandler creates a new secrets handler.
func NewSecretsHandler(secretsUseCase secretsUseCase.SecretsUseCase, logger *slog.Logger) *SecretsHandler {
	return &SecretsHandler{
		secretsUseCase: secretsUseCase,
		logger:         logger,
	}
}

// GetSecretsHandler returns the whole document.
// GET /v1/secrets
func (h *SecretsHandler) GetSecretsHandler(c *gin.Context) {
	doc, err := h.secretsUseCase.Get(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, retrieveFailedMessage, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDocumentToResponse(doc))
}

// GetSecretKeyHandler returns a single value of the document.
// GET /v1/secrets/keys/:key
func (h *SecretsHandler) GetSecretKeyHandler(c *gin.Context) {
	kv, err := h.secretsUseCase.GetKey(c.Request.Context(), c.Param("key"))
	if err != nil {
		httputil.HandleErrorGin(c, err, retrieveFailedMessage, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapKeyValueToResponse(kv))
}

// SetSecretsHandler writes a new version of the document.
// PUT|POST /v1/secrets
// Responds with the map the store now holds, plus a warning when the
// description could not be updated.
func (h *SecretsHandler) SetSecretsHandler(c *gin.Context) {
	req, err := dto.DecodeSetSecretsRequest(c.Request.Body)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	input, err := req.ToInput()
	if err != nil {
		httputil.HandleErrorGin(c, err, updateFailedMessage, h.logger)
		return
	}

	result, err := h.secretsUseCase.Set(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, updateFailedMessage, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapWriteResultToResponse(result))
}
