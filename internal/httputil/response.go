// Package httputil provides HTTP utility functions for request and response handling.
package httputil

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/blueprint-secrets/internal/errors"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// clientErrors lists the domain errors that are safe to show to the caller, with their status.
var clientErrors = []struct {
	sentinel error
	status   int
}{
	{apperrors.ErrInvalidInput, http.StatusBadRequest},
	{apperrors.ErrNotFound, http.StatusNotFound},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized},
	{apperrors.ErrForbidden, http.StatusForbidden},
}

// Classify maps err to a status code and the body that should be shown to the caller.
//
// Client errors carry the domain message without the sentinel suffix, e.g. a
// wrapped ErrNotFound becomes {"error": "Secret not found or empty"}. Anything
// else is a 500 whose body is {"error": internalMessage, "details": err.Error()}.
func Classify(err error, internalMessage string) (int, ErrorResponse) {
	for _, ce := range clientErrors {
		if apperrors.Is(err, ce.sentinel) {
			return ce.status, ErrorResponse{Error: ClientMessage(err, ce.sentinel)}
		}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: internalMessage, Details: err.Error()}
}

// HandleErrorGin logs err and writes the JSON response chosen by Classify.
func HandleErrorGin(c *gin.Context, err error, internalMessage string, logger *slog.Logger) {
	if err == nil {
		return
	}

	statusCode, response := Classify(err, internalMessage)

	if logger != nil {
		level := slog.LevelWarn
		if statusCode >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request failed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status_code", statusCode),
			slog.Any("error", err),
		)
	}

	c.JSON(statusCode, response)
}

// HandleBadRequestGin writes a 400 Bad Request response for malformed JSON or parameters.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{Error: ClientMessage(err, apperrors.ErrInvalidInput)})
}

// ClientMessage strips the trailing ": <sentinel>" that Wrap appends, so the
// caller sees "invalid JSON in secrets argument" rather than
// "invalid JSON in secrets argument: invalid input".
func ClientMessage(err, sentinel error) string {
	msg := err.Error()
	suffix := ": " + sentinel.Error()
	if i := strings.LastIndex(msg, suffix); i > 0 {
		return msg[:i] + msg[i+len(suffix):]
	}
	return msg
}
