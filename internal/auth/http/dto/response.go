package dto

import (
	"time"

	authDomain "github.com/allisson/blueprint-secrets/internal/auth/domain"
)

// IssueTokenResponse carries a newly issued bearer token.
type IssueTokenResponse struct {
	Token     string    `json:"token"` //nolint:gosec // returned once on issuance
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MapIssueTokenOutputToResponse converts an issued token to an API response.
func MapIssueTokenOutputToResponse(output *authDomain.IssueTokenOutput) IssueTokenResponse {
	return IssueTokenResponse{
		Token:     output.PlainToken,
		TokenType: "Bearer",
		ExpiresAt: output.ExpiresAt,
	}
}
