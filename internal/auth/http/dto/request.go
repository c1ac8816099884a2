// Package dto provides data transfer objects for the authentication endpoints.
package dto

import (
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	authDomain "github.com/allisson/blueprint-secrets/internal/auth/domain"
	customValidation "github.com/allisson/blueprint-secrets/internal/validation"
)

// IssueTokenRequest contains the client credentials exchanged for a token.
type IssueTokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"` //nolint:gosec // request field, never logged
}

// Validate checks if the issue token request is valid.
func (r *IssueTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ClientID,
			validation.Required,
			customValidation.NotBlank,
			validation.By(validateUUID),
		),
		validation.Field(&r.ClientSecret,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// ToInput converts a validated request to the use case input.
func (r *IssueTokenRequest) ToInput() *authDomain.IssueTokenInput {
	return &authDomain.IssueTokenInput{
		ClientID:     uuid.MustParse(r.ClientID),
		ClientSecret: r.ClientSecret,
	}
}

func validateUUID(value any) error {
	s, _ := value.(string)
	if _, err := uuid.Parse(s); err != nil {
		return validation.NewError("validation_is_uuid", "must be a valid UUID")
	}
	return nil
}
