package usecase

import (
	"context"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	authDomain "github.com/allisson/blueprint-secrets/internal/auth/domain"
	authService "github.com/allisson/blueprint-secrets/internal/auth/service"
	customValidation "github.com/allisson/blueprint-secrets/internal/validation"
)

type clientUseCase struct {
	secretService authService.SecretService
}

// NewClientUseCase creates a ClientUseCase.
func NewClientUseCase(secretService authService.SecretService) ClientUseCase {
	return &clientUseCase{secretService: secretService}
}

// Create generates an id and a secret for a new client.
func (c *clientUseCase) Create(
	_ context.Context,
	input *authDomain.CreateClientInput,
) (*authDomain.CreateClientOutput, error) {
	if err := validateCreateClientInput(input); err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	plainSecret, hashedSecret, err := c.secretService.GenerateSecret()
	if err != nil {
		return nil, err
	}

	return &authDomain.CreateClientOutput{
		Client: &authDomain.Client{
			ID:       uuid.Must(uuid.NewV7()),
			Name:     input.Name,
			Secret:   hashedSecret,
			IsActive: input.IsActive,
			Groups:   input.Groups,
		},
		PlainSecret: plainSecret,
	}, nil
}

func validateCreateClientInput(input *authDomain.CreateClientInput) error {
	if input == nil {
		return validation.NewError("validation_required", "client input is required")
	}
	return validation.ValidateStruct(input,
		validation.Field(&input.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&input.Groups,
			validation.Each(validation.Required, customValidation.NoWhitespace),
		),
	)
}
