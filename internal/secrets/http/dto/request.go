// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/blueprint-secrets/internal/errors"
	secretsDomain "github.com/allisson/blueprint-secrets/internal/secrets/domain"
	customValidation "github.com/allisson/blueprint-secrets/internal/validation"
)

// maxDescriptionLength matches the AWS Secrets Manager description limit.
const maxDescriptionLength = 2048

// ErrEmptyBody is returned when a write request carries no body.
var ErrEmptyBody = apperrors.Wrap(apperrors.ErrInvalidInput, "request body is required")

// SetSecretsRequest is the body of PUT/POST /v1/secrets.
// Secrets holds either a JSON object or a JSON string that encodes one.
type SetSecretsRequest struct {
	Secrets     json.RawMessage `json:"secrets"`
	Description *string         `json:"description,omitempty"`
}

// DecodeSetSecretsRequest reads a SetSecretsRequest, rejecting unknown fields
// and trailing data.
func DecodeSetSecretsRequest(r io.Reader) (*SetSecretsRequest, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	var req SetSecretsRequest
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyBody
		}
		return nil, err
	}
	if decoder.More() {
		return nil, errors.New("request body must contain a single JSON object")
	}
	return &req, nil
}

// Validate checks the request fields that do not depend on the secrets payload.
func (r *SetSecretsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Secrets, validation.By(requireRawJSON)),
		validation.Field(&r.Description, validation.Length(0, maxDescriptionLength)),
	)
}

// ToInput decodes the secrets payload into a domain write input. An empty
// description is treated as absent.
func (r *SetSecretsRequest) ToInput() (*secretsDomain.SetInput, error) {
	if err := r.Validate(); err != nil {
		return nil, customValidation.WrapValidationError(err)
	}

	doc, err := secretsDomain.DecodeSecrets(r.Secrets)
	if err != nil {
		return nil, err
	}

	input := &secretsDomain.SetInput{Secrets: doc}
	if r.Description != nil && *r.Description != "" {
		input.Description = r.Description
	}
	return input, nil
}

func requireRawJSON(value any) error {
	raw, _ := value.(json.RawMessage)
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return errors.New("is required")
	}
	return nil
}
