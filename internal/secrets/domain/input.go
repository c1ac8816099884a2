package domain

import (
	"bytes"
	"encoding/json"

	"github.com/allisson/blueprint-secrets/internal/errors"
	"github.com/allisson/blueprint-secrets/internal/validation"
)

var documentSchema = validation.MustCompileJSONSchema(
	"https://blueprint-secrets.local/schemas/secret-document.json",
	validation.FlatStringMapSchema,
)

// DecodeSecrets turns the raw "secrets" argument of a write into a Document.
// The argument is either a JSON object or a JSON string holding an encoded object.
// Nothing here touches the store: every failure is an invalid-input error.
func DecodeSecrets(raw json.RawMessage) (Document, error) {
	payload := bytes.TrimSpace(raw)
	if len(payload) == 0 {
		return nil, errors.Wrap(ErrInvalidSecretsShape, "secrets is required")
	}

	if payload[0] == '"' {
		var encoded string
		if err := json.Unmarshal(payload, &encoded); err != nil {
			return nil, errors.Wrap(ErrInvalidSecretsJSON, err.Error())
		}
		payload = []byte(encoded)
		if !json.Valid(payload) {
			return nil, ErrInvalidSecretsJSON
		}
	}

	if err := documentSchema.ValidateJSON(payload); err != nil {
		if errors.Is(err, validation.ErrMalformedJSON) {
			return nil, ErrInvalidSecretsJSON
		}
		return nil, errors.Wrap(ErrInvalidSecretsShape, err.Error())
	}

	var doc Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, errors.Wrap(ErrInvalidSecretsShape, err.Error())
	}
	return doc, nil
}

// DecodeSecretsString is DecodeSecrets for a caller that holds the argument as
// text, such as a command line flag. Text that is not JSON is invalid.
func DecodeSecretsString(s string) (Document, error) {
	if !json.Valid([]byte(s)) {
		return nil, ErrInvalidSecretsJSON
	}
	return DecodeSecrets(json.RawMessage(s))
}
