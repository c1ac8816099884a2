package validation

import (
	"bytes"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	apperrors "github.com/allisson/blueprint-secrets/internal/errors"
)

// ErrMalformedJSON indicates the value handed to a schema validator is not JSON at all.
var ErrMalformedJSON = apperrors.Wrap(apperrors.ErrInvalidInput, "malformed JSON")

// FlatStringMapSchema accepts an object whose keys are non-empty and whose values are strings.
const FlatStringMapSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "propertyNames": {"minLength": 1},
  "additionalProperties": {"type": "string"}
}`

// SchemaError lists every violation found while validating a document.
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return strings.Join(e.Violations, "; ")
}

// Unwrap lets callers match schema failures against ErrInvalidInput.
func (e *SchemaError) Unwrap() error {
	return apperrors.ErrInvalidInput
}

// JSONSchema is a compiled JSON Schema (draft 2020-12). It is safe for concurrent use.
type JSONSchema struct {
	schema *jsonschema.Schema
}

// CompileJSONSchema compiles schemaJSON under the given resource url.
func CompileJSONSchema(url, schemaJSON string) (*JSONSchema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}

	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &JSONSchema{schema: compiled}, nil
}

// MustCompileJSONSchema is like CompileJSONSchema but panics on error.
// It is meant for package level schemas known at build time.
func MustCompileJSONSchema(url, schemaJSON string) *JSONSchema {
	s, err := CompileJSONSchema(url, schemaJSON)
	if err != nil {
		panic(err)
	}
	return s
}

// ValidateJSON decodes raw and validates it against the schema.
// Undecodable input yields ErrMalformedJSON; schema violations yield a *SchemaError.
func (s *JSONSchema) ValidateJSON(raw []byte) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return apperrors.Wrap(ErrMalformedJSON, err.Error())
	}

	if err := s.schema.Validate(doc); err != nil {
		return toSchemaError(err)
	}
	return nil
}

func toSchemaError(err error) error {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return &SchemaError{Violations: []string{err.Error()}}
	}

	violations := collectViolations(verr)
	if len(violations) == 0 {
		violations = []string{verr.Error()}
	}
	return &SchemaError{Violations: violations}
}

// collectViolations walks a ValidationError tree and returns the leaf messages.
// Each leaf message already names its instance location ("at '/a': ...").
func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		return []string{verr.Error()}
	}

	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}
