package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	secretsDomain "github.com/allisson/blueprint-secrets/internal/secrets/domain"
	"github.com/allisson/blueprint-secrets/internal/secrets/http/dto"
	secretsUseCase "github.com/allisson/blueprint-secrets/internal/secrets/usecase"
)

// RunGetSecrets prints the secret document, or a single value when key is set.
// The text format prints KEY=value lines for the document and the bare value for a key.
func RunGetSecrets(
	ctx context.Context,
	useCase secretsUseCase.SecretsUseCase,
	key string,
	format string,
	writer io.Writer,
) error {
	if key != "" {
		kv, err := useCase.GetKey(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to get secret %q: %w", key, err)
		}
		if format == "json" {
			return writeJSON(writer, dto.MapKeyValueToResponse(kv))
		}
		_, err = fmt.Fprintln(writer, kv.Value)
		return err
	}

	doc, err := useCase.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to get secrets: %w", err)
	}
	if format == "json" {
		return writeJSON(writer, dto.MapDocumentToResponse(doc))
	}

	var b strings.Builder
	for _, k := range doc.Secrets.Keys() {
		fmt.Fprintf(&b, "%s=%s\n", k, doc.Secrets[k])
	}
	_, err = io.WriteString(writer, b.String())
	return err
}

// RunSetSecrets writes a new document version. secrets is a JSON object or a JSON
// string holding one; "-" reads it from input. A description of nil leaves the
// stored description untouched.
func RunSetSecrets(
	ctx context.Context,
	useCase secretsUseCase.SecretsUseCase,
	logger *slog.Logger,
	secrets string,
	description *string,
	io IOTuple,
) error {
	if secrets == "-" {
		data, err := readAll(io.Reader)
		if err != nil {
			return fmt.Errorf("failed to read secrets: %w", err)
		}
		secrets = data
	}

	doc, err := secretsDomain.DecodeSecretsString(strings.TrimSpace(secrets))
	if err != nil {
		return fmt.Errorf("invalid secrets: %w", err)
	}

	result, err := useCase.Set(ctx, &secretsDomain.SetInput{Secrets: doc, Description: description})
	if err != nil {
		return fmt.Errorf("failed to set secrets: %w", err)
	}

	if result.Warning != "" {
		logger.Warn("secrets saved with a warning", slog.String("warning", result.Warning))
		_, _ = fmt.Fprintf(io.Writer, "Warning: %s\n", result.Warning)
	}
	_, err = fmt.Fprintf(io.Writer, "Secrets saved (%d keys). Version ID: %s\n", len(result.Secrets), result.VersionID)
	return err
}

func readAll(reader io.Reader) (string, error) {
	if reader == nil {
		return "", fmt.Errorf("no input available")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
