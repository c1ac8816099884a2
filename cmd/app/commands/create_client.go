package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	authDomain "github.com/allisson/blueprint-secrets/internal/auth/domain"
	authRepository "github.com/allisson/blueprint-secrets/internal/auth/repository"
	authUseCase "github.com/allisson/blueprint-secrets/internal/auth/usecase"
)

// RunCreateClient provisions a client and prints its credentials. Clients live in the
// clients file, so nothing is persisted: the operator appends the printed entry to
// AUTH_CLIENTS_FILE and restarts the server.
func RunCreateClient(
	ctx context.Context,
	clientUseCase authUseCase.ClientUseCase,
	logger *slog.Logger,
	name string,
	isActive bool,
	groups []string,
	format string,
	writer io.Writer,
) error {
	logger.Info("creating new client", slog.String("name", name))

	output, err := clientUseCase.Create(ctx, &authDomain.CreateClientInput{
		Name:     name,
		IsActive: isActive,
		Groups:   groups,
	})
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	entry, err := authRepository.MarshalClientsFile(output.Client)
	if err != nil {
		return fmt.Errorf("failed to render clients file entry: %w", err)
	}

	switch format {
	case "json":
		err = writeJSON(writer, map[string]any{
			"client_id":    output.Client.ID.String(),
			"secret":       output.PlainSecret,
			"clients_file": string(entry),
		})
	default:
		err = outputClientText(writer, output, entry)
	}
	if err != nil {
		return err
	}

	logger.Info("client created successfully",
		slog.String("client_id", output.Client.ID.String()),
		slog.String("name", name),
		slog.Bool("is_active", isActive),
	)
	return nil
}

func outputClientText(writer io.Writer, output *authDomain.CreateClientOutput, entry []byte) error {
	_, err := fmt.Fprintf(writer,
		"\nClient created successfully!\nClient ID: %s\nSecret: %s\n\n"+
			"Add the following to the clients file:\n\n%s\n"+
			"IMPORTANT: The secret is shown only once. Store it securely.\n",
		output.Client.ID, output.PlainSecret, entry,
	)
	return err
}

func writeJSON(writer io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(writer, string(data))
	return err
}
