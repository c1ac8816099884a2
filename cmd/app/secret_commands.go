package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/blueprint-secrets/cmd/app/commands"
	"github.com/allisson/blueprint-secrets/internal/app"
	"github.com/allisson/blueprint-secrets/internal/config"
)

func getSecretCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "get-secrets",
			Usage: "Print the secret document, or one value with --key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "key",
					Aliases: []string{"k"},
					Usage:   "Print only this secret",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' (KEY=value lines) or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer commands.CloseContainer(container)

				useCase, err := container.SecretsUseCase()
				if err != nil {
					return err
				}
				return commands.RunGetSecrets(
					ctx,
					useCase,
					cmd.String("key"),
					cmd.String("format"),
					commands.DefaultIO().Writer,
				)
			},
		},
		{
			Name:  "set-secrets",
			Usage: "Write a new version of the secret document",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "secrets",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "JSON object of string values, a JSON string holding one, or '-' for stdin",
				},
				&cli.StringFlag{
					Name:    "description",
					Aliases: []string{"d"},
					Usage:   "Description stored alongside the document",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer commands.CloseContainer(container)

				useCase, err := container.SecretsUseCase()
				if err != nil {
					return err
				}

				var description *string
				if cmd.IsSet("description") {
					value := cmd.String("description")
					description = &value
				}

				return commands.RunSetSecrets(
					ctx,
					useCase,
					container.Logger(),
					cmd.String("secrets"),
					description,
					commands.DefaultIO(),
				)
			},
		},
	}
}
