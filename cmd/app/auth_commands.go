package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/blueprint-secrets/cmd/app/commands"
	"github.com/allisson/blueprint-secrets/internal/app"
	"github.com/allisson/blueprint-secrets/internal/config"
)

func getAuthCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-client",
			Usage: "Generate credentials for a new client and print its clients file entry",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Human-readable client name",
				},
				&cli.BoolFlag{
					Name:    "active",
					Aliases: []string{"a"},
					Value:   true,
					Usage:   "Whether the client can authenticate immediately",
				},
				&cli.StringSliceFlag{
					Name:    "group",
					Aliases: []string{"g"},
					Usage:   "Group the client belongs to (repeatable, e.g. --group DEPLOYER)",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				defer commands.CloseContainer(container)

				return commands.RunCreateClient(
					ctx,
					container.ClientUseCase(),
					container.Logger(),
					cmd.String("name"),
					cmd.Bool("active"),
					cmd.StringSlice("group"),
					cmd.String("format"),
					commands.DefaultIO().Writer,
				)
			},
		},
	}
}
