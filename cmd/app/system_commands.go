package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/devicetrust/cmd/app/commands"
	"github.com/allisson/devicetrust/internal/app"
	cryptoService "github.com/allisson/devicetrust/internal/crypto/service"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the health and metrics servers",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					return commands.RunServer(ctx, container, version)
				})
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					cfg := container.Config()
					return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
				})
			},
		},
		{
			Name:  "create-master-key",
			Usage: "Generate a new master key, optionally encrypted with a KMS",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "kms-provider",
					Usage: "KMS provider (localsecrets, gcpkms, awskms, azurekeyvault, hashivault)",
				},
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Usage: "KMS key URI (e.g., base64key://, gcpkms://projects/.../cryptoKeys/...)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					return commands.RunCreateMasterKey(
						ctx,
						cryptoService.NewKMSService(),
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("kms-provider"),
						cmd.String("kms-key-uri"),
					)
				})
			},
		},
	}
}
