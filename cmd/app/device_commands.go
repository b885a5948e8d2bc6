package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/devicetrust/cmd/app/commands"
	"github.com/allisson/devicetrust/internal/app"
)

func getDeviceCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "set-pairing-secret",
			Usage: "Generate a new pairing secret for a device",
			Flags: []cli.Flag{deviceIDFlag(), formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					registry, err := container.DeviceRegistry()
					if err != nil {
						return err
					}
					pairingUseCase, err := container.PairingUseCase()
					if err != nil {
						return err
					}

					return commands.RunSetPairingSecret(
						ctx,
						registry,
						pairingUseCase,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("device-id"),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "issue-certificate",
			Usage: "Issue a device certificate and print its private key",
			Flags: []cli.Flag{
				deviceIDFlag(),
				&cli.StringFlag{
					Name:    "recipient",
					Aliases: []string{"r"},
					Usage:   "age public key (age1...) the private key is sealed to",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					security, err := container.DeviceSecurity()
					if err != nil {
						return err
					}

					return commands.RunIssueCertificate(
						ctx,
						security,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("device-id"),
						cmd.String("recipient"),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "revoke-certificate",
			Usage: "Permanently revoke a device certificate",
			Flags: []cli.Flag{deviceIDFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					security, err := container.DeviceSecurity()
					if err != nil {
						return err
					}

					return commands.RunRevokeCertificate(
						ctx,
						security,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("device-id"),
					)
				})
			},
		},
	}
}
