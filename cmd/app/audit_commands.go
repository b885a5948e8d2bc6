package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/devicetrust/cmd/app/commands"
	"github.com/allisson/devicetrust/internal/app"
)

func getAuditCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "list-security-events",
			Usage: "List recent security events, newest first",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "device-id",
					Aliases: []string{"d"},
					Usage:   "Only list events of this device",
				},
				&cli.IntFlag{
					Name:    "limit",
					Aliases: []string{"l"},
					Value:   50,
					Usage:   "Maximum number of events",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					auditUseCase, err := container.AuditUseCase()
					if err != nil {
						return err
					}

					return commands.RunListSecurityEvents(
						ctx,
						auditUseCase,
						commands.DefaultIO().Writer,
						cmd.String("device-id"),
						int(cmd.Int("limit")),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "verify-security-events",
			Usage: "Verify the signatures of security events",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "offset",
					Value: 0,
					Usage: "Number of newest events to skip",
				},
				&cli.IntFlag{
					Name:    "limit",
					Aliases: []string{"l"},
					Value:   1000,
					Usage:   "Maximum number of events to verify",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					auditUseCase, err := container.AuditUseCase()
					if err != nil {
						return err
					}

					return commands.RunVerifySecurityEvents(
						ctx,
						auditUseCase,
						container.Logger(),
						commands.DefaultIO().Writer,
						int(cmd.Int("offset")),
						int(cmd.Int("limit")),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "clean-security-events",
			Usage: "Delete security events older than specified days",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     "days",
					Aliases:  []string{"d"},
					Required: true,
					Usage:    "Delete security events older than this many days",
				},
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Value:   false,
					Usage:   "Show how many events would be deleted without deleting",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					auditUseCase, err := container.AuditUseCase()
					if err != nil {
						return err
					}

					return commands.RunCleanSecurityEvents(
						ctx,
						auditUseCase,
						container.Logger(),
						commands.DefaultIO().Writer,
						int(cmd.Int("days")),
						cmd.Bool("dry-run"),
						cmd.String("format"),
					)
				})
			},
		},
	}
}
