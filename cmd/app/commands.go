package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/allisson/devicetrust/internal/app"
	"github.com/allisson/devicetrust/internal/config"
)

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getDeviceCommands()...)
	cmds = append(cmds, getAuditCommands()...)
	return cmds
}

// withContainer loads and validates the configuration, builds a container for fn and
// shuts it down afterwards.
func withContainer(ctx context.Context, fn func(container *app.Container) error) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	container := app.NewContainer(cfg)
	defer func() {
		if err := container.Shutdown(ctx); err != nil {
			container.Logger().Error("failed to shutdown container", slog.Any("error", err))
		}
	}()

	return fn(container)
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func deviceIDFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "device-id",
		Aliases:  []string{"d"},
		Required: true,
		Usage:    "Device ID as known to the device registry",
	}
}
