package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	authUseCase "github.com/allisson/devicetrust/internal/auth/usecase"
	deviceDomain "github.com/allisson/devicetrust/internal/device/domain"
)

// RunSetPairingSecret generates a new pairing secret for a registered device and
// prints it. Only the Argon2id hash is stored, so the secret cannot be shown again.
func RunSetPairingSecret(
	ctx context.Context,
	registry deviceDomain.Registry,
	pairingUseCase authUseCase.PairingUseCase,
	logger *slog.Logger,
	writer io.Writer,
	deviceID string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	if _, err := registry.GetDevice(ctx, deviceID); err != nil {
		return fmt.Errorf("failed to look up device %s: %w", deviceID, err)
	}

	secret, err := pairingUseCase.SetSecret(ctx, deviceID)
	if err != nil {
		return fmt.Errorf("failed to set pairing secret: %w", err)
	}

	logger.Info("pairing secret set", slog.String("device_id", deviceID))

	if format == "json" {
		return writeJSON(writer, map[string]string{
			"device_id":      deviceID,
			"pairing_secret": secret,
		})
	}

	_, _ = fmt.Fprintf(writer, "Device ID:      %s\n", deviceID)
	_, _ = fmt.Fprintf(writer, "Pairing Secret: %s\n\n", secret)
	_, _ = fmt.Fprintln(writer, "WARNING: This secret will not be shown again. Deliver it to the device now.")
	return nil
}
