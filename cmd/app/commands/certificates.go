package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"filippo.io/age"
	"filippo.io/age/armor"

	securityUseCase "github.com/allisson/devicetrust/internal/security/usecase"
)

// sealPrivateKey encrypts key to an age recipient and armors the result.
func sealPrivateKey(key []byte, recipientKey string) ([]byte, error) {
	recipient, err := age.ParseX25519Recipient(recipientKey)
	if err != nil {
		return nil, fmt.Errorf("parsing recipient key %q: %w", recipientKey, err)
	}

	var sealed bytes.Buffer
	armorWriter := armor.NewWriter(&sealed)
	writer, err := age.Encrypt(armorWriter, recipient)
	if err != nil {
		return nil, fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := writer.Write(key); err != nil {
		return nil, fmt.Errorf("writing private key to age encryptor: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalizing age encryption: %w", err)
	}
	if err := armorWriter.Close(); err != nil {
		return nil, fmt.Errorf("finalizing age armor: %w", err)
	}
	return sealed.Bytes(), nil
}

// RunIssueCertificate issues a certificate for a registered device and prints it with
// its private key. With recipient the private key is sealed to that age public key,
// otherwise it is printed as plain PEM. The key is never stored.
func RunIssueCertificate(
	ctx context.Context,
	security securityUseCase.DeviceSecurity,
	logger *slog.Logger,
	writer io.Writer,
	deviceID string,
	recipient string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	cert, err := security.GenerateDeviceCertificate(ctx, deviceID)
	if err != nil {
		return fmt.Errorf("failed to issue certificate: %w", err)
	}

	privateKey := cert.PrivateKey
	keyFormat := "pem"
	if recipient != "" {
		privateKey, err = sealPrivateKey(cert.PrivateKey, recipient)
		if err != nil {
			return fmt.Errorf("failed to seal private key: %w", err)
		}
		keyFormat = "age"
	} else {
		logger.Warn("printing unsealed device private key", slog.String("device_id", deviceID))
	}

	logger.Info("certificate issued",
		slog.String("device_id", deviceID),
		slog.String("serial_number", cert.SerialNumber),
	)

	if format == "json" {
		return writeJSON(writer, map[string]any{
			"device_id":          cert.DeviceID,
			"serial_number":      cert.SerialNumber,
			"issued_at":          cert.IssuedAt,
			"expires_at":         cert.ExpiresAt,
			"certificate":        string(cert.Certificate),
			"private_key":        string(privateKey),
			"private_key_format": keyFormat,
		})
	}

	_, _ = fmt.Fprintf(writer, "Device ID:     %s\n", cert.DeviceID)
	_, _ = fmt.Fprintf(writer, "Serial Number: %s\n", cert.SerialNumber)
	_, _ = fmt.Fprintf(writer, "Issued At:     %s\n", cert.IssuedAt.Format(time.RFC3339))
	_, _ = fmt.Fprintf(writer, "Expires At:    %s\n\n", cert.ExpiresAt.Format(time.RFC3339))
	_, _ = fmt.Fprintf(writer, "%s\n", cert.Certificate)
	_, _ = fmt.Fprintf(writer, "%s\n", privateKey)
	_, _ = fmt.Fprintln(writer, "WARNING: The private key is not stored and will not be shown again.")
	return nil
}

// RunRevokeCertificate permanently revokes the device's certificate.
func RunRevokeCertificate(
	ctx context.Context,
	security securityUseCase.DeviceSecurity,
	logger *slog.Logger,
	writer io.Writer,
	deviceID string,
) error {
	if err := security.RevokeDeviceCertificate(ctx, deviceID); err != nil {
		return fmt.Errorf("failed to revoke certificate: %w", err)
	}

	logger.Info("certificate revoked", slog.String("device_id", deviceID))
	_, _ = fmt.Fprintf(writer, "Certificate of device %s revoked\n", deviceID)
	return nil
}
