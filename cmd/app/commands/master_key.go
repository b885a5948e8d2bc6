package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	cryptoDomain "github.com/allisson/devicetrust/internal/crypto/domain"
	cryptoService "github.com/allisson/devicetrust/internal/crypto/service"
)

// RunCreateMasterKey generates a 32-byte master key and prints it as environment
// variables. With kmsProvider and kmsKeyURI the key is encrypted by the KMS first and
// MASTER_KEY holds the ciphertext. Key material is zeroed after encoding.
//
// For local development use kmsProvider="localsecrets" with kmsKeyURI="base64key://...".
func RunCreateMasterKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	kmsProvider, kmsKeyURI string,
) error {
	if (kmsProvider == "") != (kmsKeyURI == "") {
		return fmt.Errorf("--kms-provider and --kms-key-uri are required together")
	}

	masterKey := make([]byte, 32)
	if _, err := rand.Read(masterKey); err != nil {
		return fmt.Errorf("failed to generate master key: %w", err)
	}
	defer cryptoDomain.Zero(masterKey)

	if kmsProvider == "" {
		logger.Warn("master key generated without kms, store it in a secrets manager")

		_, _ = fmt.Fprintln(writer, "# Master Key Configuration")
		_, _ = fmt.Fprintln(writer, "# Copy this environment variable to your .env file or secrets manager")
		_, _ = fmt.Fprintln(writer)
		_, _ = fmt.Fprintf(writer, "MASTER_KEY=\"%s\"\n", base64.StdEncoding.EncodeToString(masterKey))
		return nil
	}

	keeperInterface, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		if closeErr := keeperInterface.Close(); closeErr != nil {
			logger.Warn("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	keeper, ok := keeperInterface.(interface {
		Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	})
	if !ok {
		return fmt.Errorf("KMS keeper does not support encryption")
	}

	ciphertext, err := keeper.Encrypt(ctx, masterKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt master key with KMS: %w", err)
	}

	logger.Info("master key encrypted with kms", slog.String("kms_provider", kmsProvider))

	_, _ = fmt.Fprintln(writer, "# Master Key Configuration (KMS Mode)")
	_, _ = fmt.Fprintln(writer, "# Copy these environment variables to your .env file or secrets manager")
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintf(writer, "KMS_PROVIDER=\"%s\"\n", kmsProvider)
	_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	_, _ = fmt.Fprintf(writer, "MASTER_KEY=\"%s\"\n", base64.StdEncoding.EncodeToString(ciphertext))
	return nil
}
