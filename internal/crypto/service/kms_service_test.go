package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/secrets"

	"github.com/allisson/devicetrust/internal/config"
	cryptoDomain "github.com/allisson/devicetrust/internal/crypto/domain"
	apperrors "github.com/allisson/devicetrust/internal/errors"
)

// generateLocalSecretsURI generates a base64key:// URI for testing.
func generateLocalSecretsURI(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return "base64key://" + base64.URLEncoding.EncodeToString(key)
}

func TestKMSService_OpenKeeper(t *testing.T) {
	ctx := context.Background()
	kmsService := NewKMSService()

	t.Run("Success_LocalSecrets", func(t *testing.T) {
		keeper, err := kmsService.OpenKeeper(ctx, generateLocalSecretsURI(t))
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, keeper.Close())
		}()

		_, ok := keeper.(*secrets.Keeper)
		assert.True(t, ok)
	})

	t.Run("Error_InvalidURI", func(t *testing.T) {
		keeper, err := kmsService.OpenKeeper(ctx, "invalid://uri")
		assert.Error(t, err)
		assert.Nil(t, keeper)
		assert.Contains(t, err.Error(), "failed to open KMS keeper")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_MissingScheme", func(t *testing.T) {
		keeper, err := kmsService.OpenKeeper(ctx, "projects/p/locations/l/keyRings/r/cryptoKeys/k")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		assert.Nil(t, keeper)
	})
}

func TestKMSService_LoadWrappedMasterKey(t *testing.T) {
	ctx := context.Background()
	kmsService := NewKMSService()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	keyURI := generateLocalSecretsURI(t)

	rawKey := make([]byte, cryptoDomain.MasterKeySize)
	_, err := rand.Read(rawKey)
	require.NoError(t, err)

	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	require.NoError(t, err)
	wrapped, err := keeper.Encrypt(ctx, rawKey)
	require.NoError(t, err)
	require.NoError(t, keeper.Close())

	t.Run("Success_UnwrapWithSameKeeper", func(t *testing.T) {
		cfg := &config.Config{
			MasterKey:   base64.StdEncoding.EncodeToString(wrapped),
			KMSProvider: "localsecrets",
			KMSKeyURI:   keyURI,
		}

		mk, err := cryptoDomain.LoadMasterKey(ctx, cfg, kmsService, logger)
		require.NoError(t, err)
		defer mk.Close()
		assert.Equal(t, rawKey, mk.Key)
	})

	t.Run("Error_UnwrapWithDifferentKeeper", func(t *testing.T) {
		cfg := &config.Config{
			MasterKey:   base64.StdEncoding.EncodeToString(wrapped),
			KMSProvider: "localsecrets",
			KMSKeyURI:   generateLocalSecretsURI(t),
		}

		_, err := cryptoDomain.LoadMasterKey(ctx, cfg, kmsService, logger)
		assert.ErrorIs(t, err, cryptoDomain.ErrKMSUnavailable)
	})
}
