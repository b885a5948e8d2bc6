package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/devicetrust/internal/crypto/domain"
)

func TestHKDFKeyDeriver_Derive(t *testing.T) {
	deriver := NewHKDFKeyDeriver()
	masterKey := newKey(t)

	t.Run("Success_Deterministic", func(t *testing.T) {
		k1, err := deriver.Derive(masterKey, "device-token-signing-v1", 32)
		require.NoError(t, err)
		k2, err := deriver.Derive(masterKey, "device-token-signing-v1", 32)
		require.NoError(t, err)

		assert.Len(t, k1, 32)
		assert.Equal(t, k1, k2)
		assert.NotEqual(t, masterKey, k1)
	})

	t.Run("Success_LabelsAreIndependent", func(t *testing.T) {
		k1, err := deriver.Derive(masterKey, "device-token-signing-v1", 32)
		require.NoError(t, err)
		k2, err := deriver.Derive(masterKey, "device-message-encryption-v1", 32)
		require.NoError(t, err)

		assert.NotEqual(t, k1, k2)
	})

	t.Run("Error_InvalidMasterKey", func(t *testing.T) {
		_, err := deriver.Derive(make([]byte, 16), "label", 32)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})

	t.Run("Error_InvalidSize", func(t *testing.T) {
		_, err := deriver.Derive(masterKey, "label", 0)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
	})
}
