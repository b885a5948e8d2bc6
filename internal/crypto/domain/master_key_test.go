package domain

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/devicetrust/internal/config"
)

type mockKeeper struct {
	mock.Mock
}

func (m *mockKeeper) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	args := m.Called(ctx, ciphertext)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockKeeper) Close() error {
	args := m.Called()
	return args.Error(0)
}

type mockOpener struct {
	mock.Mock
}

func (m *mockOpener) OpenKeeper(ctx context.Context, keyURI string) (KMSKeeper, error) {
	args := m.Called(ctx, keyURI)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(KMSKeeper), args.Error(1)
}

func randomKey(t *testing.T, size int) []byte {
	t.Helper()
	key := make([]byte, size)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestLoadMasterKey(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Success_PlainKey", func(t *testing.T) {
		raw := randomKey(t, MasterKeySize)
		cfg := &config.Config{MasterKey: base64.StdEncoding.EncodeToString(raw)}

		mk, err := LoadMasterKey(ctx, cfg, nil, logger)
		require.NoError(t, err)
		assert.Equal(t, raw, mk.Key)
	})

	t.Run("Success_KMSUnwrap", func(t *testing.T) {
		raw := randomKey(t, MasterKeySize)
		wrapped := []byte("wrapped-master-key")
		cfg := &config.Config{
			MasterKey:   base64.StdEncoding.EncodeToString(wrapped),
			KMSProvider: "localsecrets",
			KMSKeyURI:   "base64key://abc",
		}

		keeper := &mockKeeper{}
		keeper.On("Decrypt", ctx, wrapped).Return(append([]byte(nil), raw...), nil).Once()
		keeper.On("Close").Return(nil).Once()
		opener := &mockOpener{}
		opener.On("OpenKeeper", ctx, "base64key://abc").Return(keeper, nil).Once()

		mk, err := LoadMasterKey(ctx, cfg, opener, logger)
		require.NoError(t, err)
		assert.Equal(t, raw, mk.Key)
		keeper.AssertExpectations(t)
		opener.AssertExpectations(t)
	})

	t.Run("Error_NotSet", func(t *testing.T) {
		_, err := LoadMasterKey(ctx, &config.Config{}, nil, logger)
		assert.ErrorIs(t, err, ErrMasterKeyNotSet)
	})

	t.Run("Error_InvalidBase64", func(t *testing.T) {
		_, err := LoadMasterKey(ctx, &config.Config{MasterKey: "not base64!"}, nil, logger)
		assert.ErrorIs(t, err, ErrInvalidMasterKeyBase64)
	})

	t.Run("Error_WrongSize", func(t *testing.T) {
		cfg := &config.Config{MasterKey: base64.StdEncoding.EncodeToString(randomKey(t, 16))}

		_, err := LoadMasterKey(ctx, cfg, nil, logger)
		assert.ErrorIs(t, err, ErrInvalidKeySize)
	})

	t.Run("Error_KeeperOpenFails", func(t *testing.T) {
		cfg := &config.Config{
			MasterKey:   base64.StdEncoding.EncodeToString([]byte("wrapped")),
			KMSProvider: "awskms",
			KMSKeyURI:   "awskms://alias/devicetrust",
		}
		opener := &mockOpener{}
		opener.On("OpenKeeper", ctx, cfg.KMSKeyURI).Return(nil, errors.New("no credentials")).Once()

		_, err := LoadMasterKey(ctx, cfg, opener, logger)
		assert.ErrorIs(t, err, ErrKMSUnavailable)
	})

	t.Run("Error_KeeperDecryptFails", func(t *testing.T) {
		cfg := &config.Config{
			MasterKey:   base64.StdEncoding.EncodeToString([]byte("wrapped")),
			KMSProvider: "gcpkms",
			KMSKeyURI:   "gcpkms://projects/p/locations/l/keyRings/r/cryptoKeys/k",
		}
		keeper := &mockKeeper{}
		keeper.On("Decrypt", ctx, []byte("wrapped")).Return(nil, errors.New("permission denied")).Once()
		keeper.On("Close").Return(nil).Once()
		opener := &mockOpener{}
		opener.On("OpenKeeper", ctx, cfg.KMSKeyURI).Return(keeper, nil).Once()

		_, err := LoadMasterKey(ctx, cfg, opener, logger)
		assert.ErrorIs(t, err, ErrKMSUnavailable)
		keeper.AssertExpectations(t)
	})
}

func TestMasterKey_Close(t *testing.T) {
	key := []byte{1, 2, 3, 4}
	mk := &MasterKey{Key: key}

	mk.Close()

	assert.Nil(t, mk.Key)
	assert.Equal(t, []byte{0, 0, 0, 0}, key)

	var nilKey *MasterKey
	assert.NotPanics(t, nilKey.Close)
}
