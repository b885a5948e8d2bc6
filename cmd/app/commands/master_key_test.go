package commands

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/devicetrust/internal/crypto/domain"
)

type MockKMSService struct {
	mock.Mock
}

func (m *MockKMSService) OpenKeeper(ctx context.Context, uri string) (cryptoDomain.KMSKeeper, error) {
	args := m.Called(ctx, uri)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(cryptoDomain.KMSKeeper), args.Error(1)
}

type MockKMSKeeper struct {
	mock.Mock
}

func (m *MockKMSKeeper) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	args := m.Called(ctx, plaintext)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockKMSKeeper) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	args := m.Called(ctx, ciphertext)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockKMSKeeper) Close() error {
	return m.Called().Error(0)
}

func TestRunCreateMasterKey(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("plain", func(t *testing.T) {
		var out bytes.Buffer
		err := RunCreateMasterKey(ctx, nil, logger, &out, "", "")
		require.NoError(t, err)

		match := regexp.MustCompile(`MASTER_KEY="([^"]+)"`).FindStringSubmatch(out.String())
		require.Len(t, match, 2)
		key, err := base64.StdEncoding.DecodeString(match[1])
		require.NoError(t, err)
		require.Len(t, key, 32)
	})

	t.Run("kms", func(t *testing.T) {
		mockService := &MockKMSService{}
		mockKeeper := &MockKMSKeeper{}

		mockService.On("OpenKeeper", ctx, "base64key://...").Return(mockKeeper, nil)
		mockKeeper.On("Encrypt", ctx, mock.AnythingOfType("[]uint8")).Return([]byte("encrypted"), nil)
		mockKeeper.On("Close").Return(nil)

		var out bytes.Buffer
		err := RunCreateMasterKey(ctx, mockService, logger, &out, "localsecrets", "base64key://...")
		require.NoError(t, err)
		require.Contains(t, out.String(), `KMS_PROVIDER="localsecrets"`)
		require.Contains(t, out.String(), `MASTER_KEY="`+base64.StdEncoding.EncodeToString([]byte("encrypted"))+`"`)

		mockService.AssertExpectations(t)
		mockKeeper.AssertExpectations(t)
	})

	t.Run("partial-kms-parameters", func(t *testing.T) {
		err := RunCreateMasterKey(ctx, nil, logger, nil, "localsecrets", "")
		require.Error(t, err)
		require.Contains(t, err.Error(), "required together")
	})

	t.Run("kms-error", func(t *testing.T) {
		mockService := &MockKMSService{}
		mockService.On("OpenKeeper", ctx, "invalid").Return(nil, errors.New("kms error"))

		err := RunCreateMasterKey(ctx, mockService, logger, &bytes.Buffer{}, "localsecrets", "invalid")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to open KMS keeper")
	})
}
