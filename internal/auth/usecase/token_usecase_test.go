package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/devicetrust/internal/auth/domain"
	authRepository "github.com/allisson/devicetrust/internal/auth/repository"
	authService "github.com/allisson/devicetrust/internal/auth/service"
	"github.com/allisson/devicetrust/internal/config"
)

type mockCredentialRepository struct {
	mock.Mock
}

func (m *mockCredentialRepository) Get(ctx context.Context, deviceID string) (*authDomain.CredentialRecord, error) {
	args := m.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.CredentialRecord), args.Error(1)
}

func (m *mockCredentialRepository) Replace(ctx context.Context, record *authDomain.CredentialRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockCredentialRepository) CompareAndSwap(
	ctx context.Context,
	expected string,
	next *authDomain.CredentialRecord,
) error {
	args := m.Called(ctx, expected, next)
	return args.Error(0)
}

func (m *mockCredentialRepository) Delete(ctx context.Context, deviceID string) error {
	args := m.Called(ctx, deviceID)
	return args.Error(0)
}

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func testConfig() *config.Config {
	return &config.Config{
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 30 * 24 * time.Hour,
	}
}

func newTestTokenUseCase(t *testing.T, repo CredentialRepository) *tokenUseCase {
	t.Helper()
	signer, err := authService.NewTokenSigner(testKey(t))
	require.NoError(t, err)
	fingerprinter, err := authService.NewTokenFingerprinter(testKey(t))
	require.NoError(t, err)
	return NewTokenUseCase(testConfig(), repo, signer, fingerprinter).(*tokenUseCase)
}

func TestTokenUseCase_IssueCredentials(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_IssueAndVerify", func(t *testing.T) {
		uc := newTestTokenUseCase(t, authRepository.NewMemoryCredentialRepository())

		creds, err := uc.IssueCredentials(ctx, "lock-1", []string{"read:sensor", "control:lock"})
		require.NoError(t, err)
		assert.Equal(t, "lock-1", creds.DeviceID)
		assert.True(t, creds.HasPermission("control:lock"))
		assert.True(t, creds.RefreshExpiresAt.After(creds.ExpiresAt))
		assert.WithinDuration(t, time.Now().Add(time.Hour), creds.ExpiresAt, 2*time.Second)

		assert.True(t, uc.VerifyAccessToken(ctx, "lock-1", creds.AccessToken))
	})

	t.Run("Success_NewIssuanceSupersedesOld", func(t *testing.T) {
		uc := newTestTokenUseCase(t, authRepository.NewMemoryCredentialRepository())

		first, err := uc.IssueCredentials(ctx, "lock-1", nil)
		require.NoError(t, err)
		second, err := uc.IssueCredentials(ctx, "lock-1", nil)
		require.NoError(t, err)

		assert.False(t, uc.VerifyAccessToken(ctx, "lock-1", first.AccessToken))
		assert.True(t, uc.VerifyAccessToken(ctx, "lock-1", second.AccessToken))
	})

	t.Run("Error_RepositoryFails", func(t *testing.T) {
		repo := &mockCredentialRepository{}
		repo.On("Replace", ctx, mock.AnythingOfType("*domain.CredentialRecord")).
			Return(errors.New("database down")).Once()
		uc := newTestTokenUseCase(t, repo)

		creds, err := uc.IssueCredentials(ctx, "lock-1", nil)
		assert.Error(t, err)
		assert.Nil(t, creds)
		repo.AssertExpectations(t)
	})
}

func TestTokenUseCase_VerifyAccessToken(t *testing.T) {
	ctx := context.Background()
	uc := newTestTokenUseCase(t, authRepository.NewMemoryCredentialRepository())

	creds, err := uc.IssueCredentials(ctx, "cam-1", []string{"read:video"})
	require.NoError(t, err)

	t.Run("Error_WrongDevice", func(t *testing.T) {
		assert.False(t, uc.VerifyAccessToken(ctx, "cam-2", creds.AccessToken))
	})

	t.Run("Error_RefreshTokenAsAccess", func(t *testing.T) {
		assert.False(t, uc.VerifyAccessToken(ctx, "cam-1", creds.RefreshToken))
	})

	t.Run("Error_Garbage", func(t *testing.T) {
		assert.False(t, uc.VerifyAccessToken(ctx, "cam-1", "garbage"))
		assert.False(t, uc.VerifyAccessToken(ctx, "cam-1", ""))
	})

	t.Run("Error_Expired", func(t *testing.T) {
		uc.now = func() time.Time { return time.Now().Add(time.Hour + time.Second) }
		defer func() { uc.now = time.Now }()

		assert.False(t, uc.VerifyAccessToken(ctx, "cam-1", creds.AccessToken))
	})

	t.Run("Error_Revoked", func(t *testing.T) {
		other, err := uc.IssueCredentials(ctx, "cam-3", nil)
		require.NoError(t, err)
		require.NoError(t, uc.Revoke(ctx, "cam-3"))

		assert.False(t, uc.VerifyAccessToken(ctx, "cam-3", other.AccessToken))
	})
}

func TestTokenUseCase_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RefreshExactlyOnce", func(t *testing.T) {
		uc := newTestTokenUseCase(t, authRepository.NewMemoryCredentialRepository())
		creds, err := uc.IssueCredentials(ctx, "thermo-1", []string{"control:temperature"})
		require.NoError(t, err)

		refreshed, err := uc.Refresh(ctx, "thermo-1", creds.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, []string{"control:temperature"}, refreshed.Permissions)
		assert.NotEqual(t, creds.RefreshToken, refreshed.RefreshToken)
		assert.True(t, uc.VerifyAccessToken(ctx, "thermo-1", refreshed.AccessToken))
		assert.False(t, uc.VerifyAccessToken(ctx, "thermo-1", creds.AccessToken))

		_, err = uc.Refresh(ctx, "thermo-1", creds.RefreshToken)
		assert.ErrorIs(t, err, authDomain.ErrTokenInvalid)
	})

	t.Run("Error_AccessTokenRejected", func(t *testing.T) {
		uc := newTestTokenUseCase(t, authRepository.NewMemoryCredentialRepository())
		creds, err := uc.IssueCredentials(ctx, "thermo-1", nil)
		require.NoError(t, err)

		_, err = uc.Refresh(ctx, "thermo-1", creds.AccessToken)
		assert.ErrorIs(t, err, authDomain.ErrTokenInvalid)
	})

	t.Run("Error_Expired", func(t *testing.T) {
		uc := newTestTokenUseCase(t, authRepository.NewMemoryCredentialRepository())
		creds, err := uc.IssueCredentials(ctx, "thermo-1", nil)
		require.NoError(t, err)

		uc.now = func() time.Time { return time.Now().Add(31 * 24 * time.Hour) }
		_, err = uc.Refresh(ctx, "thermo-1", creds.RefreshToken)
		assert.ErrorIs(t, err, authDomain.ErrTokenInvalid)
	})

	t.Run("Error_NoActiveSet", func(t *testing.T) {
		uc := newTestTokenUseCase(t, authRepository.NewMemoryCredentialRepository())
		creds, err := uc.IssueCredentials(ctx, "thermo-1", nil)
		require.NoError(t, err)
		require.NoError(t, uc.Revoke(ctx, "thermo-1"))

		_, err = uc.Refresh(ctx, "thermo-1", creds.RefreshToken)
		assert.ErrorIs(t, err, authDomain.ErrTokenInvalid)
	})

	t.Run("Success_ConcurrentRefreshSingleWinner", func(t *testing.T) {
		uc := newTestTokenUseCase(t, authRepository.NewMemoryCredentialRepository())
		creds, err := uc.IssueCredentials(ctx, "thermo-1", nil)
		require.NoError(t, err)

		var wins atomic.Int32
		var winner atomic.Pointer[authDomain.DeviceCredentials]
		var wg sync.WaitGroup
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if refreshed, err := uc.Refresh(ctx, "thermo-1", creds.RefreshToken); err == nil {
					wins.Add(1)
					winner.Store(refreshed)
				}
			}()
		}
		wg.Wait()

		require.Equal(t, int32(1), wins.Load())
		assert.True(t, uc.VerifyAccessToken(ctx, "thermo-1", winner.Load().AccessToken))
	})

	t.Run("Error_SwapConflict", func(t *testing.T) {
		repo := &mockCredentialRepository{}
		uc := newTestTokenUseCase(t, repo)

		repo.On("Replace", ctx, mock.Anything).Return(nil).Once()
		creds, err := uc.IssueCredentials(ctx, "thermo-1", nil)
		require.NoError(t, err)
		stored := repo.Calls[0].Arguments.Get(1).(*authDomain.CredentialRecord)

		repo.On("Get", ctx, "thermo-1").Return(stored, nil).Once()
		repo.On("CompareAndSwap", ctx, stored.RefreshFingerprint, mock.Anything).
			Return(authDomain.ErrCredentialsConflict).Once()

		_, err = uc.Refresh(ctx, "thermo-1", creds.RefreshToken)
		assert.ErrorIs(t, err, authDomain.ErrTokenInvalid)
		repo.AssertExpectations(t)
	})
}
