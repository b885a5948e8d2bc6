// Package usecase implements device credential issuance, verification and refresh,
// and pairing secret provisioning.
package usecase

import (
	"context"

	authDomain "github.com/allisson/devicetrust/internal/auth/domain"
)

// CredentialRepository persists the single active credential set of every device.
//
// Implementations must make Replace and CompareAndSwap atomic per device and must
// never serialize operations across distinct devices.
type CredentialRepository interface {
	// Get returns the active credential record or ErrCredentialsNotFound.
	Get(ctx context.Context, deviceID string) (*authDomain.CredentialRecord, error)

	// Replace unconditionally overwrites the device's credential record.
	Replace(ctx context.Context, record *authDomain.CredentialRecord) error

	// CompareAndSwap replaces the record only while its refresh fingerprint still
	// equals expectedRefreshFingerprint. Returns ErrCredentialsConflict otherwise.
	CompareAndSwap(
		ctx context.Context,
		expectedRefreshFingerprint string,
		next *authDomain.CredentialRecord,
	) error

	// Delete removes the device's credential record. Deleting a missing record is not an error.
	Delete(ctx context.Context, deviceID string) error
}

// PairingSecretRepository persists hashed pairing secrets.
type PairingSecretRepository interface {
	// Upsert stores or replaces the device's pairing secret hash.
	Upsert(ctx context.Context, secret *authDomain.PairingSecret) error

	// Get returns the pairing secret or ErrPairingSecretNotFound.
	Get(ctx context.Context, deviceID string) (*authDomain.PairingSecret, error)
}

// TokenUseCase manages device access and refresh tokens.
type TokenUseCase interface {
	// IssueCredentials creates a new credential set and makes it the device's only active set.
	IssueCredentials(
		ctx context.Context,
		deviceID string,
		permissions []string,
	) (*authDomain.DeviceCredentials, error)

	// VerifyAccessToken reports whether token is a valid, unexpired access token of the
	// device's current credential set. It never returns an error.
	VerifyAccessToken(ctx context.Context, deviceID, token string) bool

	// Refresh exchanges the current refresh token for a new credential set. Each refresh
	// token succeeds at most once. Returns ErrTokenInvalid on any rejection.
	Refresh(ctx context.Context, deviceID, refreshToken string) (*authDomain.DeviceCredentials, error)

	// Revoke drops the device's active credential set.
	Revoke(ctx context.Context, deviceID string) error
}

// PairingUseCase provisions and checks device pairing secrets.
type PairingUseCase interface {
	// SetSecret generates a new pairing secret for the device, stores its hash and
	// returns the plain secret exactly once.
	SetSecret(ctx context.Context, deviceID string) (string, error)

	// Check compares the presented secret with the stored hash.
	Check(ctx context.Context, deviceID, secret string) (authDomain.PairingResult, error)
}
