package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/devicetrust/internal/auth/domain"
	authService "github.com/allisson/devicetrust/internal/auth/service"
	"github.com/allisson/devicetrust/internal/config"
)

// tokenUseCase implements TokenUseCase on top of a TokenSigner and a CredentialRepository.
type tokenUseCase struct {
	config        *config.Config
	credRepo      CredentialRepository
	signer        authService.TokenSigner
	fingerprinter authService.TokenFingerprinter
	now           func() time.Time
}

// newPair signs a fresh access and refresh token for deviceID and builds both the
// credentials returned to the device and the record that gets stored.
func (t *tokenUseCase) newPair(
	deviceID string,
	permissions []string,
) (*authDomain.DeviceCredentials, *authDomain.CredentialRecord, error) {
	issuedAt := t.now().UTC().Truncate(time.Second)
	accessExp := issuedAt.Add(t.config.AccessTokenTTL)
	refreshExp := issuedAt.Add(t.config.RefreshTokenTTL)

	accessToken, err := t.sign(deviceID, authDomain.TokenTypeAccess, issuedAt, accessExp)
	if err != nil {
		return nil, nil, err
	}
	refreshToken, err := t.sign(deviceID, authDomain.TokenTypeRefresh, issuedAt, refreshExp)
	if err != nil {
		return nil, nil, err
	}

	perms := append([]string(nil), permissions...)
	creds := &authDomain.DeviceCredentials{
		DeviceID:         deviceID,
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		ExpiresAt:        accessExp,
		RefreshExpiresAt: refreshExp,
		Permissions:      perms,
	}
	record := &authDomain.CredentialRecord{
		DeviceID:           deviceID,
		AccessFingerprint:  t.fingerprinter.Fingerprint(accessToken),
		RefreshFingerprint: t.fingerprinter.Fingerprint(refreshToken),
		AccessExpiresAt:    accessExp,
		RefreshExpiresAt:   refreshExp,
		Permissions:        perms,
		UpdatedAt:          issuedAt,
	}
	return creds, record, nil
}

func (t *tokenUseCase) sign(
	deviceID string,
	tokenType authDomain.TokenType,
	issuedAt, expiresAt time.Time,
) (string, error) {
	return t.signer.Sign(&authDomain.Claims{
		ID:        uuid.Must(uuid.NewV7()).String(),
		DeviceID:  deviceID,
		Type:      tokenType,
		IssuedAt:  issuedAt.Unix(),
		ExpiresAt: expiresAt.Unix(),
	})
}

// IssueCredentials implements TokenUseCase.
func (t *tokenUseCase) IssueCredentials(
	ctx context.Context,
	deviceID string,
	permissions []string,
) (*authDomain.DeviceCredentials, error) {
	creds, record, err := t.newPair(deviceID, permissions)
	if err != nil {
		return nil, err
	}

	if err := t.credRepo.Replace(ctx, record); err != nil {
		return nil, err
	}
	return creds, nil
}

// validClaims parses token and checks type, subject and expiry.
func (t *tokenUseCase) validClaims(deviceID, token string, tokenType authDomain.TokenType) bool {
	claims, ok := t.signer.Parse(token)
	if !ok {
		return false
	}
	if claims.Type != tokenType || claims.DeviceID != deviceID {
		return false
	}
	return !claims.Expired(t.now())
}

func fingerprintEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// VerifyAccessToken implements TokenUseCase.
//
// A token with a valid signature still fails once its credential set was replaced
// by a refresh or re-authentication, or dropped by a certificate revocation.
func (t *tokenUseCase) VerifyAccessToken(ctx context.Context, deviceID, token string) bool {
	if !t.validClaims(deviceID, token, authDomain.TokenTypeAccess) {
		return false
	}

	record, err := t.credRepo.Get(ctx, deviceID)
	if err != nil {
		return false
	}
	if !t.now().Before(record.AccessExpiresAt) {
		return false
	}
	return fingerprintEqual(record.AccessFingerprint, t.fingerprinter.Fingerprint(token))
}

// Refresh implements TokenUseCase.
//
// The swap is conditional on the presented refresh fingerprint, so of two concurrent
// refreshes with the same token exactly one wins and the other gets ErrTokenInvalid.
func (t *tokenUseCase) Refresh(
	ctx context.Context,
	deviceID, refreshToken string,
) (*authDomain.DeviceCredentials, error) {
	if !t.validClaims(deviceID, refreshToken, authDomain.TokenTypeRefresh) {
		return nil, authDomain.ErrTokenInvalid
	}

	current, err := t.credRepo.Get(ctx, deviceID)
	if err != nil {
		if errors.Is(err, authDomain.ErrCredentialsNotFound) {
			return nil, authDomain.ErrTokenInvalid
		}
		return nil, err
	}

	presented := t.fingerprinter.Fingerprint(refreshToken)
	if !fingerprintEqual(current.RefreshFingerprint, presented) || !t.now().Before(current.RefreshExpiresAt) {
		return nil, authDomain.ErrTokenInvalid
	}

	creds, next, err := t.newPair(deviceID, current.Permissions)
	if err != nil {
		return nil, err
	}

	if err := t.credRepo.CompareAndSwap(ctx, presented, next); err != nil {
		if errors.Is(err, authDomain.ErrCredentialsConflict) {
			return nil, authDomain.ErrTokenInvalid
		}
		return nil, err
	}
	return creds, nil
}

// Revoke implements TokenUseCase.
func (t *tokenUseCase) Revoke(ctx context.Context, deviceID string) error {
	return t.credRepo.Delete(ctx, deviceID)
}

// NewTokenUseCase creates a new TokenUseCase with the provided dependencies.
func NewTokenUseCase(
	config *config.Config,
	credRepo CredentialRepository,
	signer authService.TokenSigner,
	fingerprinter authService.TokenFingerprinter,
) TokenUseCase {
	return &tokenUseCase{
		config:        config,
		credRepo:      credRepo,
		signer:        signer,
		fingerprinter: fingerprinter,
		now:           time.Now,
	}
}
