package usecase

import (
	"context"
	"errors"
	"time"

	authDomain "github.com/allisson/devicetrust/internal/auth/domain"
	authService "github.com/allisson/devicetrust/internal/auth/service"
)

type pairingUseCase struct {
	repo          PairingSecretRepository
	secretService authService.SecretService
}

// SetSecret implements PairingUseCase.
func (p *pairingUseCase) SetSecret(ctx context.Context, deviceID string) (string, error) {
	plain, hashed, err := p.secretService.GenerateSecret()
	if err != nil {
		return "", err
	}

	secret := &authDomain.PairingSecret{
		DeviceID:   deviceID,
		SecretHash: hashed,
		CreatedAt:  time.Now().UTC(),
	}
	if err := p.repo.Upsert(ctx, secret); err != nil {
		return "", err
	}
	return plain, nil
}

// Check implements PairingUseCase.
func (p *pairingUseCase) Check(
	ctx context.Context,
	deviceID, secret string,
) (authDomain.PairingResult, error) {
	stored, err := p.repo.Get(ctx, deviceID)
	if err != nil {
		if errors.Is(err, authDomain.ErrPairingSecretNotFound) {
			return authDomain.PairingNotProvisioned, nil
		}
		return authDomain.PairingNotProvisioned, err
	}

	if !p.secretService.CompareSecret(secret, stored.SecretHash) {
		return authDomain.PairingMismatch, nil
	}
	return authDomain.PairingMatched, nil
}

// NewPairingUseCase creates a new PairingUseCase.
func NewPairingUseCase(repo PairingSecretRepository, secretService authService.SecretService) PairingUseCase {
	return &pairingUseCase{
		repo:          repo,
		secretService: secretService,
	}
}
