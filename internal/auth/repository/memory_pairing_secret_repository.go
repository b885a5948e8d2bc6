package repository

import (
	"context"
	"sync"

	authDomain "github.com/allisson/devicetrust/internal/auth/domain"
)

// MemoryPairingSecretRepository keeps pairing secret hashes in process memory.
type MemoryPairingSecretRepository struct {
	secrets sync.Map // deviceID -> authDomain.PairingSecret
}

// NewMemoryPairingSecretRepository creates an empty in-memory pairing secret store.
func NewMemoryPairingSecretRepository() *MemoryPairingSecretRepository {
	return &MemoryPairingSecretRepository{}
}

// Upsert stores or replaces the device's pairing secret.
func (m *MemoryPairingSecretRepository) Upsert(ctx context.Context, secret *authDomain.PairingSecret) error {
	m.secrets.Store(secret.DeviceID, *secret)
	return nil
}

// Get returns the device's pairing secret.
func (m *MemoryPairingSecretRepository) Get(
	ctx context.Context,
	deviceID string,
) (*authDomain.PairingSecret, error) {
	value, ok := m.secrets.Load(deviceID)
	if !ok {
		return nil, authDomain.ErrPairingSecretNotFound
	}
	secret := value.(authDomain.PairingSecret)
	return &secret, nil
}
