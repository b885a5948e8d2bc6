package usecase

import (
	"fmt"

	cryptoDomain "github.com/allisson/devicetrust/internal/crypto/domain"
	cryptoService "github.com/allisson/devicetrust/internal/crypto/service"
)

// HKDF info labels for every subkey. Bump the version suffix to rotate a single purpose.
const (
	TokenSigningInfo      = "device-token-signing-v1"
	MessageEncryptionInfo = "device-message-encryption-v1"
	TokenFingerprintInfo  = "device-token-fingerprint-v1"
	EventSigningInfo      = "security-event-signing-v1"
)

// KeyMaterial owns the subkeys derived from the master key.
//
// A single instance is created by the DI container at startup and injected into
// every component that needs key material. Close zeroes all subkeys.
type KeyMaterial struct {
	TokenSigningKey      []byte
	MessageEncryptionKey []byte
	TokenFingerprintKey  []byte
	EventSigningKey      []byte
}

// NewKeyMaterial derives every subkey from masterKey.
func NewKeyMaterial(masterKey *cryptoDomain.MasterKey, deriver cryptoService.KeyDeriver) (*KeyMaterial, error) {
	if masterKey == nil || len(masterKey.Key) != cryptoDomain.MasterKeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	km := &KeyMaterial{}
	targets := []struct {
		info string
		dst  *[]byte
	}{
		{TokenSigningInfo, &km.TokenSigningKey},
		{MessageEncryptionInfo, &km.MessageEncryptionKey},
		{TokenFingerprintInfo, &km.TokenFingerprintKey},
		{EventSigningInfo, &km.EventSigningKey},
	}

	for _, target := range targets {
		key, err := deriver.Derive(masterKey.Key, target.info, cryptoDomain.MasterKeySize)
		if err != nil {
			km.Close()
			return nil, fmt.Errorf("failed to derive %s: %w", target.info, err)
		}
		*target.dst = key
	}

	return km, nil
}

// Close zeroes all derived subkeys.
func (k *KeyMaterial) Close() {
	if k == nil {
		return
	}
	cryptoDomain.ZeroAll(
		k.TokenSigningKey,
		k.MessageEncryptionKey,
		k.TokenFingerprintKey,
		k.EventSigningKey,
	)
}
