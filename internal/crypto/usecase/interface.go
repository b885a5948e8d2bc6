// Package usecase implements the key material provider and the device message
// encryption engine on top of the crypto services.
package usecase

import (
	"context"

	cryptoDomain "github.com/allisson/devicetrust/internal/crypto/domain"
)

// EncryptionUseCase defines authenticated encryption of device payloads.
//
// The device id is bound to every message as associated data, so a ciphertext
// produced for one device is rejected when presented for another.
type EncryptionUseCase interface {
	// Encrypt seals plaintext for deviceID with a fresh random IV.
	Encrypt(ctx context.Context, plaintext []byte, deviceID string) (*cryptoDomain.EncryptedMessage, error)

	// Decrypt authenticates and opens msg for deviceID. Every failure returns
	// ErrDecryptionFailed with nil plaintext.
	Decrypt(ctx context.Context, msg *cryptoDomain.EncryptedMessage, deviceID string) ([]byte, error)
}
