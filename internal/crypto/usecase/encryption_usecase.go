package usecase

import (
	"context"

	cryptoDomain "github.com/allisson/devicetrust/internal/crypto/domain"
	cryptoService "github.com/allisson/devicetrust/internal/crypto/service"
)

type encryptionUseCase struct {
	cipher cryptoService.AEAD
}

// NewEncryptionUseCase creates the message encryption engine for the configured algorithm.
func NewEncryptionUseCase(
	aeadManager cryptoService.AEADManager,
	keyMaterial *KeyMaterial,
	alg cryptoDomain.Algorithm,
) (EncryptionUseCase, error) {
	cipher, err := aeadManager.CreateCipher(keyMaterial.MessageEncryptionKey, alg)
	if err != nil {
		return nil, err
	}
	return &encryptionUseCase{cipher: cipher}, nil
}

// deviceAAD returns the associated data binding a message to a device.
func deviceAAD(deviceID string) []byte {
	return []byte("device:" + deviceID)
}

// Encrypt seals plaintext and splits the AEAD output into data and tag.
func (e *encryptionUseCase) Encrypt(
	ctx context.Context,
	plaintext []byte,
	deviceID string,
) (*cryptoDomain.EncryptedMessage, error) {
	sealed, nonce, err := e.cipher.Encrypt(plaintext, deviceAAD(deviceID))
	if err != nil {
		return nil, err
	}

	split := len(sealed) - cryptoDomain.TagSize
	return &cryptoDomain.EncryptedMessage{
		Data: sealed[:split:split],
		IV:   nonce,
		Tag:  sealed[split:],
	}, nil
}

// Decrypt reassembles ciphertext and tag and opens them for deviceID.
func (e *encryptionUseCase) Decrypt(
	ctx context.Context,
	msg *cryptoDomain.EncryptedMessage,
	deviceID string,
) ([]byte, error) {
	if msg == nil || len(msg.IV) != cryptoDomain.NonceSize || len(msg.Tag) != cryptoDomain.TagSize {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	sealed := make([]byte, 0, len(msg.Data)+len(msg.Tag))
	sealed = append(sealed, msg.Data...)
	sealed = append(sealed, msg.Tag...)

	plaintext, err := e.cipher.Decrypt(sealed, msg.IV, deviceAAD(deviceID))
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}
