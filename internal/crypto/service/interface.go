// Package service provides the cryptographic primitives of the device trust subsystem.
// Implements AEAD ciphers (AES-256-GCM, ChaCha20-Poly1305), HKDF subkey derivation
// and KMS keeper access for the master key.
package service

import (
	"context"

	cryptoDomain "github.com/allisson/devicetrust/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	// The ciphertext carries the authentication tag as its trailing bytes.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KeyDeriver derives purpose-bound subkeys from the master key.
type KeyDeriver interface {
	// Derive returns a key of the requested size bound to the info label.
	Derive(masterKey []byte, info string, size int) ([]byte, error)
}

// KMSService opens KMS keepers used to unwrap the master key.
type KMSService interface {
	// OpenKeeper opens a secrets.Keeper for the configured KMS provider.
	// Returns an error if the KMS provider URI is invalid or connection fails.
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)
}
