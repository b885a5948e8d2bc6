package service

import (
	cryptoDomain "github.com/allisson/devicetrust/internal/crypto/domain"
)

type cipherConstructor func(key []byte) (AEAD, error)

// AEADManagerService builds the message ciphers from a per-algorithm constructor table.
type AEADManagerService struct {
	constructors map[cryptoDomain.Algorithm]cipherConstructor
}

// NewAEADManager creates an AEADManagerService that knows every supported algorithm.
func NewAEADManager() *AEADManagerService {
	return &AEADManagerService{
		constructors: map[cryptoDomain.Algorithm]cipherConstructor{
			cryptoDomain.AESGCM: func(key []byte) (AEAD, error) {
				return NewAESGCM(key)
			},
			cryptoDomain.ChaCha20: func(key []byte) (AEAD, error) {
				return NewChaCha20Poly1305(key)
			},
		},
	}
}

// CreateCipher returns a cipher keyed with a 32-byte message key.
// Returns ErrInvalidKeySize for any other key length and ErrUnsupportedAlgorithm for an unknown algorithm.
func (am *AEADManagerService) CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error) {
	constructor, ok := am.constructors[alg]
	if !ok {
		return nil, cryptoDomain.ErrUnsupportedAlgorithm
	}
	if len(key) != cryptoDomain.MasterKeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	return constructor(key)
}
