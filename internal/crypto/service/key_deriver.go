package service

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	cryptoDomain "github.com/allisson/devicetrust/internal/crypto/domain"
)

// HKDFKeyDeriver derives subkeys with HKDF-SHA256.
//
// Every purpose uses its own versioned info label so that compromising one subkey
// reveals nothing about the others or the master key.
type HKDFKeyDeriver struct{}

// NewHKDFKeyDeriver creates a new HKDFKeyDeriver.
func NewHKDFKeyDeriver() *HKDFKeyDeriver {
	return &HKDFKeyDeriver{}
}

// Derive expands masterKey into a subkey of the requested size bound to info.
func (d *HKDFKeyDeriver) Derive(masterKey []byte, info string, size int) ([]byte, error) {
	if len(masterKey) != cryptoDomain.MasterKeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: subkey size must be positive", cryptoDomain.ErrInvalidKeySize)
	}

	reader := hkdf.New(sha256.New, masterKey, nil, []byte(info))
	key := make([]byte, size)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}
