package service

import (
	"encoding/hex"
	"errors"

	"github.com/zeebo/blake3"
)

type tokenFingerprinter struct {
	key []byte
}

// NewTokenFingerprinter creates a TokenFingerprinter backed by keyed BLAKE3.
//
// Stored fingerprints cannot be replayed as tokens and cannot be recomputed
// without the fingerprint key.
func NewTokenFingerprinter(key []byte) (TokenFingerprinter, error) {
	if len(key) != 32 {
		return nil, errors.New("token fingerprint key must be exactly 32 bytes")
	}
	return &tokenFingerprinter{key: key}, nil
}

// Fingerprint implements TokenFingerprinter.
func (f *tokenFingerprinter) Fingerprint(token string) string {
	hasher, err := blake3.NewKeyed(f.key)
	if err != nil {
		panic("auth: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	_, _ = hasher.Write([]byte(token))
	return hex.EncodeToString(hasher.Sum(nil))
}
