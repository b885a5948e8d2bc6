package domain

import "strings"

// Algorithm names the AEAD that seals device messages. Both algorithms take a 256-bit
// key, a 96-bit nonce and produce a 128-bit tag, so the EncryptedMessage layout does
// not depend on the choice.
type Algorithm string

const (
	// AESGCM is AES-256-GCM. Preferred on CPUs with AES-NI.
	AESGCM Algorithm = "aes-gcm"

	// ChaCha20 is ChaCha20-Poly1305. Preferred on gateways without AES acceleration.
	ChaCha20 Algorithm = "chacha20-poly1305"
)

// Sizes shared by every supported AEAD.
const (
	// NonceSize is the IV length in bytes.
	NonceSize = 12
	// TagSize is the authentication tag length in bytes.
	TagSize = 16
)

// SupportedAlgorithms lists the algorithms accepted by ParseAlgorithm.
func SupportedAlgorithms() []Algorithm {
	return []Algorithm{AESGCM, ChaCha20}
}

// ParseAlgorithm maps a configuration value to an Algorithm. Matching ignores case and
// surrounding whitespace.
func ParseAlgorithm(value string) (Algorithm, error) {
	normalized := Algorithm(strings.ToLower(strings.TrimSpace(value)))
	for _, alg := range SupportedAlgorithms() {
		if alg == normalized {
			return alg, nil
		}
	}
	return "", ErrUnsupportedAlgorithm
}
