// Package service provides the token primitives of the device trust subsystem:
// MAC-signed tokens, keyed token fingerprints and pairing secret hashing.
package service

import (
	authDomain "github.com/allisson/devicetrust/internal/auth/domain"
)

// TokenSigner signs and parses device tokens.
type TokenSigner interface {
	// Sign serializes claims canonically and appends an HMAC-SHA256 signature.
	Sign(claims *authDomain.Claims) (string, error)

	// Parse verifies the signature and decodes the claims. It never returns an
	// error: malformed input and signature mismatches both report false.
	// Expiry is not checked here.
	Parse(token string) (*authDomain.Claims, bool)

	// VerifySignature reports whether token carries a valid signature.
	VerifySignature(token string) bool
}

// TokenFingerprinter derives the stored identifier of a token.
type TokenFingerprinter interface {
	// Fingerprint returns the hex encoded keyed hash of token.
	Fingerprint(token string) string
}

// SecretService defines operations for pairing secret generation and validation.
type SecretService interface {
	// GenerateSecret creates a new cryptographically secure random secret.
	// Returns both the plain text secret (handed to the installer once) and
	// the hashed version (stored).
	GenerateSecret() (plainSecret string, hashedSecret string, err error)

	// HashSecret hashes a plain text secret using Argon2id.
	HashSecret(plainSecret string) (hashedSecret string, err error)

	// CompareSecret compares a plain text secret against a hashed secret in constant time.
	CompareSecret(plainSecret string, hashedSecret string) bool
}
