package domain

import (
	"github.com/allisson/devicetrust/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors
// so that callers can classify failures without inspecting messages.
var (
	// ErrUnsupportedAlgorithm indicates the requested encryption algorithm is not supported.
	//
	// Supported algorithms: AESGCM (AES-256-GCM), ChaCha20 (ChaCha20-Poly1305).
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates the cryptographic key size is invalid.
	//
	// The master key and every derived subkey must be exactly 32 bytes (256 bits).
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrMasterKeyNotSet indicates MASTER_KEY is missing from the configuration.
	ErrMasterKeyNotSet = errors.Wrap(errors.ErrInvalidInput, "master key not set")

	// ErrInvalidMasterKeyBase64 indicates MASTER_KEY is not valid standard base64.
	ErrInvalidMasterKeyBase64 = errors.Wrap(errors.ErrInvalidInput, "invalid master key base64")

	// ErrKMSUnavailable indicates the KMS keeper could not be opened or could not unwrap the key.
	ErrKMSUnavailable = errors.Wrap(errors.ErrUnavailable, "kms unavailable")

	// ErrDecryptionFailed indicates a device message could not be authenticated.
	//
	// This error covers a wrong device id, a tampered ciphertext or tag, an invalid IV
	// and malformed input alike. The specific cause is never disclosed and no partial
	// plaintext is ever returned alongside it.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")
)
