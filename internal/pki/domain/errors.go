package domain

import (
	"github.com/allisson/devicetrust/internal/errors"
)

// Certificate errors.
var (
	// ErrCertificateNotFound indicates the device has no certificate on record.
	ErrCertificateNotFound = errors.Wrap(errors.ErrNotFound, "certificate not found")

	// ErrCertificateInvalid indicates a presented certificate is expired, revoked or mismatched.
	ErrCertificateInvalid = errors.Wrap(errors.ErrUnauthorized, "certificate invalid")

	// ErrCertificateRevoked indicates the device's certificate was revoked. Revocation is permanent.
	ErrCertificateRevoked = errors.Wrap(errors.ErrConflict, "certificate revoked")

	// ErrMalformedCertificate indicates bytes that are neither a PEM nor a DER certificate.
	ErrMalformedCertificate = errors.Wrap(errors.ErrInvalidInput, "malformed certificate")

	// ErrInvalidCA indicates the configured CA certificate or key cannot be used for signing.
	ErrInvalidCA = errors.Wrap(errors.ErrInvalidInput, "invalid certificate authority")
)
