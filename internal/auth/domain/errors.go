package domain

import (
	"github.com/allisson/devicetrust/internal/errors"
)

// Authentication errors.
var (
	// ErrAuthenticationFailed indicates the presented device credentials were rejected.
	// The caller may retry with different credentials.
	ErrAuthenticationFailed = errors.Wrap(errors.ErrUnauthorized, "authentication failed")

	// ErrTokenInvalid indicates a token is expired, forged, malformed or superseded.
	// The caller must re-authenticate.
	ErrTokenInvalid = errors.Wrap(errors.ErrUnauthorized, "token invalid")

	// ErrCredentialsNotFound indicates the device has no active credential set.
	ErrCredentialsNotFound = errors.Wrap(errors.ErrNotFound, "credentials not found")

	// ErrCredentialsConflict indicates a concurrent refresh already replaced the credential set.
	ErrCredentialsConflict = errors.Wrap(errors.ErrConflict, "credentials changed concurrently")

	// ErrPairingSecretNotFound indicates no pairing secret was provisioned for the device.
	ErrPairingSecretNotFound = errors.Wrap(errors.ErrNotFound, "pairing secret not found")
)
