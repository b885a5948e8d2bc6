package domain

import "time"

// DeviceAuthCredentials carries what a device presents when authenticating.
//
// A device proves itself with a pairing secret, a certificate, or both. Certificate
// holds PEM or DER bytes exactly as presented.
type DeviceAuthCredentials struct {
	PairingSecret string
	Certificate   []byte
}

// AuthContext describes the channel an authentication request arrived on.
type AuthContext struct {
	Protocol   string
	RemoteAddr string
	RequestID  string
}

// PairingSecret is the stored Argon2id hash of a device pairing secret.
type PairingSecret struct {
	DeviceID   string
	SecretHash string
	CreatedAt  time.Time
}

// PairingResult is the outcome of a pairing secret check.
type PairingResult int

const (
	// PairingNotProvisioned means the device has no pairing secret on record.
	PairingNotProvisioned PairingResult = iota
	// PairingMatched means the presented secret matches the stored hash.
	PairingMatched
	// PairingMismatch means a secret is on record but the presented one does not match.
	PairingMismatch
)
