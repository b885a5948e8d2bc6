// Package domain defines the device credential model: signed access and refresh
// tokens, the stored credential record and pairing secrets.
package domain

import (
	"slices"
	"time"
)

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims is the signed payload embedded in every token.
//
// Timestamps are Unix seconds. The CBOR keys are short integers so that the
// canonical encoding stays compact enough for constrained transports.
type Claims struct {
	ID        string    `cbor:"1,keyasint"`
	DeviceID  string    `cbor:"2,keyasint"`
	Type      TokenType `cbor:"3,keyasint"`
	IssuedAt  int64     `cbor:"4,keyasint"`
	ExpiresAt int64     `cbor:"5,keyasint"`
}

// Expired reports whether the claims are no longer valid at now.
func (c *Claims) Expired(now time.Time) bool {
	return now.Unix() >= c.ExpiresAt
}

// DeviceCredentials is the credential set handed to a device after authentication.
//
// ExpiresAt is the access token expiry. The tokens are returned exactly once and
// never persisted in plaintext.
type DeviceCredentials struct {
	DeviceID         string    `json:"device_id"`
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	ExpiresAt        time.Time `json:"expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
	Permissions      []string  `json:"permissions"`
}

// HasPermission reports whether the credential set grants permission.
func (c *DeviceCredentials) HasPermission(permission string) bool {
	return slices.Contains(c.Permissions, permission)
}

// CredentialRecord is the stored form of a device's single active credential set.
//
// Only keyed fingerprints of the tokens are kept. Version increases on every
// replacement and is used by stores that need optimistic concurrency.
type CredentialRecord struct {
	DeviceID           string
	AccessFingerprint  string
	RefreshFingerprint string
	AccessExpiresAt    time.Time
	RefreshExpiresAt   time.Time
	Permissions        []string
	Version            int64
	UpdatedAt          time.Time
}
