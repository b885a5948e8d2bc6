// Package domain defines device certificates and their lifecycle states.
package domain

import "time"

// Status is the lifecycle state of a device's certificate.
//
// NonExistent -> Issued -> {Expired | Revoked}. Expired and Revoked are terminal
// for the certificate; a Revoked device can never be issued another one.
type Status string

const (
	StatusNonExistent Status = "non_existent"
	StatusIssued      Status = "issued"
	StatusExpired     Status = "expired"
	StatusRevoked     Status = "revoked"
)

// DeviceCertificate is an X.509 certificate bound to a device id.
//
// Certificate and PublicKey are PEM encoded. PrivateKey is populated only in the
// value returned by issuance and is never persisted.
type DeviceCertificate struct {
	DeviceID     string     `json:"device_id"`
	SerialNumber string     `json:"serial_number"`
	Certificate  []byte     `json:"certificate"`
	PrivateKey   []byte     `json:"private_key,omitempty"`
	PublicKey    []byte     `json:"public_key"`
	IssuedAt     time.Time  `json:"issued_at"`
	ExpiresAt    time.Time  `json:"expires_at"`
	RevokedAt    *time.Time `json:"revoked_at,omitempty"`
}

// Revoked reports whether the certificate was revoked.
func (c *DeviceCertificate) Revoked() bool {
	return c.RevokedAt != nil
}

// StatusAt returns the lifecycle state at now.
func (c *DeviceCertificate) StatusAt(now time.Time) Status {
	switch {
	case c.Revoked():
		return StatusRevoked
	case !now.Before(c.ExpiresAt):
		return StatusExpired
	default:
		return StatusIssued
	}
}
