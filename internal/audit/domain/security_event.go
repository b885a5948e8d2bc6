// Package domain defines security events, the append-only audit trail of every
// trust decision.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies a security event.
type EventType string

const (
	EventAuthenticationSuccess EventType = "AUTHENTICATION_SUCCESS"
	EventAuthenticationFailure EventType = "AUTHENTICATION_FAILURE"
	EventTokenRefreshed        EventType = "TOKEN_REFRESHED"
	EventTokenRefreshFailed    EventType = "TOKEN_REFRESH_FAILED"
	EventPermissionGranted     EventType = "PERMISSION_GRANTED"
	EventPermissionDenied      EventType = "PERMISSION_DENIED"
	EventActionAuthorized      EventType = "ACTION_AUTHORIZED"
	EventRateLimitExceeded     EventType = "RATE_LIMIT_EXCEEDED"
	EventInvalidParameters     EventType = "INVALID_PARAMETERS"
	EventCertificateIssued     EventType = "CERTIFICATE_ISSUED"
	EventCertificateRevoked    EventType = "CERTIFICATE_REVOKED"
	EventCertificateInvalid    EventType = "CERTIFICATE_INVALID"
	EventDecryptionFailed      EventType = "DECRYPTION_FAILED"
)

// SecurityEvent is one immutable audit record.
//
// Timestamp is kept at microsecond precision so the signature survives a round
// trip through PostgreSQL and MySQL timestamp columns.
type SecurityEvent struct {
	ID        uuid.UUID      `json:"id"`
	EventType EventType      `json:"event_type"`
	DeviceID  string         `json:"device_id"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Signature []byte         `json:"signature,omitempty"`
}

// VerificationReport summarizes a signature check over a batch of events.
type VerificationReport struct {
	Total      int         `json:"total"`
	Valid      int         `json:"valid"`
	Invalid    int         `json:"invalid"`
	InvalidIDs []uuid.UUID `json:"invalid_ids,omitempty"`
}
