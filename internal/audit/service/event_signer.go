// Package service signs and verifies security events.
package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	auditDomain "github.com/allisson/devicetrust/internal/audit/domain"
)

// EventSigner produces and checks tamper-evidence signatures for security events.
type EventSigner interface {
	// Sign returns the HMAC-SHA256 signature of the event's canonical form.
	Sign(event *auditDomain.SecurityEvent) ([]byte, error)

	// Verify returns nil if event.Signature matches, ErrSignatureInvalid otherwise.
	Verify(event *auditDomain.SecurityEvent) error
}

type hmacEventSigner struct {
	key []byte
}

// NewEventSigner creates an EventSigner keyed with a 32-byte signing key.
func NewEventSigner(key []byte) (EventSigner, error) {
	if len(key) != 32 {
		return nil, errors.New("event signing key must be 32 bytes")
	}
	return &hmacEventSigner{key: key}, nil
}

// canonicalize serializes the signed fields:
// id || event_type || device_id || details || timestamp.
// Variable-length fields are length-prefixed. Details are JSON, whose map keys are sorted.
func canonicalize(event *auditDomain.SecurityEvent) ([]byte, error) {
	buf := make([]byte, 0, 512)

	buf = append(buf, event.ID[:]...)
	buf = appendLengthPrefixed(buf, []byte(event.EventType))
	buf = appendLengthPrefixed(buf, []byte(event.DeviceID))

	if len(event.Details) > 0 {
		details, err := json.Marshal(event.Details)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal details: %w", err)
		}
		buf = appendLengthPrefixed(buf, details)
	} else {
		buf = appendLengthPrefixed(buf, nil)
	}

	buf = binary.BigEndian.AppendUint64(buf, uint64(event.Timestamp.UnixMicro()))
	return buf, nil
}

func appendLengthPrefixed(buf []byte, data []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}

// Sign implements EventSigner.
func (s *hmacEventSigner) Sign(event *auditDomain.SecurityEvent) ([]byte, error) {
	canonical, err := canonicalize(event)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, s.key)
	mac.Write(canonical)
	return mac.Sum(nil), nil
}

// Verify implements EventSigner.
func (s *hmacEventSigner) Verify(event *auditDomain.SecurityEvent) error {
	expected, err := s.Sign(event)
	if err != nil {
		return err
	}
	if !hmac.Equal(event.Signature, expected) {
		return auditDomain.ErrSignatureInvalid
	}
	return nil
}
