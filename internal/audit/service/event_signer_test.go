package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/devicetrust/internal/audit/domain"
)

func newEvent() *auditDomain.SecurityEvent {
	return &auditDomain.SecurityEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: auditDomain.EventPermissionDenied,
		DeviceID:  "lock-1",
		Details:   map[string]any{"action": "read:video", "reason": "capability"},
		Timestamp: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestEventSigner(t *testing.T) {
	key := make([]byte, 32)
	key[0] = 1
	signer, err := NewEventSigner(key)
	require.NoError(t, err)

	t.Run("Success_SignAndVerify", func(t *testing.T) {
		event := newEvent()
		event.Signature, err = signer.Sign(event)
		require.NoError(t, err)
		assert.Len(t, event.Signature, 32)
		assert.NoError(t, signer.Verify(event))
	})

	t.Run("Success_DetailsKeyOrderIrrelevant", func(t *testing.T) {
		event := newEvent()
		event.Details = map[string]any{"b": 1, "a": 2}
		event.Signature, err = signer.Sign(event)
		require.NoError(t, err)

		event.Details = map[string]any{"a": float64(2), "b": float64(1)}
		assert.NoError(t, signer.Verify(event))
	})

	tamper := map[string]func(e *auditDomain.SecurityEvent){
		"event type": func(e *auditDomain.SecurityEvent) { e.EventType = auditDomain.EventActionAuthorized },
		"device id":  func(e *auditDomain.SecurityEvent) { e.DeviceID = "lock-2" },
		"details":    func(e *auditDomain.SecurityEvent) { e.Details["reason"] = "none" },
		"timestamp":  func(e *auditDomain.SecurityEvent) { e.Timestamp = e.Timestamp.Add(time.Microsecond) },
		"id":         func(e *auditDomain.SecurityEvent) { e.ID = uuid.Must(uuid.NewV7()) },
	}
	for name, mutate := range tamper {
		t.Run("Error_Tampered_"+name, func(t *testing.T) {
			event := newEvent()
			event.Signature, err = signer.Sign(event)
			require.NoError(t, err)

			mutate(event)
			assert.ErrorIs(t, signer.Verify(event), auditDomain.ErrSignatureInvalid)
		})
	}

	t.Run("Error_FieldBoundaryShift", func(t *testing.T) {
		first := newEvent()
		first.EventType = "AB"
		first.DeviceID = "C"
		first.Signature, err = signer.Sign(first)
		require.NoError(t, err)

		shifted := *first
		shifted.EventType = "A"
		shifted.DeviceID = "BC"
		assert.ErrorIs(t, signer.Verify(&shifted), auditDomain.ErrSignatureInvalid)
	})

	t.Run("Error_WrongKey", func(t *testing.T) {
		event := newEvent()
		event.Signature, err = signer.Sign(event)
		require.NoError(t, err)

		other, err := NewEventSigner(make([]byte, 32))
		require.NoError(t, err)
		assert.ErrorIs(t, other.Verify(event), auditDomain.ErrSignatureInvalid)
	})

	t.Run("Error_KeySize", func(t *testing.T) {
		_, err := NewEventSigner(make([]byte, 16))
		assert.Error(t, err)
	})
}
