// Package usecase records, queries and verifies security events.
package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/devicetrust/internal/audit/domain"
)

// SecurityEventRepository is the append-only audit store.
type SecurityEventRepository interface {
	// Append persists a new event.
	Append(ctx context.Context, event *auditDomain.SecurityEvent) error

	// List returns events newest first. An empty deviceID matches every device.
	List(ctx context.Context, deviceID string, offset, limit int) ([]*auditDomain.SecurityEvent, error)

	// DeleteOlderThan removes events created before the cutoff and returns the count.
	// With dryRun it only counts.
	DeleteOlderThan(ctx context.Context, before time.Time, dryRun bool) (int64, error)
}

// AuditUseCase is the audit log sink.
type AuditUseCase interface {
	// Log signs and appends an event. Sensitive detail keys are dropped first. A failure
	// is logged and counted before it is returned, so callers may ignore it safely.
	Log(ctx context.Context, eventType auditDomain.EventType, deviceID string, details map[string]any) error

	// Query returns up to limit events, newest first. The limit is clamped to the
	// configured maximum.
	Query(ctx context.Context, deviceID string, limit int) ([]*auditDomain.SecurityEvent, error)

	// Verify checks the signatures of a page of events.
	Verify(ctx context.Context, offset, limit int) (*auditDomain.VerificationReport, error)

	// DeleteOlderThan removes events older than the given number of days.
	DeleteOlderThan(ctx context.Context, days int, dryRun bool) (int64, error)
}
