// Package repository provides security event persistence for the in-memory,
// PostgreSQL and MySQL drivers.
package repository

import (
	"context"
	"sync"
	"time"

	auditDomain "github.com/allisson/devicetrust/internal/audit/domain"
)

// MemorySecurityEventRepository keeps security events in process memory, oldest first.
type MemorySecurityEventRepository struct {
	mu     sync.RWMutex
	events []*auditDomain.SecurityEvent
}

// NewMemorySecurityEventRepository creates an empty in-memory event store.
func NewMemorySecurityEventRepository() *MemorySecurityEventRepository {
	return &MemorySecurityEventRepository{}
}

func cloneEvent(event *auditDomain.SecurityEvent) *auditDomain.SecurityEvent {
	clone := *event
	clone.Signature = append([]byte(nil), event.Signature...)
	if event.Details != nil {
		clone.Details = make(map[string]any, len(event.Details))
		for k, v := range event.Details {
			clone.Details[k] = v
		}
	}
	return &clone
}

// Append stores a copy of event.
func (m *MemorySecurityEventRepository) Append(ctx context.Context, event *auditDomain.SecurityEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, cloneEvent(event))
	return nil
}

// List returns events newest first, optionally filtered by device.
func (m *MemorySecurityEventRepository) List(
	ctx context.Context,
	deviceID string,
	offset, limit int,
) ([]*auditDomain.SecurityEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]*auditDomain.SecurityEvent, 0)
	skipped := 0
	for i := len(m.events) - 1; i >= 0 && len(events) < limit; i-- {
		event := m.events[i]
		if deviceID != "" && event.DeviceID != deviceID {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		events = append(events, cloneEvent(event))
	}
	return events, nil
}

// DeleteOlderThan removes events with a timestamp before the cutoff and returns how
// many matched. With dryRun nothing is removed.
func (m *MemorySecurityEventRepository) DeleteOlderThan(
	ctx context.Context,
	before time.Time,
	dryRun bool,
) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := make([]*auditDomain.SecurityEvent, 0, len(m.events))
	var matched int64
	for _, event := range m.events {
		if event.Timestamp.Before(before) {
			matched++
			continue
		}
		kept = append(kept, event)
	}

	if !dryRun {
		m.events = kept
	}
	return matched, nil
}
