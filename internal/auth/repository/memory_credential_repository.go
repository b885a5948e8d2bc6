// Package repository provides credential and pairing secret persistence for the
// in-memory, PostgreSQL and MySQL drivers.
package repository

import (
	"context"
	"sync"

	authDomain "github.com/allisson/devicetrust/internal/auth/domain"
)

// credentialEntry guards a single device's record.
type credentialEntry struct {
	mu     sync.RWMutex
	record *authDomain.CredentialRecord
}

// MemoryCredentialRepository keeps credential records in process memory.
//
// Each device has its own lock, so operations on distinct devices never contend.
type MemoryCredentialRepository struct {
	entries sync.Map // deviceID -> *credentialEntry
}

// NewMemoryCredentialRepository creates an empty in-memory credential store.
func NewMemoryCredentialRepository() *MemoryCredentialRepository {
	return &MemoryCredentialRepository{}
}

func (m *MemoryCredentialRepository) entry(deviceID string) *credentialEntry {
	value, _ := m.entries.LoadOrStore(deviceID, &credentialEntry{})
	return value.(*credentialEntry)
}

func cloneRecord(record *authDomain.CredentialRecord) *authDomain.CredentialRecord {
	clone := *record
	clone.Permissions = append([]string(nil), record.Permissions...)
	return &clone
}

// Get returns a copy of the device's record.
func (m *MemoryCredentialRepository) Get(
	ctx context.Context,
	deviceID string,
) (*authDomain.CredentialRecord, error) {
	value, ok := m.entries.Load(deviceID)
	if !ok {
		return nil, authDomain.ErrCredentialsNotFound
	}
	entry := value.(*credentialEntry)

	entry.mu.RLock()
	defer entry.mu.RUnlock()

	if entry.record == nil {
		return nil, authDomain.ErrCredentialsNotFound
	}
	return cloneRecord(entry.record), nil
}

// Replace overwrites the device's record and bumps its version.
func (m *MemoryCredentialRepository) Replace(ctx context.Context, record *authDomain.CredentialRecord) error {
	entry := m.entry(record.DeviceID)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	next := cloneRecord(record)
	next.Version = 1
	if entry.record != nil {
		next.Version = entry.record.Version + 1
	}
	entry.record = next
	record.Version = next.Version
	return nil
}

// CompareAndSwap replaces the record while it still holds expectedRefreshFingerprint.
func (m *MemoryCredentialRepository) CompareAndSwap(
	ctx context.Context,
	expectedRefreshFingerprint string,
	next *authDomain.CredentialRecord,
) error {
	entry := m.entry(next.DeviceID)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.record == nil || entry.record.RefreshFingerprint != expectedRefreshFingerprint {
		return authDomain.ErrCredentialsConflict
	}

	stored := cloneRecord(next)
	stored.Version = entry.record.Version + 1
	entry.record = stored
	next.Version = stored.Version
	return nil
}

// Delete drops the device's record.
func (m *MemoryCredentialRepository) Delete(ctx context.Context, deviceID string) error {
	value, ok := m.entries.Load(deviceID)
	if !ok {
		return nil
	}
	entry := value.(*credentialEntry)

	entry.mu.Lock()
	entry.record = nil
	entry.mu.Unlock()
	return nil
}
