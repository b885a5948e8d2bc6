// Package repository provides device certificate persistence for the in-memory,
// PostgreSQL and MySQL drivers.
package repository

import (
	"context"
	"sync"
	"time"

	pkiDomain "github.com/allisson/devicetrust/internal/pki/domain"
)

type certificateEntry struct {
	mu   sync.Mutex
	cert *pkiDomain.DeviceCertificate
}

// MemoryCertificateRepository keeps certificate records in process memory.
type MemoryCertificateRepository struct {
	mu      sync.RWMutex
	entries map[string]*certificateEntry
}

// NewMemoryCertificateRepository creates an empty in-memory certificate store.
func NewMemoryCertificateRepository() *MemoryCertificateRepository {
	return &MemoryCertificateRepository{entries: make(map[string]*certificateEntry)}
}

func (m *MemoryCertificateRepository) lookup(deviceID string) (*certificateEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[deviceID]
	return entry, ok
}

func (m *MemoryCertificateRepository) entry(deviceID string) *certificateEntry {
	if entry, ok := m.lookup(deviceID); ok {
		return entry
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.entries[deviceID]; ok {
		return entry
	}
	entry := &certificateEntry{}
	m.entries[deviceID] = entry
	return entry
}

func cloneCertificate(cert *pkiDomain.DeviceCertificate) *pkiDomain.DeviceCertificate {
	clone := *cert
	clone.Certificate = append([]byte(nil), cert.Certificate...)
	clone.PublicKey = append([]byte(nil), cert.PublicKey...)
	clone.PrivateKey = nil
	if cert.RevokedAt != nil {
		revokedAt := *cert.RevokedAt
		clone.RevokedAt = &revokedAt
	}
	return &clone
}

// Get returns a copy of the device's certificate record.
func (m *MemoryCertificateRepository) Get(
	ctx context.Context,
	deviceID string,
) (*pkiDomain.DeviceCertificate, error) {
	entry, ok := m.lookup(deviceID)
	if !ok {
		return nil, pkiDomain.ErrCertificateNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.cert == nil {
		return nil, pkiDomain.ErrCertificateNotFound
	}
	return cloneCertificate(entry.cert), nil
}

// Upsert stores cert as the device's certificate unless the current one is revoked.
func (m *MemoryCertificateRepository) Upsert(ctx context.Context, cert *pkiDomain.DeviceCertificate) error {
	entry := m.entry(cert.DeviceID)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.cert != nil && entry.cert.Revoked() {
		return pkiDomain.ErrCertificateRevoked
	}
	entry.cert = cloneCertificate(cert)
	return nil
}

// Revoke marks the certificate revoked. It reports false when it was already revoked.
func (m *MemoryCertificateRepository) Revoke(
	ctx context.Context,
	deviceID string,
	revokedAt time.Time,
) (bool, error) {
	entry, ok := m.lookup(deviceID)
	if !ok {
		return false, pkiDomain.ErrCertificateNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.cert == nil {
		return false, pkiDomain.ErrCertificateNotFound
	}
	if entry.cert.Revoked() {
		return false, nil
	}
	at := revokedAt
	entry.cert.RevokedAt = &at
	return true, nil
}
