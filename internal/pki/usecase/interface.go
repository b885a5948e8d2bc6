// Package usecase implements device certificate issuance, verification and revocation.
package usecase

import (
	"context"
	"time"

	pkiDomain "github.com/allisson/devicetrust/internal/pki/domain"
)

// CertificateRepository persists one certificate record per device.
type CertificateRepository interface {
	// Get returns the device's certificate or ErrCertificateNotFound.
	Get(ctx context.Context, deviceID string) (*pkiDomain.DeviceCertificate, error)

	// Upsert stores cert as the device's certificate. Returns ErrCertificateRevoked when
	// the stored certificate is revoked.
	Upsert(ctx context.Context, cert *pkiDomain.DeviceCertificate) error

	// Revoke marks the device's certificate revoked and reports whether it changed.
	Revoke(ctx context.Context, deviceID string, revokedAt time.Time) (bool, error)
}

// CertificateUseCase manages the certificate lifecycle of devices.
type CertificateUseCase interface {
	// Issue generates a key pair and certificate for the device. The returned value is
	// the only place the private key ever appears.
	Issue(ctx context.Context, deviceID string) (*pkiDomain.DeviceCertificate, error)

	// Verify checks a presented PEM or DER certificate against the stored one. Returns
	// nil when it is valid, ErrCertificateNotFound when nothing is stored and
	// ErrCertificateInvalid otherwise.
	Verify(ctx context.Context, deviceID string, presented []byte) error

	// Revoke permanently revokes the device's certificate. Revoking twice is not an
	// error; the bool reports whether this call changed the state.
	Revoke(ctx context.Context, deviceID string) (bool, error)

	// Status returns the lifecycle state of the device's certificate.
	Status(ctx context.Context, deviceID string) (pkiDomain.Status, error)
}
