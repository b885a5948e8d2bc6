package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/allisson/devicetrust/internal/database"
	apperrors "github.com/allisson/devicetrust/internal/errors"
	pkiDomain "github.com/allisson/devicetrust/internal/pki/domain"
)

// PostgreSQLCertificateRepository implements certificate persistence for PostgreSQL.
type PostgreSQLCertificateRepository struct {
	db *sql.DB
}

// NewPostgreSQLCertificateRepository creates a new PostgreSQL certificate repository.
func NewPostgreSQLCertificateRepository(db *sql.DB) *PostgreSQLCertificateRepository {
	return &PostgreSQLCertificateRepository{db: db}
}

// Get retrieves the device's certificate record.
func (p *PostgreSQLCertificateRepository) Get(
	ctx context.Context,
	deviceID string,
) (*pkiDomain.DeviceCertificate, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT device_id, serial_number, certificate, public_key, issued_at, expires_at, revoked_at
			  FROM device_certificates WHERE device_id = $1`

	var cert pkiDomain.DeviceCertificate
	var revokedAt sql.NullTime

	err := querier.QueryRowContext(ctx, query, deviceID).Scan(
		&cert.DeviceID,
		&cert.SerialNumber,
		&cert.Certificate,
		&cert.PublicKey,
		&cert.IssuedAt,
		&cert.ExpiresAt,
		&revokedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pkiDomain.ErrCertificateNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get device certificate")
	}

	if revokedAt.Valid {
		cert.RevokedAt = &revokedAt.Time
	}
	return &cert, nil
}

// Upsert inserts or replaces the device's certificate. The conflict clause refuses to
// overwrite a revoked row, which surfaces as zero affected rows.
func (p *PostgreSQLCertificateRepository) Upsert(ctx context.Context, cert *pkiDomain.DeviceCertificate) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO device_certificates (device_id, serial_number, certificate, public_key,
			  issued_at, expires_at, revoked_at)
			  VALUES ($1, $2, $3, $4, $5, $6, NULL)
			  ON CONFLICT (device_id) DO UPDATE SET
			  serial_number = EXCLUDED.serial_number,
			  certificate = EXCLUDED.certificate,
			  public_key = EXCLUDED.public_key,
			  issued_at = EXCLUDED.issued_at,
			  expires_at = EXCLUDED.expires_at
			  WHERE device_certificates.revoked_at IS NULL`

	result, err := querier.ExecContext(
		ctx,
		query,
		cert.DeviceID,
		cert.SerialNumber,
		cert.Certificate,
		cert.PublicKey,
		cert.IssuedAt,
		cert.ExpiresAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to store device certificate")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		return pkiDomain.ErrCertificateRevoked
	}
	return nil
}

// Revoke sets revoked_at once. It reports false when the certificate was already revoked.
func (p *PostgreSQLCertificateRepository) Revoke(
	ctx context.Context,
	deviceID string,
	revokedAt time.Time,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(
		ctx,
		`UPDATE device_certificates SET revoked_at = $1 WHERE device_id = $2 AND revoked_at IS NULL`,
		revokedAt,
		deviceID,
	)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to revoke device certificate")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to get rows affected")
	}
	if rows > 0 {
		return true, nil
	}

	if _, err := p.Get(ctx, deviceID); err != nil {
		return false, err
	}
	return false, nil
}
