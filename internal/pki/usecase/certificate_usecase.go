package usecase

import (
	"bytes"
	"context"
	"time"

	apperrors "github.com/allisson/devicetrust/internal/errors"
	pkiDomain "github.com/allisson/devicetrust/internal/pki/domain"
	pkiService "github.com/allisson/devicetrust/internal/pki/service"
)

type certificateUseCase struct {
	certRepo CertificateRepository
	issuer   pkiService.CertificateIssuer
	now      func() time.Time
}

// NewCertificateUseCase creates a CertificateUseCase.
func NewCertificateUseCase(
	certRepo CertificateRepository,
	issuer pkiService.CertificateIssuer,
) CertificateUseCase {
	return &certificateUseCase{
		certRepo: certRepo,
		issuer:   issuer,
		now:      time.Now,
	}
}

// Issue implements CertificateUseCase.
func (c *certificateUseCase) Issue(ctx context.Context, deviceID string) (*pkiDomain.DeviceCertificate, error) {
	cert, err := c.issuer.Issue(deviceID, c.now())
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to issue certificate")
	}

	if err := c.certRepo.Upsert(ctx, cert); err != nil {
		return nil, err
	}
	return cert, nil
}

// Verify implements CertificateUseCase.
func (c *certificateUseCase) Verify(ctx context.Context, deviceID string, presented []byte) error {
	stored, err := c.certRepo.Get(ctx, deviceID)
	if err != nil {
		return err
	}

	if stored.StatusAt(c.now()) != pkiDomain.StatusIssued {
		return pkiDomain.ErrCertificateInvalid
	}

	presentedDER, parsed, err := pkiService.DecodeCertificate(presented)
	if err != nil {
		return pkiDomain.ErrCertificateInvalid
	}
	storedDER, _, err := pkiService.DecodeCertificate(stored.Certificate)
	if err != nil {
		return pkiDomain.ErrCertificateInvalid
	}

	if !bytes.Equal(presentedDER, storedDER) {
		return pkiDomain.ErrCertificateInvalid
	}
	if err := c.issuer.CheckIssuer(parsed); err != nil {
		return pkiDomain.ErrCertificateInvalid
	}
	return nil
}

// Revoke implements CertificateUseCase.
func (c *certificateUseCase) Revoke(ctx context.Context, deviceID string) (bool, error) {
	return c.certRepo.Revoke(ctx, deviceID, c.now().UTC())
}

// Status implements CertificateUseCase.
func (c *certificateUseCase) Status(ctx context.Context, deviceID string) (pkiDomain.Status, error) {
	cert, err := c.certRepo.Get(ctx, deviceID)
	if err != nil {
		if apperrors.Is(err, pkiDomain.ErrCertificateNotFound) {
			return pkiDomain.StatusNonExistent, nil
		}
		return "", err
	}
	return cert.StatusAt(c.now()), nil
}
