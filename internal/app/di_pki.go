package app

import (
	"fmt"

	"github.com/allisson/devicetrust/internal/config"
	pkiRepository "github.com/allisson/devicetrust/internal/pki/repository"
	pkiService "github.com/allisson/devicetrust/internal/pki/service"
	pkiUseCase "github.com/allisson/devicetrust/internal/pki/usecase"
)

type pkiComponents struct {
	certificateRepo    lazy[pkiUseCase.CertificateRepository]
	certificateIssuer  lazy[pkiService.CertificateIssuer]
	certificateUseCase lazy[pkiUseCase.CertificateUseCase]
}

// CertificateRepository returns the certificate store for the configured driver.
func (c *Container) CertificateRepository() (pkiUseCase.CertificateRepository, error) {
	return c.certificateRepo.get(func() (pkiUseCase.CertificateRepository, error) {
		if !c.usesDatabase() {
			return pkiRepository.NewMemoryCertificateRepository(), nil
		}
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for certificate repository: %w", err)
		}

		switch c.config.DBDriver {
		case config.DriverPostgres:
			return pkiRepository.NewPostgreSQLCertificateRepository(db), nil
		case config.DriverMySQL:
			return pkiRepository.NewMySQLCertificateRepository(db), nil
		default:
			return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
}

// CertificateIssuer returns the device certificate issuer. Certificates are signed by
// the CA in CA_CERT_FILE and CA_KEY_FILE when configured, otherwise self-signed.
func (c *Container) CertificateIssuer() (pkiService.CertificateIssuer, error) {
	return c.certificateIssuer.get(func() (pkiService.CertificateIssuer, error) {
		var ca *pkiService.CA
		if c.config.CACertFile != "" {
			loaded, err := pkiService.LoadCA(c.config.CACertFile, c.config.CAKeyFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load certificate authority: %w", err)
			}
			ca = loaded
		}
		return pkiService.NewCertificateIssuer(c.config.CertificateValidity, ca), nil
	})
}

// CertificateUseCase returns the certificate authority use case.
func (c *Container) CertificateUseCase() (pkiUseCase.CertificateUseCase, error) {
	return c.certificateUseCase.get(func() (pkiUseCase.CertificateUseCase, error) {
		repo, err := c.CertificateRepository()
		if err != nil {
			return nil, err
		}
		issuer, err := c.CertificateIssuer()
		if err != nil {
			return nil, err
		}
		return pkiUseCase.NewCertificateUseCase(repo, issuer), nil
	})
}
