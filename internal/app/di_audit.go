package app

import (
	"fmt"

	auditRepository "github.com/allisson/devicetrust/internal/audit/repository"
	auditService "github.com/allisson/devicetrust/internal/audit/service"
	auditUseCase "github.com/allisson/devicetrust/internal/audit/usecase"
	"github.com/allisson/devicetrust/internal/config"
)

type auditComponents struct {
	securityEventRepo lazy[auditUseCase.SecurityEventRepository]
	auditUseCase      lazy[auditUseCase.AuditUseCase]
}

// SecurityEventRepository returns the audit store for the configured driver.
func (c *Container) SecurityEventRepository() (auditUseCase.SecurityEventRepository, error) {
	return c.securityEventRepo.get(func() (auditUseCase.SecurityEventRepository, error) {
		if !c.usesDatabase() {
			return auditRepository.NewMemorySecurityEventRepository(), nil
		}
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for security event repository: %w", err)
		}

		switch c.config.DBDriver {
		case config.DriverPostgres:
			return auditRepository.NewPostgreSQLSecurityEventRepository(db), nil
		case config.DriverMySQL:
			return auditRepository.NewMySQLSecurityEventRepository(db), nil
		default:
			return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
}

// AuditUseCase returns the audit sink.
func (c *Container) AuditUseCase() (auditUseCase.AuditUseCase, error) {
	return c.auditUseCase.get(func() (auditUseCase.AuditUseCase, error) {
		km, err := c.KeyMaterial()
		if err != nil {
			return nil, err
		}
		repo, err := c.SecurityEventRepository()
		if err != nil {
			return nil, err
		}
		bm, err := c.BusinessMetrics()
		if err != nil {
			return nil, err
		}

		signer, err := auditService.NewEventSigner(km.EventSigningKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create event signer: %w", err)
		}
		return auditUseCase.NewAuditUseCase(c.config, repo, signer, bm, c.Logger()), nil
	})
}
