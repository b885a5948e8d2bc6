package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/allisson/devicetrust/internal/config"
	deviceDomain "github.com/allisson/devicetrust/internal/device/domain"
	deviceRepository "github.com/allisson/devicetrust/internal/device/repository"
	"github.com/allisson/devicetrust/internal/http"
	policyService "github.com/allisson/devicetrust/internal/policy/service"
	"github.com/allisson/devicetrust/internal/ratelimit"
	securityUseCase "github.com/allisson/devicetrust/internal/security/usecase"
)

// readinessProbeDeviceID is looked up by the readiness check. A not-found answer still
// proves the registry is reachable.
const readinessProbeDeviceID = "readiness-probe"

type securityComponents struct {
	deviceRegistry lazy[deviceDomain.Registry]
	resolver       lazy[securityUseCase.PermissionResolver]
	rateLimiter    lazy[ratelimit.Limiter]
	deviceSecurity lazy[securityUseCase.DeviceSecurity]
}

// DeviceRegistry returns the device registry. DEVICE_REGISTRY_FILE takes precedence
// over the database; the memory driver without a file starts empty.
func (c *Container) DeviceRegistry() (deviceDomain.Registry, error) {
	return c.deviceRegistry.get(func() (deviceDomain.Registry, error) {
		if c.config.DeviceRegistryFile != "" {
			registry, err := deviceRepository.LoadMemoryRegistry(c.config.DeviceRegistryFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load device registry file: %w", err)
			}
			return registry, nil
		}
		if !c.usesDatabase() {
			return deviceRepository.NewMemoryRegistry(), nil
		}

		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for device registry: %w", err)
		}
		switch c.config.DBDriver {
		case config.DriverPostgres:
			return deviceRepository.NewPostgreSQLRegistry(db), nil
		case config.DriverMySQL:
			return deviceRepository.NewMySQLRegistry(db), nil
		default:
			return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
}

// PermissionResolver returns the capability table resolver.
func (c *Container) PermissionResolver() securityUseCase.PermissionResolver {
	resolver, _ := c.resolver.get(func() (securityUseCase.PermissionResolver, error) {
		return policyService.NewResolver(nil), nil
	})
	return resolver
}

// RateLimiter returns the per-device action limiter.
func (c *Container) RateLimiter() (ratelimit.Limiter, error) {
	return c.rateLimiter.get(func() (ratelimit.Limiter, error) {
		limiter, err := ratelimit.NewLimiter(c.config)
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limiter: %w", err)
		}
		return limiter, nil
	})
}

// DeviceSecurity returns the device security facade, instrumented with business metrics.
func (c *Container) DeviceSecurity() (securityUseCase.DeviceSecurity, error) {
	return c.deviceSecurity.get(c.initDeviceSecurity)
}

func (c *Container) initDeviceSecurity() (securityUseCase.DeviceSecurity, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, err
	}
	registry, err := c.DeviceRegistry()
	if err != nil {
		return nil, err
	}
	tokens, err := c.TokenUseCase()
	if err != nil {
		return nil, err
	}
	pairing, err := c.PairingUseCase()
	if err != nil {
		return nil, err
	}
	encryption, err := c.EncryptionUseCase()
	if err != nil {
		return nil, err
	}
	certificates, err := c.CertificateUseCase()
	if err != nil {
		return nil, err
	}
	limiter, err := c.RateLimiter()
	if err != nil {
		return nil, err
	}
	audit, err := c.AuditUseCase()
	if err != nil {
		return nil, err
	}
	bm, err := c.BusinessMetrics()
	if err != nil {
		return nil, err
	}

	facade := securityUseCase.NewDeviceSecurity(securityUseCase.Dependencies{
		Config:       c.config,
		TxManager:    txManager,
		Registry:     registry,
		Tokens:       tokens,
		Pairing:      pairing,
		Encryption:   encryption,
		Certificates: certificates,
		Resolver:     c.PermissionResolver(),
		Limiter:      limiter,
		Audit:        audit,
		Logger:       c.Logger(),
	})
	return securityUseCase.NewDeviceSecurityWithMetrics(facade, bm), nil
}

func registryReadinessCheck(registry deviceDomain.Registry) http.ReadinessCheck {
	return func(ctx context.Context) error {
		_, err := registry.GetDevice(ctx, readinessProbeDeviceID)
		if err == nil || errors.Is(err, deviceDomain.ErrDeviceNotFound) {
			return nil
		}
		return err
	}
}
