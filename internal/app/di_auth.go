package app

import (
	"fmt"

	authRepository "github.com/allisson/devicetrust/internal/auth/repository"
	authService "github.com/allisson/devicetrust/internal/auth/service"
	authUseCase "github.com/allisson/devicetrust/internal/auth/usecase"
	"github.com/allisson/devicetrust/internal/config"
)

type authComponents struct {
	secretService  lazy[authService.SecretService]
	credentialRepo lazy[authUseCase.CredentialRepository]
	pairingRepo    lazy[authUseCase.PairingSecretRepository]
	tokenUseCase   lazy[authUseCase.TokenUseCase]
	pairingUseCase lazy[authUseCase.PairingUseCase]
}

// SecretService returns the Argon2id pairing secret service.
func (c *Container) SecretService() authService.SecretService {
	service, _ := c.secretService.get(func() (authService.SecretService, error) {
		return authService.NewSecretService(), nil
	})
	return service
}

// CredentialRepository returns the credential store for the configured driver.
func (c *Container) CredentialRepository() (authUseCase.CredentialRepository, error) {
	return c.credentialRepo.get(func() (authUseCase.CredentialRepository, error) {
		if !c.usesDatabase() {
			return authRepository.NewMemoryCredentialRepository(), nil
		}
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for credential repository: %w", err)
		}

		switch c.config.DBDriver {
		case config.DriverPostgres:
			return authRepository.NewPostgreSQLCredentialRepository(db), nil
		case config.DriverMySQL:
			return authRepository.NewMySQLCredentialRepository(db), nil
		default:
			return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
}

// PairingSecretRepository returns the pairing secret store for the configured driver.
func (c *Container) PairingSecretRepository() (authUseCase.PairingSecretRepository, error) {
	return c.pairingRepo.get(func() (authUseCase.PairingSecretRepository, error) {
		if !c.usesDatabase() {
			return authRepository.NewMemoryPairingSecretRepository(), nil
		}
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for pairing secret repository: %w", err)
		}

		switch c.config.DBDriver {
		case config.DriverPostgres:
			return authRepository.NewPostgreSQLPairingSecretRepository(db), nil
		case config.DriverMySQL:
			return authRepository.NewMySQLPairingSecretRepository(db), nil
		default:
			return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
}

// TokenUseCase returns the token service, instrumented with business metrics.
func (c *Container) TokenUseCase() (authUseCase.TokenUseCase, error) {
	return c.tokenUseCase.get(func() (authUseCase.TokenUseCase, error) {
		km, err := c.KeyMaterial()
		if err != nil {
			return nil, err
		}
		credentialRepo, err := c.CredentialRepository()
		if err != nil {
			return nil, err
		}
		bm, err := c.BusinessMetrics()
		if err != nil {
			return nil, err
		}

		signer, err := authService.NewTokenSigner(km.TokenSigningKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create token signer: %w", err)
		}
		fingerprinter, err := authService.NewTokenFingerprinter(km.TokenFingerprintKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create token fingerprinter: %w", err)
		}

		useCase := authUseCase.NewTokenUseCase(c.config, credentialRepo, signer, fingerprinter)
		return authUseCase.NewTokenUseCaseWithMetrics(useCase, bm), nil
	})
}

// PairingUseCase returns the pairing secret use case.
func (c *Container) PairingUseCase() (authUseCase.PairingUseCase, error) {
	return c.pairingUseCase.get(func() (authUseCase.PairingUseCase, error) {
		repo, err := c.PairingSecretRepository()
		if err != nil {
			return nil, err
		}
		return authUseCase.NewPairingUseCase(repo, c.SecretService()), nil
	})
}
