package app

import (
	"context"
	"fmt"

	cryptoDomain "github.com/allisson/devicetrust/internal/crypto/domain"
	cryptoService "github.com/allisson/devicetrust/internal/crypto/service"
	cryptoUseCase "github.com/allisson/devicetrust/internal/crypto/usecase"
)

type cryptoComponents struct {
	kmsService        lazy[cryptoService.KMSService]
	aeadManager       lazy[cryptoService.AEADManager]
	masterKey         lazy[*cryptoDomain.MasterKey]
	keyMaterial       lazy[*cryptoUseCase.KeyMaterial]
	encryptionUseCase lazy[cryptoUseCase.EncryptionUseCase]
}

// KMSService returns the KMS service used to unwrap the master key.
func (c *Container) KMSService() cryptoService.KMSService {
	service, _ := c.kmsService.get(func() (cryptoService.KMSService, error) {
		return cryptoService.NewKMSService(), nil
	})
	return service
}

// AEADManager returns the AEAD cipher factory.
func (c *Container) AEADManager() cryptoService.AEADManager {
	manager, _ := c.aeadManager.get(func() (cryptoService.AEADManager, error) {
		return cryptoService.NewAEADManager(), nil
	})
	return manager
}

// MasterKey returns the master key decoded from MASTER_KEY, unwrapped through the KMS
// when KMS_PROVIDER and KMS_KEY_URI are set.
func (c *Container) MasterKey() (*cryptoDomain.MasterKey, error) {
	return c.masterKey.get(func() (*cryptoDomain.MasterKey, error) {
		masterKey, err := cryptoDomain.LoadMasterKey(context.Background(), c.config, c.KMSService(), c.Logger())
		if err != nil {
			return nil, fmt.Errorf("failed to load master key: %w", err)
		}
		return masterKey, nil
	})
}

// KeyMaterial returns the subkeys derived from the master key. The master key itself
// is zeroed once the subkeys exist.
func (c *Container) KeyMaterial() (*cryptoUseCase.KeyMaterial, error) {
	return c.keyMaterial.get(func() (*cryptoUseCase.KeyMaterial, error) {
		masterKey, err := c.MasterKey()
		if err != nil {
			return nil, err
		}
		defer masterKey.Close()

		km, err := cryptoUseCase.NewKeyMaterial(masterKey, cryptoService.NewHKDFKeyDeriver())
		if err != nil {
			return nil, fmt.Errorf("failed to derive key material: %w", err)
		}
		return km, nil
	})
}

// EncryptionUseCase returns the device message encryption engine.
func (c *Container) EncryptionUseCase() (cryptoUseCase.EncryptionUseCase, error) {
	return c.encryptionUseCase.get(func() (cryptoUseCase.EncryptionUseCase, error) {
		km, err := c.KeyMaterial()
		if err != nil {
			return nil, err
		}

		algorithm, err := cryptoDomain.ParseAlgorithm(c.config.EncryptionAlgorithm)
		if err != nil {
			return nil, fmt.Errorf("invalid encryption algorithm %q: %w", c.config.EncryptionAlgorithm, err)
		}

		useCase, err := cryptoUseCase.NewEncryptionUseCase(c.AEADManager(), km, algorithm)
		if err != nil {
			return nil, fmt.Errorf("failed to create encryption use case: %w", err)
		}
		return useCase, nil
	})
}

// closeKeys zeroes the master key and every derived subkey that was created.
func (c *Container) closeKeys() {
	if masterKey := c.masterKey.val; masterKey != nil {
		masterKey.Close()
	}
	if km := c.keyMaterial.val; km != nil {
		km.Close()
	}
}
