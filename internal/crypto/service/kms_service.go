package service

import (
	"context"
	"fmt"
	"net/url"

	"gocloud.dev/secrets"

	cryptoDomain "github.com/allisson/devicetrust/internal/crypto/domain"
	"github.com/allisson/devicetrust/internal/errors"

	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// keeperSchemes are the URI schemes of the registered gocloud.dev drivers.
var keeperSchemes = map[string]struct{}{
	"awskms":        {},
	"azurekeyvault": {},
	"gcpkms":        {},
	"hashivault":    {},
	"base64key":     {},
}

// kmsService opens gocloud.dev secret keepers that wrap the master key.
type kmsService struct{}

// NewKMSService creates a new KMS service instance.
func NewKMSService() KMSService {
	return &kmsService{}
}

// OpenKeeper opens the keeper addressed by keyURI. The scheme must belong to one of the
// registered drivers; anything else is rejected before a driver is consulted.
func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error) {
	parsed, err := url.Parse(keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", errors.Wrap(errors.ErrInvalidInput, err.Error()))
	}
	if _, ok := keeperSchemes[parsed.Scheme]; !ok {
		return nil, fmt.Errorf(
			"failed to open KMS keeper: %w",
			errors.Wrapf(errors.ErrInvalidInput, "unsupported scheme %q", parsed.Scheme),
		)
	}

	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}
