package domain

import (
	"github.com/allisson/devicetrust/internal/errors"
)

// Registry errors.
var (
	// ErrDeviceNotFound indicates the registry has no device with the given id.
	ErrDeviceNotFound = errors.Wrap(errors.ErrNotFound, "device not found")

	// ErrRegistryUnavailable indicates the registry lookup failed or timed out.
	ErrRegistryUnavailable = errors.Wrap(errors.ErrUnavailable, "device registry unavailable")
)
