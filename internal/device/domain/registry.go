package domain

import "context"

// Registry looks up devices. It is read-only: devices are created and deleted elsewhere.
type Registry interface {
	// GetDevice returns the device or ErrDeviceNotFound. Any other failure wraps
	// ErrRegistryUnavailable.
	GetDevice(ctx context.Context, deviceID string) (*Device, error)
}
