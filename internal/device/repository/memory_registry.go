// Package repository provides device registry adapters: an in-memory registry loaded
// from a YAML fixture and read-only PostgreSQL and MySQL lookups.
package repository

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	deviceDomain "github.com/allisson/devicetrust/internal/device/domain"
)

// registryFile is the YAML fixture layout:
//
//	devices:
//	  - id: lock-1
//	    type: smart_lock
//	    protocol: ble
//	    property_id: prop-1
type registryFile struct {
	Devices []deviceDomain.Device `yaml:"devices"`
}

// MemoryRegistry serves devices from process memory.
type MemoryRegistry struct {
	mu      sync.RWMutex
	devices map[string]deviceDomain.Device
}

// NewMemoryRegistry creates a registry holding devices.
func NewMemoryRegistry(devices ...deviceDomain.Device) *MemoryRegistry {
	r := &MemoryRegistry{devices: make(map[string]deviceDomain.Device, len(devices))}
	for _, device := range devices {
		r.devices[device.ID] = device
	}
	return r
}

// LoadMemoryRegistry reads a YAML fixture into a MemoryRegistry.
func LoadMemoryRegistry(path string) (*MemoryRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read device registry file: %w", err)
	}
	return ParseMemoryRegistry(data)
}

// ParseMemoryRegistry decodes a YAML fixture. Devices with an empty id, an unknown
// type or an unknown protocol are rejected.
func ParseMemoryRegistry(data []byte) (*MemoryRegistry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse device registry file: %w", err)
	}

	for i, device := range file.Devices {
		if device.ID == "" {
			return nil, fmt.Errorf("device %d: missing id", i)
		}
		if !device.Type.Valid() {
			return nil, fmt.Errorf("device %s: unknown type %q", device.ID, device.Type)
		}
		if !device.Protocol.Valid() {
			return nil, fmt.Errorf("device %s: unknown protocol %q", device.ID, device.Protocol)
		}
	}
	return NewMemoryRegistry(file.Devices...), nil
}

// Put adds or replaces a device.
func (r *MemoryRegistry) Put(device deviceDomain.Device) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices[device.ID] = device
}

// GetDevice implements deviceDomain.Registry.
func (r *MemoryRegistry) GetDevice(ctx context.Context, deviceID string) (*deviceDomain.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", deviceDomain.ErrRegistryUnavailable, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	device, ok := r.devices[deviceID]
	if !ok {
		return nil, deviceDomain.ErrDeviceNotFound
	}
	return &device, nil
}
