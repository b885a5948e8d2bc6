// Package domain defines device capabilities and the static capability table.
package domain

import (
	deviceDomain "github.com/allisson/devicetrust/internal/device/domain"
	"github.com/allisson/devicetrust/internal/errors"
)

// Capabilities a device class may be granted.
const (
	CapabilityReadSensor         = "read:sensor"
	CapabilityWriteActuator      = "write:actuator"
	CapabilityReadVideo          = "read:video"
	CapabilityControlPTZ         = "control:ptz"
	CapabilityControlLock        = "control:lock"
	CapabilityReadAccess         = "read:access"
	CapabilityControlTemperature = "control:temperature"
	CapabilityControlMode        = "control:mode"
	CapabilityReadEnergy         = "read:energy"
	CapabilityReadPower          = "read:power"
)

// ErrPermissionDenied indicates the device may not perform the requested action.
var ErrPermissionDenied = errors.Wrap(errors.ErrForbidden, "permission denied")

// BaseCapabilities are granted to every device type.
var BaseCapabilities = []string{CapabilityReadSensor, CapabilityWriteActuator}

// CapabilityTable maps each device type to the capabilities it adds to the base set.
var CapabilityTable = map[deviceDomain.DeviceType][]string{
	deviceDomain.DeviceTypeSecurityCamera: {CapabilityReadVideo, CapabilityControlPTZ},
	deviceDomain.DeviceTypeSmartLock:      {CapabilityControlLock, CapabilityReadAccess},
	deviceDomain.DeviceTypeThermostat:     {CapabilityControlTemperature, CapabilityControlMode},
	deviceDomain.DeviceTypeEnergyMeter:    {CapabilityReadEnergy, CapabilityReadPower},
	deviceDomain.DeviceTypeOther:          {},
}
