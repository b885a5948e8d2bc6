// Package domain defines the read-only view of registry devices used for trust decisions.
package domain

// DeviceType is the class of a device.
type DeviceType string

const (
	DeviceTypeSecurityCamera DeviceType = "security_camera"
	DeviceTypeSmartLock      DeviceType = "smart_lock"
	DeviceTypeThermostat     DeviceType = "thermostat"
	DeviceTypeEnergyMeter    DeviceType = "energy_meter"
	DeviceTypeOther          DeviceType = "other"
)

// DeviceTypes lists every known device type.
var DeviceTypes = []DeviceType{
	DeviceTypeSecurityCamera,
	DeviceTypeSmartLock,
	DeviceTypeThermostat,
	DeviceTypeEnergyMeter,
	DeviceTypeOther,
}

// Valid reports whether t is a known device type.
func (t DeviceType) Valid() bool {
	for _, known := range DeviceTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Protocol is the transport a device talks over.
type Protocol string

const (
	ProtocolMQTT Protocol = "mqtt"
	ProtocolWiFi Protocol = "wifi"
	ProtocolBLE  Protocol = "ble"
)

// Valid reports whether p is a known protocol.
func (p Protocol) Valid() bool {
	switch p {
	case ProtocolMQTT, ProtocolWiFi, ProtocolBLE:
		return true
	}
	return false
}

// Device is the subset of a registry device this subsystem depends on.
type Device struct {
	ID         string     `yaml:"id"`
	Type       DeviceType `yaml:"type"`
	Protocol   Protocol   `yaml:"protocol"`
	PropertyID string     `yaml:"property_id"`
}
