package validation

import (
	validation "github.com/jellydator/validation"

	policyDomain "github.com/allisson/devicetrust/internal/policy/domain"
)

// actionRules holds the parameter rules of every action that accepts parameters.
// Actions not listed here accept no parameters at all.
var actionRules = map[string]func(params map[string]any) error{
	policyDomain.CapabilityControlLock: func(params map[string]any) error {
		return validation.Validate(params, validation.Map(
			validation.Key("state", validation.Required, validation.In("locked", "unlocked")),
		))
	},
	policyDomain.CapabilityControlTemperature: func(params map[string]any) error {
		return validation.Validate(params, validation.Map(
			validation.Key("target", validation.Required, NumberBetween(5, 35)),
		))
	},
	policyDomain.CapabilityControlMode: func(params map[string]any) error {
		return validation.Validate(params, validation.Map(
			validation.Key("mode", validation.Required, validation.In("heat", "cool", "auto", "off")),
		))
	},
	policyDomain.CapabilityControlPTZ: func(params map[string]any) error {
		err := validation.Validate(params, validation.Map(
			validation.Key("pan", NumberBetween(-180, 180)).Optional(),
			validation.Key("tilt", NumberBetween(-90, 90)).Optional(),
			validation.Key("zoom", NumberBetween(1, 20)).Optional(),
		))
		if err != nil {
			return err
		}
		if len(params) == 0 {
			return validation.NewError("validation_ptz_empty", "at least one of pan, tilt or zoom is required")
		}
		return nil
	},
	policyDomain.CapabilityWriteActuator: func(params map[string]any) error {
		return validation.Validate(params, validation.Map(
			validation.Key("channel", validation.Required, String, validation.By(func(value any) error {
				return validation.Validate(value, NotBlank, NoWhitespace)
			})),
			validation.Key("value", validation.NotNil).Optional(),
		))
	},
}

// ValidateActionParameters checks params against the rules of action. Unknown keys,
// missing required keys and out-of-range values are rejected with ErrInvalidInput.
// Actions without rules only accept nil or empty params.
func ValidateActionParameters(action string, params map[string]any) error {
	rules, ok := actionRules[action]
	if !ok {
		if len(params) > 0 {
			return WrapValidationError(
				validation.NewError("validation_no_parameters", "action "+action+" accepts no parameters"),
			)
		}
		return nil
	}

	if params == nil {
		params = map[string]any{}
	}
	return WrapValidationError(rules(params))
}
