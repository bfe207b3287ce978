// Package validation provides configuration validation for flowkit.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection.
//
// # Struct Tag Validation
//
//	type Config struct {
//	    Level string `validate:"required,oneof=debug info"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("binary", cmd.Binary).NotNegative("grace_period", cmd.GracePeriod)
//	err := v.Validate()
package validation
