package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/flowkit/errors"
)

// FieldError is a failed check on one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator collects failed checks. Checks chain:
//
//	err := validation.New().
//	    Required("binary", cmd.Binary).
//	    NotNegative("grace_period", cmd.GracePeriod).
//	    Validate()
type Validator struct {
	errs []FieldError
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{}
}

// Check records message for field unless ok.
func (v *Validator) Check(ok bool, field, message string) *Validator {
	if !ok {
		v.errs = append(v.errs, FieldError{Field: field, Message: message})
	}
	return v
}

// Required fails on blank values.
func (v *Validator) Required(field, value string) *Validator {
	return v.Check(strings.TrimSpace(value) != "", field, "is required")
}

// OneOf fails when a non-empty value is not listed in allowed.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	if value == "" {
		return v
	}
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	return v.Check(false, field, "must be one of: "+strings.Join(allowed, ", "))
}

// NotNegative fails on negative durations.
func (v *Validator) NotNegative(field string, d time.Duration) *Validator {
	return v.Check(d >= 0, field, fmt.Sprintf("must not be negative, got %s", d))
}

// HasErrors reports whether any check failed.
func (v *Validator) HasErrors() bool { return len(v.errs) > 0 }

// Errors returns the failed checks in order.
func (v *Validator) Errors() []FieldError { return v.errs }

// Validate returns nil when every check passed, otherwise a validation
// AppError listing the failures.
func (v *Validator) Validate() error {
	if !v.HasErrors() {
		return nil
	}

	messages := make([]string, len(v.errs))
	for i, e := range v.errs {
		messages[i] = e.Field + ": " + e.Message
	}
	return errors.Validation(strings.Join(messages, "; ")).WithDetail("fields", v.errs)
}
