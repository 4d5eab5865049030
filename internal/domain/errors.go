package domain

import (
	"fmt"
	"strings"
)

// Error codes surfaced in API error responses.
const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeOutOfRange      = "OUT_OF_RANGE"
	ErrCodeInvalidEnum     = "INVALID_ENUM"
	ErrCodeUnsupportedUnit = "UNSUPPORTED_UNIT"
	ErrCodeDomain          = "DOMAIN_ERROR"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// OutOfRangeError reports a value outside the physiological or
// algorithm-applicable bounds for a field. Bounds are half-open when
// MinExclusive is set (e.g. CRP must be strictly positive).
type OutOfRangeError struct {
	Field        string  `json:"field"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	MinExclusive bool    `json:"min_exclusive,omitempty"`
	Value        float64 `json:"value"`
	Unit         string  `json:"unit,omitempty"`
}

func (e *OutOfRangeError) Error() string {
	lower := "["
	if e.MinExclusive {
		lower = "("
	}
	if e.Unit != "" {
		return fmt.Sprintf("field '%s' value %g %s outside allowed range %s%g, %g]",
			e.Field, e.Value, e.Unit, lower, e.Min, e.Max)
	}
	return fmt.Sprintf("field '%s' value %g outside allowed range %s%g, %g]",
		e.Field, e.Value, lower, e.Min, e.Max)
}

// NewOutOfRangeError creates a new OutOfRangeError.
func NewOutOfRangeError(field string, min, max, value float64) *OutOfRangeError {
	return &OutOfRangeError{Field: field, Min: min, Max: max, Value: value}
}

// InvalidEnumError reports an unrecognized categorical value.
type InvalidEnumError struct {
	Field   string   `json:"field"`
	Value   string   `json:"value"`
	Allowed []string `json:"allowed"`
}

func (e *InvalidEnumError) Error() string {
	return fmt.Sprintf("field '%s' has unrecognized value '%s' (allowed: %s)",
		e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

// NewInvalidEnumError creates a new InvalidEnumError.
func NewInvalidEnumError(field, value string, allowed []string) *InvalidEnumError {
	return &InvalidEnumError{Field: field, Value: value, Allowed: allowed}
}

// UnsupportedUnitError reports a unit that cannot be converted to the
// canonical unit for a biomarker.
type UnsupportedUnitError struct {
	Biomarker string   `json:"biomarker"`
	Unit      string   `json:"unit"`
	Supported []string `json:"supported"`
}

func (e *UnsupportedUnitError) Error() string {
	return fmt.Sprintf("unsupported unit '%s' for biomarker '%s' (supported: %s)",
		e.Unit, e.Biomarker, strings.Join(e.Supported, ", "))
}

// NewUnsupportedUnitError creates a new UnsupportedUnitError.
func NewUnsupportedUnitError(biomarker, unit string, supported []string) *UnsupportedUnitError {
	return &UnsupportedUnitError{Biomarker: biomarker, Unit: unit, Supported: supported}
}

// DomainError reports a mathematically undefined intermediate, such as the
// logarithm of a non-positive number inside the calibration transform.
// It is surfaced instead of letting NaN propagate into results.
type DomainError struct {
	Op      string  `json:"op"`
	Message string  `json:"message"`
	Value   float64 `json:"value"`
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("domain error in %s: %s (value %g)", e.Op, e.Message, e.Value)
}

// NewDomainError creates a new DomainError.
func NewDomainError(op, message string, value float64) *DomainError {
	return &DomainError{Op: op, Message: message, Value: value}
}

// ValidationErrors aggregates every violation found in one validation pass.
// Validation never fails fast on the first error: callers need the complete
// list of offending fields to fix a submitted form in one round trip.
type ValidationErrors struct {
	Errors []error `json:"errors"`
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("validation failed with %d error(s): %s",
		len(e.Errors), strings.Join(msgs, "; "))
}

// Append adds a violation to the aggregate.
func (e *ValidationErrors) Append(err error) {
	e.Errors = append(e.Errors, err)
}

// HasErrors reports whether any violation was collected.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// Fields returns the field names referenced by the collected violations,
// in collection order. Used for error reporting and tests.
func (e *ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		switch v := err.(type) {
		case *ValidationError:
			fields = append(fields, v.Field)
		case *OutOfRangeError:
			fields = append(fields, v.Field)
		case *InvalidEnumError:
			fields = append(fields, v.Field)
		case *UnsupportedUnitError:
			fields = append(fields, v.Biomarker)
		}
	}
	return fields
}
