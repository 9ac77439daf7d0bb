package settings

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrDomainViolation is returned when a field holds a value outside its valid range.
	ErrDomainViolation = errors.New("value out of domain")

	// ErrUnknownField is returned when a patch names a field the variant does not have.
	ErrUnknownField = errors.New("unknown field")

	// ErrDiscriminantTampering is returned when a patch tries to set pipelineType.
	ErrDiscriminantTampering = errors.New("pipeline type cannot be overridden")

	// ErrInvalidValue is returned when a patch value cannot be decoded into the field's type.
	ErrInvalidValue = errors.New("invalid value")

	// ErrUnsupportedPipeline is returned for pipeline types that have no settings schema.
	ErrUnsupportedPipeline = errors.New("pipeline type has no settings schema")
)

// FieldError describes a single rejected field. It unwraps to its Kind so
// callers can match with errors.Is.
type FieldError struct {
	Field  string
	Value  any
	Reason string
	Kind   error
}

func (e *FieldError) Error() string {
	switch {
	case e.Reason == "":
		return fmt.Sprintf("%s: %v", e.Field, e.Kind)
	case e.Value == nil:
		return fmt.Sprintf("%s: %v: %s", e.Field, e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s: %v: %s, got %v", e.Field, e.Kind, e.Reason, e.Value)
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}

// checker accumulates domain violations so Validate can report all of them at once.
type checker struct {
	errs []error
}

func (c *checker) fail(field string, value any, reason string) {
	c.errs = append(c.errs, &FieldError{Field: field, Value: value, Reason: reason, Kind: ErrDomainViolation})
}

func (c *checker) atLeast(field string, v, lo int) {
	if v < lo {
		c.fail(field, v, fmt.Sprintf("must be >= %d", lo))
	}
}

func (c *checker) intRange(field string, v, lo, hi int) {
	if v < lo || v > hi {
		c.fail(field, v, fmt.Sprintf("must be between %d and %d", lo, hi))
	}
}

func (c *checker) floatAtLeast(field string, v, lo float64) {
	if !(v >= lo) || math.IsInf(v, 0) {
		c.fail(field, v, fmt.Sprintf("must be finite and >= %g", lo))
	}
}

func (c *checker) floatRange(field string, v, lo, hi float64) {
	// written as a negated range so NaN is rejected too
	if !(v >= lo && v <= hi) {
		c.fail(field, v, fmt.Sprintf("must be between %g and %g", lo, hi))
	}
}

func (c *checker) positive(field string, v float64) {
	if !(v > 0) || math.IsInf(v, 0) {
		c.fail(field, v, "must be finite and > 0")
	}
}

func (c *checker) valid(field string, v interface{ Valid() bool }) {
	if !v.Valid() {
		c.fail(field, v, "not a known value")
	}
}

func (c *checker) err() error {
	return errors.Join(c.errs...)
}
