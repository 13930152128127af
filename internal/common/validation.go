package common

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/joseph-ayodele/contracts-parser/constants"
)

// ValidationError is one failed rule for one setting.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s=%v %s", e.Field, e.Value, e.Message)
}

// Validator collects rule failures so configuration errors are reported together.
type Validator struct {
	errors []ValidationError
}

func NewValidator() *Validator {
	return &Validator{}
}

// Field applies rules to value and records every failure.
func (v *Validator) Field(name string, value any, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if msg := rule(value); msg != "" {
			v.errors = append(v.errors, ValidationError{Field: name, Value: value, Message: msg})
		}
	}
	return v
}

func (v *Validator) HasErrors() bool { return len(v.errors) > 0 }

func (v *Validator) Errors() []ValidationError { return v.errors }

// Error joins all failures under ErrValidation, or returns nil.
func (v *Validator) Error() error {
	if !v.HasErrors() {
		return nil
	}
	msgs := make([]string, len(v.errors))
	for i, e := range v.errors {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

// ValidationRule returns a failure message, or "" when value passes.
type ValidationRule func(value any) string

// Required rejects nil, blank strings and empty lists.
func Required(value any) string {
	switch v := value.(type) {
	case nil:
		return "is required"
	case string:
		if strings.TrimSpace(v) == "" {
			return "is required"
		}
	case []string:
		if len(v) == 0 {
			return "is required"
		}
	}
	return ""
}

// Positive rejects integers below 1.
func Positive(value any) string {
	n, ok := value.(int)
	switch {
	case !ok:
		return "must be an integer"
	case n < 1:
		return "must be at least 1"
	}
	return ""
}

// NonNegativeDuration accepts zero, meaning "no limit".
func NonNegativeDuration(value any) string {
	d, ok := value.(time.Duration)
	switch {
	case !ok:
		return "must be a duration"
	case d < 0:
		return "must not be negative"
	}
	return ""
}

// SupportedExtensions rejects extensions the document-to-text stage cannot convert.
func SupportedExtensions(value any) string {
	exts, ok := value.([]string)
	if !ok {
		return "must be a list of extensions"
	}
	var bad []string
	for _, e := range exts {
		if constants.MapExtToFormat(e) == "" {
			bad = append(bad, e)
		}
	}
	if len(bad) > 0 {
		return "has unsupported extensions " + strings.Join(bad, ", ")
	}
	return ""
}

// OneOf accepts only the listed strings.
func OneOf(allowed ...string) ValidationRule {
	return func(value any) string {
		s, ok := value.(string)
		if !ok || !slices.Contains(allowed, s) {
			return "must be one of: " + strings.Join(allowed, ", ")
		}
		return ""
	}
}
