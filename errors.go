package apidesc

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Sentinel errors for matching with errors.Is.
var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("apidesc: validation failed")

	// ErrConfiguration matches every *ConfigurationError.
	ErrConfiguration = errors.New("apidesc: invalid configuration")

	// ErrRegistryConflict matches every *ConflictError.
	ErrRegistryConflict = errors.New("apidesc: registry conflict")
)

// ValidationError reports that a builder's required invariant was not met:
// a missing mandatory field, an empty resource or a duplicate single-valued
// operation. Nothing is constructed when it is returned.
type ValidationError struct {
	// Object is the kind of value being built, e.g. "Action" or "Resource".
	Object string

	// Message is a human-readable summary.
	Message string

	// Fields maps field names to per-field messages, if any.
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Object, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ConfigurationError reports a violated cross-field business rule, such as a
// mutating operation declared without a resource schema.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// Configurationf creates a ConfigurationError with a formatted message.
func Configurationf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError reports that a name in a definitions or errors table is
// already bound to a structurally different value.
type ConflictError struct {
	Table string
	Name  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q is already registered with a different value", e.Table, e.Name)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrRegistryConflict
}

// invalid creates a ValidationError without field details.
func invalid(object, format string, args ...any) *ValidationError {
	return &ValidationError{
		Object:  object,
		Message: fmt.Sprintf(format, args...),
	}
}

// fromValidator converts validator errors into a ValidationError.
// Other errors are returned unchanged.
func fromValidator(object string, err error) error {
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return err
	}

	fields := make(map[string]string, len(valErrs))
	for _, ve := range valErrs {
		fields[ve.Field()] = formatValidationError(ve)
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	messages := make([]string, 0, len(names))
	for _, name := range names {
		messages = append(messages, name+": "+fields[name])
	}

	return &ValidationError{
		Object:  object,
		Message: strings.Join(messages, "; "),
		Fields:  fields,
	}
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "min":
		if ve.Kind().String() == "slice" {
			return fmt.Sprintf("must contain at least %s item(s)", ve.Param())
		}
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	case "ne":
		return fmt.Sprintf("must not equal %s", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
