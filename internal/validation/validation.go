package validation

import (
	"errors"
	"strings"

	"pet-market/internal/codec"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
	// data files have no escaping: a value may hold neither the delimiter
	// nor a line break
	_ = validate.RegisterValidation("nopipe", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), codec.Delimiter+"\r\n")
	})
}

// Struct validates a struct against its validation tags
func Struct(v interface{}) error {
	return validate.Struct(v)
}

// Var validates a single value against a tag expression
func Var(field interface{}, tag string) error {
	return validate.Var(field, tag)
}

// FieldError represents a field validation error
type FieldError struct {
	Field   string
	Message string
}

// FormatErrors converts validator errors to a readable format
func FormatErrors(err error) []FieldError {
	var out []FieldError

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			out = append(out, FieldError{
				Field:   e.Field(),
				Message: getErrorMessage(e),
			})
		}
	}

	return out
}

// Summary joins all field errors into one line for display
func Summary(err error) string {
	fields := FormatErrors(err)
	if len(fields) == 0 {
		return err.Error()
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Field == "" {
			parts = append(parts, f.Message)
			continue
		}
		parts = append(parts, f.Field+": "+f.Message)
	}
	return strings.Join(parts, "; ")
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "nopipe":
		return "Value must not contain '" + codec.Delimiter + "' or line breaks"
	case "alphanum":
		return "Only letters and digits are allowed"
	case "numeric":
		return "Only digits are allowed"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "gte":
		return "Value must be greater than or equal to " + e.Param()
	case "lte":
		return "Value must be less than or equal to " + e.Param()
	case "gt":
		return "Value must be greater than " + e.Param()
	case "lt":
		return "Value must be less than " + e.Param()
	default:
		return "Invalid value"
	}
}
