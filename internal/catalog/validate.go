package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FieldError reports catalog fields that failed validation, keyed by field
// name with the failing rule as value.
type FieldError struct {
	Fields map[string]string
}

func (e *FieldError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s (%s)", name, e.Fields[name]))
	}
	return "invalid fields: " + strings.Join(parts, ", ")
}

// ValidateMaterial checks a material row before it is stored.
func ValidateMaterial(m MaterialRate) error {
	return validateStruct(m)
}

// ValidateLabor checks a labor row before it is stored.
func ValidateLabor(l LaborRate) error {
	return validateStruct(l)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("validate catalog row: %w", err)
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Tag()
	}
	return &FieldError{Fields: fields}
}
