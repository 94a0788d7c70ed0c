package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nosenfield/smart-scrip/internal/domain/model"
	"github.com/shopspring/decimal"
)

// InputValidator checks a calculation request before any work is done.
type InputValidator interface {
	Validate(input model.CalculationInput) error
}

// FieldErrors maps JSON field names to a description of what is wrong.
type FieldErrors map[string]string

// Error implements error.
func (f FieldErrors) Error() string {
	parts := make([]string, 0, len(f))
	for field, msg := range f {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

// StructValidator implements InputValidator with struct tags.
type StructValidator struct {
	validate *validator.Validate
}

// NewStructValidator creates a StructValidator reporting JSON field names.
func NewStructValidator() *StructValidator {
	return &StructValidator{validate: newTagValidator()}
}

func newTagValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate implements InputValidator.
func (s *StructValidator) Validate(input model.CalculationInput) error {
	input.DrugName = strings.TrimSpace(input.DrugName)
	input.PackageID = strings.TrimSpace(input.PackageID)
	input.DosingInstructions = strings.TrimSpace(input.DosingInstructions)

	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		fields[fieldName(fe)] = describe(fe)
	}
	return fields
}

func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return "is required when " + toSnake(fe.Param()) + " is not provided"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "max":
		return "is too long"
	default:
		return "is invalid"
	}
}

// toSnake converts a Go field name used in a tag parameter to its JSON spelling.
func toSnake(s string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range s {
		upper := r >= 'A' && r <= 'Z'
		if upper {
			if prevLower {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		prevLower = !upper
		b.WriteRune(r)
	}
	return b.String()
}
