// Package validator validates HTTP request bodies with go-playground/validator.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"booking-service/internal/domain"
)

// TagStrategy validates a reservation strategy name.
const TagStrategy = "strategy"

// Validator wraps a configured go-playground validator.
type Validator struct {
	v *validator.Validate
}

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// ValidationErrors is returned by Validate when a request is rejected.
type ValidationErrors []FieldError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, len(ve))
	for i, e := range ve {
		msgs[i] = e.Message
	}

	return strings.Join(msgs, "; ")
}

// New creates a Validator that reports JSON field names and knows the
// "strategy" tag.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation(TagStrategy, func(fl validator.FieldLevel) bool {
		return domain.Strategy(fl.Field().String()).Valid()
	})

	return &Validator{v: v}
}

// Validate checks s. It returns ValidationErrors for rejected fields; any
// other error (for example a non-struct argument) is returned unchanged.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	errs := make(ValidationErrors, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		errs = append(errs, FieldError{
			Field:   e.Field(),
			Tag:     e.Tag(),
			Value:   fmt.Sprintf("%v", e.Value()),
			Message: message(e),
		})
	}

	return errs
}

func message(e validator.FieldError) string {
	field := e.Field()

	switch e.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case TagStrategy:
		return fmt.Sprintf("%s must be %q or %q", field, domain.StrategyOptimistic, domain.StrategyPessimistic)
	default:
		return fmt.Sprintf("%s failed %s validation", field, e.Tag())
	}
}
