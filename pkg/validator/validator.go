// Package validator checks request payloads with go-playground/validator
// and reports failures by JSON field name.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	return v
}()

// jsonName names a field the way the backend and BFF clients see it.
func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	}
	return name
}

// Validate checks the validate tags of a struct, or of each element of a
// slice of structs. Failures come back as *ValidationError.
func Validate(s any) error {
	if rv := reflect.ValueOf(s); rv.Kind() == reflect.Slice {
		for i := range rv.Len() {
			if err := Validate(rv.Index(i).Interface()); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
		return nil
	}

	err := validate.Struct(s)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return &ValidationError{Errors: fieldErrs}
	}
	return err
}

// ValidationError lists the fields that failed and why.
type ValidationError struct {
	Errors validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fmt.Sprintf("field '%s' %s", fe.Field(), describe(fe))
	}
	return strings.Join(parts, "; ")
}

// Fields maps each failing JSON field to its message.
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		fields[fe.Field()] = describe(fe)
	}
	return fields
}

// tagMessages are printf formats taking the tag parameter.
var tagMessages = map[string]string{
	"required":             "is required",
	"email":                "must be a valid email address",
	"min":                  "must be at least %s characters",
	"max":                  "must be at most %s characters",
	"gte":                  "must be greater than or equal to %s",
	"lte":                  "must be less than or equal to %s",
	"len":                  "must have exactly %s items",
	"oneof":                "must be one of: %s",
	"required_without_all": "at least one field must be set",
}

func describe(fe validator.FieldError) string {
	format, ok := tagMessages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
	if strings.Contains(format, "%s") {
		return fmt.Sprintf(format, fe.Param())
	}
	return format
}
