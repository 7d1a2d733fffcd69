// Package validator
package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Validator interface {
	Validate(payload any) map[string]string
}

type StructValidator struct {
	validate *validator.Validate
}

func New() *StructValidator {
	return &StructValidator{validate: validator.New()}
}

func (v *StructValidator) Validate(payload any) map[string]string {
	err := v.validate.Struct(payload)
	if err == nil {
		return nil
	}

	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["payload"] = "The payload is invalid."
		return errs
	}

	for _, fe := range validationErrors {
		fieldName := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			errs[fieldName] = fmt.Sprintf("The %s field is required.", fe.Field())
		case "min":
			errs[fieldName] = fmt.Sprintf("The %s must be at least %s characters.", fe.Field(), fe.Param())
		case "gt":
			errs[fieldName] = fmt.Sprintf("The %s must be greater than %s.", fe.Field(), fe.Param())
		default:
			errs[fieldName] = fmt.Sprintf("The %s field is invalid.", fe.Field())
		}
	}

	return errs
}
