package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "bridgeid/pkg/domain-errors"
)

// didPattern follows the W3C DID syntax: did:<method>:<method-specific-id>.
var didPattern = regexp.MustCompile(`^did:[a-z0-9]+:[A-Za-z0-9._%:-]+$`)

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("did", func(fl validator.FieldLevel) bool {
		return didPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate validates a struct using the default validator and returns a domain error.
func Validate(req any) error {
	if err := defaultValidator.Struct(req); err != nil {
		return dErrors.New(dErrors.CodeValidation, ErrorMessage(err))
	}
	return nil
}

// ErrorMessage converts a validator error into a human-readable message.
func ErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "invalid request body"
	}

	fe := validationErrs[0]
	field := fe.Field()

	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "did":
		return fmt.Sprintf("%s must be a DID of the form did:<method>:<id>", field)
	case "eth_addr":
		return fmt.Sprintf("%s must be a 20-byte hex address", field)
	case "hexadecimal":
		return fmt.Sprintf("%s must be hex encoded", field)
	case "numeric":
		return fmt.Sprintf("%s must be numeric", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		if field == "" {
			return "invalid request body"
		}
		return fmt.Sprintf("%s is invalid", field)
	}
}
