package handlers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

// Shared request bounds for the API schemas
const (
	NameMinLength     = 2
	NameMaxLength     = 50
	PhoneMinLength    = 7
	PhoneMaxLength    = 20
	InfoMaxLength     = 500
	PasswordMinLength = 4
	PasswordMaxLength = 128
)

// ValidationError represents a single failed field check
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report field names as they appear on the wire
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// BindAndValidate binds the request body and checks it against its validation
// tags. Failures produce a 422 response listing every offending field.
func BindAndValidate(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return RespondError(c, ErrBadRequest("Invalid request body"))
	}
	return ValidateStruct(c, v)
}

// ValidateStruct checks an already bound value against its validation tags
func ValidateStruct(c echo.Context, v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return RespondError(c, ErrInternal("Validation failed"))
	}

	details := lo.Map(fieldErrs, func(fe validator.FieldError, _ int) ValidationError {
		return ValidationError{Field: fe.Field(), Message: fieldMessage(fe)}
	})
	return RespondError(c, ErrValidation(details))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
