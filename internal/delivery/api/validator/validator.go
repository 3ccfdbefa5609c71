package validator

import (
	"placemap/internal/domain/validation"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// CustomValidator adapts the shared validator to echo.Validator.
type CustomValidator struct {
	validate *validator.Validate
}

// New creates an echo validator with the place rules registered.
func New() echo.Validator {
	return &CustomValidator{validate: validation.New()}
}

func (v *CustomValidator) Validate(i any) error {
	return v.validate.Struct(i)
}
