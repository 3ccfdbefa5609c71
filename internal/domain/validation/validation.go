// Package validation builds the validator shared by the use case and delivery layers.
package validation

import (
	"math"
	"reflect"

	"placemap/internal/domain/entity"

	"github.com/go-playground/validator/v10"
)

const (
	// TagPlaceCategory validates that a string field names a known place category.
	TagPlaceCategory = "place_category"
	// TagFinite validates that a float field is neither NaN nor infinite.
	TagFinite = "finite"
)

// New returns a validator with the place-specific rules registered.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Registration only fails for empty tags or nil functions.
	_ = v.RegisterValidation(TagPlaceCategory, validatePlaceCategory)
	_ = v.RegisterValidation(TagFinite, validateFinite)

	return v
}

func validatePlaceCategory(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}

	return entity.Category(fl.Field().String()).Valid()
}

func validateFinite(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		f := fl.Field().Float()

		return !math.IsNaN(f) && !math.IsInf(f, 0)
	default:
		return false
	}
}
