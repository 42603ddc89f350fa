package services

import (
	"errors"
	"fmt"

	"giftmarket/internal/repositories"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateInput runs the struct tags of in and converts failures into a
// validation error keyed by field name.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return internal(err, "failed to validate input")
	}
	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return validationError("Validation failed", fields)
}

// lookup maps repository not-found errors to KindNotFound and everything else to KindInternal.
func lookup(err error, what string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound(err, "%s not found", what)
	}
	return internal(err, "failed to load %s", what)
}
