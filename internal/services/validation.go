// Package services holds helpers shared by the business services in its subpackages.
package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator that reports fields by their json names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("cents", func(fl validator.FieldLevel) bool {
		return domain.IsWholeCents(fl.Field().Float())
	})
	return v
}

// Validate runs the struct tags of input and converts the first violation into a
// domain.ValidationError.
func Validate(v *validator.Validate, input any) error {
	err := v.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domain.NewValidationError(fieldPath(fe), describe(fe))
	}
	return domain.NewValidationError("", err.Error())
}

// fieldPath drops the top-level struct name from the namespace: "ProductInput.price" -> "price".
func fieldPath(fe validator.FieldError) string {
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
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "cents":
		return "must have at most 2 decimal places"
	}
	return fmt.Sprintf("failed %q validation", fe.Tag())
}

// TranslateWrite maps repository write errors onto the errors clients see.
func TranslateWrite(err error, entity, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrVersionMismatch):
		return &domain.ConflictError{Entity: entity, ID: id}
	case errors.Is(err, domain.ErrDuplicateKey):
		return domain.NewValidationError("", entity+" already exists")
	}
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return err
	}
	return fmt.Errorf("failed to write %s: %w", entity, err)
}
