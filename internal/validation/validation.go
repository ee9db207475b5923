// Package validation checks write inputs and reports failures per field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"quill/internal/models"

	"github.com/go-playground/validator/v10"
)

// GroupSlugMaxLength bounds a group slug.
const GroupSlugMaxLength = 50

var groupSlugRegex = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return ValidateGroupSlug(fl.Field().String()) == nil
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidateGroupSlug validates the slug format used in group URLs.
func ValidateGroupSlug(slug string) error {
	if slug == "" {
		return errors.New("slug is required")
	}
	if len(slug) > GroupSlugMaxLength {
		return fmt.Errorf("slug must be at most %d characters", GroupSlugMaxLength)
	}
	if !groupSlugRegex.MatchString(slug) {
		return errors.New("slug must contain only letters, numbers, underscores or hyphens")
	}
	return nil
}

// Struct validates s against its `validate` tags. Failures come back as a
// validation AppError whose Fields are keyed by json name.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return models.NewInternalError(err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = message(fe)
	}
	return models.NewFieldValidationError(fields)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "slug":
		return "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}
