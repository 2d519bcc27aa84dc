package config

import (
	stderrors "errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mrz1836/slicer/internal/errors"
	"github.com/mrz1836/slicer/internal/pathutil"
)

// bound is an inclusive numeric range used in validation messages.
type bound struct {
	min, max int
}

// specBounds mirrors the min/max struct tags on Spec.
//
//nolint:gochecknoglobals // Pre-built lookup
var specBounds = map[string]bound{
	"max_slices":              {1, 20},
	"max_attempts_per_slice":  {1, 10},
	"max_files_per_slice":     {1, 20},
	"command_timeout_seconds": {60, 10000},
}

// specValidate is the validator instance for Spec, with json field names
// and the relpath rule registered.
//
//nolint:gochecknoglobals // Shared validator instance
var specValidate = newSpecValidator()

func newSpecValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("relpath", validateRelPath)
	return v
}

// validateRelPath accepts paths that stay inside the working directory.
func validateRelPath(fl validator.FieldLevel) bool {
	_, err := pathutil.Normalize(fl.Field().String())
	return err == nil
}

// Validate checks a normalized spec against its bounds.
// It returns the first violation, wrapped in ErrSpecValidation.
//
// Validation rules:
//   - goal, model, api_base_url and working_directory must not be empty
//   - model_backend must be auto, http or sandboxed-cli
//   - numeric fields must lie within their documented bounds
//   - context_files must be relative paths inside the working directory
func Validate(spec *Spec) error {
	if spec == nil {
		return errors.Wrap(errors.ErrSpecValidation, "spec is nil")
	}

	err := specValidate.Struct(spec)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return errors.Wrap(errors.ErrSpecValidation, err.Error())
	}
	return describeFieldError(verrs[0])
}

// describeFieldError turns a validator failure into a message naming the json field.
func describeFieldError(fe validator.FieldError) error {
	field := fe.Field()
	switch fe.Tag() {
	case "min", "max":
		if b, ok := specBounds[field]; ok {
			return errors.Wrapf(errors.ErrSpecValidation,
				"spec field '%s' must be between %d and %d, got %v", field, b.min, b.max, fe.Value())
		}
	case "required":
		return errors.Wrapf(errors.ErrSpecValidation, "spec field '%s' is required", field)
	case "oneof":
		return errors.Wrapf(errors.ErrSpecValidation,
			"spec field '%s' must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "relpath":
		return errors.Wrapf(errors.ErrSpecValidation,
			"spec field '%s' must be a relative path inside the working directory, got %q", field, fe.Value())
	case "url":
		return errors.Wrapf(errors.ErrSpecValidation, "spec field '%s' must be a URL, got %q", field, fe.Value())
	}
	return errors.Wrapf(errors.ErrSpecValidation, "spec field '%s' failed rule %s", field, fe.Tag())
}
