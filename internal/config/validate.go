package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	_ = v.RegisterValidation("tsident", func(fl validator.FieldLevel) bool {
		return identifierPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks the config for structural and logical errors. All
// problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	if err := validate.Struct(c); err != nil {
		var valErrs validator.ValidationErrors
		if !errors.As(err, &valErrs) {
			return err
		}
		for _, ve := range valErrs {
			errs = append(errs, fmt.Errorf("%s: %s", fieldPath(ve), formatValidationError(ve)))
		}
	}

	outputs := make(map[string]int)
	for i, t := range c.Targets {
		if t.Output != "" {
			if ext := filepath.Ext(t.Output); ext != ".ts" {
				errs = append(errs, fmt.Errorf("targets[%d].output: must have a .ts extension, got %q", i, ext))
			}
			key := filepath.Clean(t.Output)
			if prev, ok := outputs[key]; ok {
				errs = append(errs, fmt.Errorf("targets[%d].output: %q is already written by targets[%d]", i, t.Output, prev))
			} else {
				outputs[key] = i
			}
		}

		// Two schemas may share a type name; both blocks are emitted.
		schemas := make(map[string]bool, len(t.Schemas))
		for _, m := range t.Schemas {
			if schemas[m.Schema] {
				errs = append(errs, fmt.Errorf("targets[%d].schemas: %s is listed more than once", i, m.Schema))
			}
			schemas[m.Schema] = true
		}
	}

	return errors.Join(errs...)
}

// fieldPath turns "Config.targets[0].schemas[1].Type" into
// "targets[0].schemas[1].type".
func fieldPath(ve validator.FieldError) string {
	ns := ve.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		ns = rest
	}
	return ns
}

func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "min":
		return fmt.Sprintf("must have at least %s entries", ve.Param())
	case "tsident":
		return fmt.Sprintf("%q is not a valid TypeScript identifier", ve.Value())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
