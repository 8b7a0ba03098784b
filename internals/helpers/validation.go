package helper

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate reports field names by their json tag.
var Validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}()

// ValidateStruct runs the shared validator and converts failures to a ValidationError.
func ValidateStruct(s any) error {
	if err := Validate.Struct(s); err != nil {
		return NewValidationError(err)
	}
	return nil
}

// ValidationError is a 400 carrying the offending fields.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError converts validator.ValidationErrors into a ValidationError.
// Missing required fields are named in the message.
func NewValidationError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return &ValidationError{Message: "invalid input", Fields: map[string]string{}}
	}

	fields := make(map[string]string, len(ve))
	missing := make([]string, 0, len(ve))
	for _, fe := range ve {
		name := fe.Field()
		switch fe.Tag() {
		case "required", "required_if", "required_without":
			missing = append(missing, name)
			fields[name] = "required"
		case "oneof":
			fields[name] = "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
		default:
			fields[name] = fe.Tag()
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return &ValidationError{Message: "missing required fields: " + strings.Join(missing, ", "), Fields: fields}
	}
	return &ValidationError{Message: "invalid input", Fields: fields}
}
