package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/drivegate/errors"
)

// TagDriveID accepts opaque Drive ids: letters, digits and -_.~ only.
const TagDriveID = "driveid"

var driveID = regexp.MustCompile(`^[A-Za-z0-9_\-.~]+$`)

// FieldError names one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		// only fails on an empty tag name
		_ = v.RegisterValidation(TagDriveID, func(fl validator.FieldLevel) bool {
			return driveID.MatchString(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// Validate checks s against its `validate` tags.
func Validate(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Validation("validation failed").WithCause(err)
	}
	fields := make([]FieldError, len(verrs))
	messages := make([]string, len(verrs))
	for i, fe := range verrs {
		fields[i] = FieldError{Field: fe.Field(), Message: message(fe)}
		messages[i] = fields[i].Field + ": " + fields[i].Message
	}
	return errors.Validation(strings.Join(messages, "; ")).WithDetail("fields", fields)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "printascii":
		return "must contain printable ASCII only"
	case TagDriveID:
		return "is not a valid Drive id"
	default:
		return "is invalid"
	}
}
