package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/frahmantamala/task-management/internal"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

const (
	TagNotBlank = "notblank"
	TagDefined  = "defined"
)

// Enum is implemented by value types with a closed set of members.
type Enum interface {
	IsValid() bool
}

type registration struct {
	tag string
	fn  validator.Func
}

var registrations = []registration{
	{tag: TagNotBlank, fn: isNotBlank},
	{tag: TagDefined, fn: isDefined},
}

var (
	instance *validator.Validate
	once     sync.Once
)

// Validator returns the shared engine. Field names in errors follow the
// json tags so messages line up with the request payload.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		for _, r := range registrations {
			if err := v.RegisterValidation(r.tag, r.fn); err != nil {
				panic(fmt.Sprintf("register validation %s: %v", r.tag, err))
			}
		}
		instance = v
	})
	return instance
}

// Struct validates v and reports every failed field in one AppError.
func Struct(v any) *internal.AppError {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return internal.ErrInvalidBody.WithCause(err)
	}

	details := lo.Map(fieldErrs, func(fe validator.FieldError, _ int) internal.ValidationError {
		return internal.ValidationError{
			Field:   fe.Field(),
			Message: message(fe),
			Code:    string(internal.ErrCodeValidationFailed),
		}
	})
	return internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).
		WithDetails(internal.ValidationErrors{Errors: details})
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", TagNotBlank:
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must not exceed %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must not exceed %s", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case TagDefined:
		return fmt.Sprintf("%s has an unsupported value", fe.Field())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

func isNotBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.String:
		return strings.TrimSpace(field.String()) != ""
	case reflect.Ptr:
		if field.IsNil() {
			return false
		}
		return strings.TrimSpace(field.Elem().String()) != ""
	}
	return !field.IsZero()
}

func isDefined(fl validator.FieldLevel) bool {
	field := fl.Field()
	if !field.CanInterface() {
		return false
	}
	enum, ok := field.Interface().(Enum)
	return ok && enum.IsValid()
}
