// Package validate checks form input before it is sent to the backend.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their label tag so messages read naturally.
		instance.RegisterTagNameFunc(func(f reflect.StructField) string {
			if label := f.Tag.Get("label"); label != "" {
				return label
			}
			return f.Name
		})
		_ = instance.RegisterValidation("phone", validatePhone)
	})
	return instance
}

// validatePhone accepts 9 to 11 digits with an optional leading +.
func validatePhone(fl validator.FieldLevel) bool {
	value := strings.TrimPrefix(strings.TrimSpace(fl.Field().String()), "+")
	if len(value) < 9 || len(value) > 11 {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

// Error lists every failed rule of a struct.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether field failed.
func (e *Error) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Struct validates v and returns *Error when any rule fails.
func Struct(v any) error {
	err := get().Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	out := &Error{Fields: make([]FieldError, 0, len(ve))}
	for _, fe := range ve {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: message(fe),
		})
	}
	return out
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s là bắt buộc", field)
	case "email":
		return fmt.Sprintf("%s không hợp lệ", field)
	case "min":
		return fmt.Sprintf("%s phải có ít nhất %s ký tự", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s tối đa %s ký tự", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s không khớp", field)
	case "nefield":
		return fmt.Sprintf("%s phải khác mật khẩu hiện tại", field)
	case "phone":
		return fmt.Sprintf("%s phải gồm 9-11 chữ số", field)
	case "oneof":
		return fmt.Sprintf("%s phải là một trong: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s không hợp lệ", field)
	}
}
