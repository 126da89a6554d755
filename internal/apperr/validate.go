package apperr

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// в ошибках нужны имена полей из JSON, а не Go-имена
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate проверяет struct-теги `validate` и возвращает *Error по первому невалидному полю.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return Internal("validation failed", err)
	}

	fe := verrs[0]
	return Validation(fe.Field(), describe(fe))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("поле %s обязательно", fe.Field())
	case "min", "gte":
		return fmt.Sprintf("поле %s должно быть не меньше %s (получено %v)", fe.Field(), fe.Param(), fe.Value())
	case "max", "lte":
		return fmt.Sprintf("поле %s должно быть не больше %s (получено %v)", fe.Field(), fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("поле %s должно быть одним из: %s (получено %v)", fe.Field(), fe.Param(), fe.Value())
	case "email":
		return fmt.Sprintf("поле %s должно быть корректным e-mail", fe.Field())
	default:
		return fmt.Sprintf("поле %s не прошло проверку %s", fe.Field(), fe.Tag())
	}
}
