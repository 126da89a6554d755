package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"iso-audit/internal/repository"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindForbidden  Kind = "forbidden"
	KindDependency Kind = "dependency"
	KindInternal   Kind = "internal"
)

// Error: ошибка предметной области, которую handlers умеют отдавать клиенту.
type Error struct {
	Kind    Kind   `json:"kind"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is сравнивает по Kind, чтобы работало errors.Is(err, apperr.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Field == "" && t.Message == ""
}

// шаблоны для errors.Is
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrConflict   = &Error{Kind: KindConflict}
	ErrForbidden  = &Error{Kind: KindForbidden}
	ErrDependency = &Error{Kind: KindDependency}
)

func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " не найден(а)"}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Dependency: сбой чтения/записи во внешнем хранилище во время агрегации.
func Dependency(op string, cause error) *Error {
	return &Error{Kind: KindDependency, Message: op, Cause: cause}
}

func Internal(op string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: op, Cause: cause}
}

// KindOf возвращает вид ошибки; для чужих ошибок, internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindDependency:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// FromStore переводит ошибку хранилища в ошибку предметной области.
// ErrNotFound → NotFound(resource), ErrDuplicate → Conflict, *Error не трогаем.
func FromStore(err error, resource string) error {
	var e *Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &e):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return NotFound(resource)
	case errors.Is(err, repository.ErrDuplicate):
		return &Error{Kind: KindConflict, Message: resource + " уже существует", Cause: err}
	default:
		return Internal(resource, err)
	}
}
