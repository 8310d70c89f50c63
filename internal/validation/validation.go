// Package validation содержит проверку входных данных запросов.
package validation

import (
	"errors"
	"fmt"
	"strings"
)

// InvalidInputError описывает некорректное или отсутствующее поле запроса.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

// IsInvalidInput сообщает, вызвана ли ошибка некорректными входными данными.
func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}

// Required проверяет, что поле присутствует в запросе.
func Required[T any](field string, v *T) (T, error) {
	if v == nil {
		var zero T
		return zero, &InvalidInputError{Field: field, Reason: "is required"}
	}
	return *v, nil
}

// RequiredString проверяет, что строковое поле присутствует и не пустое.
func RequiredString(field string, v *string) (string, error) {
	s, err := Required(field, v)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(s) == "" {
		return "", &InvalidInputError{Field: field, Reason: "must not be empty"}
	}
	return s, nil
}

// Malformed оборачивает ошибку разбора тела запроса.
func Malformed(err error) error {
	return &InvalidInputError{Field: "body", Reason: err.Error()}
}
