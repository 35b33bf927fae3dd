// Package validation turns ozzo field errors into categorized go-errors
// values and flattens them into issues for API responses.
package validation

import (
	"errors"
	"sort"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

// Issue is one failing field. Nested fields are dot separated
// ("names.0.last_name").
type Issue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Error carries the flattened issues of a failed validation.
type Error struct {
	Message  string
	TextCode string
	Issues   []Issue
	cause    error
}

func (e *Error) Error() string {
	return e.cause.Error()
}

// Unwrap exposes the go-errors value categorized as a validation failure.
func (e *Error) Unwrap() error {
	return e.cause
}

// Wrap categorizes err as a validation failure. An ozzo Errors map with no
// failing field yields nil.
func Wrap(err error, message, textCode string) error {
	var fields ozzo.Errors
	if errors.As(err, &fields) {
		if filtered := fields.Filter(); filtered == nil {
			return nil
		}
	}
	if err == nil {
		return nil
	}
	return &Error{
		Message:  message,
		TextCode: textCode,
		Issues:   flatten("", err),
		cause:    goerrors.Wrap(err, goerrors.CategoryValidation, message).WithTextCode(textCode),
	}
}

// IsInvalid reports whether err is a wrapped validation failure.
func IsInvalid(err error) bool {
	var verr *Error
	return errors.As(err, &verr)
}

// Issues returns the failing fields of err, or nil.
func Issues(err error) []Issue {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Issues
	}
	return nil
}

func flatten(prefix string, err error) []Issue {
	var fields ozzo.Errors
	if !errors.As(err, &fields) {
		return []Issue{{Field: prefix, Message: err.Error()}}
	}
	keys := make([]string, 0, len(fields))
	for key, fieldErr := range fields {
		if fieldErr != nil {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	var out []Issue
	for _, key := range keys {
		name := key
		if prefix != "" {
			name = prefix + "." + key
		}
		out = append(out, flatten(name, fields[key])...)
	}
	return out
}
