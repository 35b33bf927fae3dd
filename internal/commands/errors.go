package commands

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-lis/internal/media"
	"github.com/goliatone/go-lis/internal/pages"
	"github.com/goliatone/go-lis/internal/permissions"
)

// Text codes attached to command errors.
const (
	CodeInvalid   = "LIS_COMMAND_INVALID"
	CodeForbidden = "LIS_COMMAND_FORBIDDEN"
	CodeNotFound  = "LIS_COMMAND_NOT_FOUND"
	CodeCanceled  = "LIS_COMMAND_CANCELED"
	CodeTimeout   = "LIS_COMMAND_TIMEOUT"
	CodeFailed    = "LIS_COMMAND_FAILED"
)

// wrapError categorises err for callers that only see the go-errors shape,
// such as the dispatcher and the CLI. The original error stays reachable
// through errors.Is and errors.As.
func wrapError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	category, code, message := classify(err)
	return goerrors.Wrap(err, category, message).WithTextCode(code)
}

// rejected marks a message validation failure as CodeInvalid whatever shape
// the validator returned it in.
func rejected(err error) error {
	var wrapped *goerrors.Error
	if errors.As(err, &wrapped) {
		out := wrapped.Clone()
		out.Category = goerrors.CategoryValidation
		out.TextCode = CodeInvalid
		return out
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command rejected").WithTextCode(CodeInvalid)
}

func classify(err error) (goerrors.Category, string, string) {
	var fields validation.Errors
	var rule validation.Error
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.CategoryCommand, CodeCanceled, "command canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.CategoryCommand, CodeTimeout, "command deadline exceeded"
	case errors.As(err, &fields), errors.As(err, &rule):
		return goerrors.CategoryValidation, CodeInvalid, "command rejected"
	case errors.Is(err, permissions.ErrPermissionDenied):
		return goerrors.CategoryAuthz, CodeForbidden, "command not permitted"
	case pages.IsNotFound(err), media.IsNotFound(err):
		return goerrors.CategoryNotFound, CodeNotFound, "command target not found"
	default:
		return goerrors.CategoryCommand, CodeFailed, "command failed"
	}
}

// ErrorCode returns the text code of a command error, or "" for errors that
// did not come from a handler.
func ErrorCode(err error) string {
	var wrapped *goerrors.Error
	if errors.As(err, &wrapped) {
		return wrapped.TextCode
	}
	return ""
}
