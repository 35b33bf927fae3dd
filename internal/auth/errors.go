package auth

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrSessionKeyTooShort = errors.New("auth: session key must be at least 32 characters long")
	ErrInvalidCredentials = errors.New("auth: invalid username or password")
	ErrEditorExists       = errors.New("auth: editor already exists")
	ErrUsernameRequired   = errors.New("auth: username is required")
	ErrPasswordTooShort   = errors.New("auth: password must be at least 8 characters")
	ErrAPIKeyInvalid      = errors.New("auth: invalid or missing API key")
	ErrAPIKeyNameExists   = errors.New("auth: API key name already used")
	ErrNotAuthenticated   = errors.New("auth: authentication required")
	ErrThrottled          = errors.New("auth: request rate exceeded")
)

// ThrottledError reports the bucket that rejected a request.
type ThrottledError struct {
	Window time.Duration
	Limit  int
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("auth: more than %d requests per %s", e.Limit, e.Window)
}

func (e *ThrottledError) Unwrap() error { return ErrThrottled }
