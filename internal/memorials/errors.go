package memorials

import (
	"errors"
	"fmt"
)

var (
	ErrPayloadInvalid   = errors.New("memorials: payload is not a memorial")
	ErrMemorialRequired = errors.New("memorials: memorial id required")
)

// NotFoundError represents missing records from repository lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
