package tags

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrKindUnknown  = errors.New("tags: unknown vocabulary")
	ErrKindMismatch = errors.New("tags: tag belongs to another vocabulary")
	ErrTagRequired  = errors.New("tags: tag id required")
)

// NotFoundError is returned when a tag id does not resolve.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tag %s not found", strconv.FormatInt(e.ID, 10))
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
