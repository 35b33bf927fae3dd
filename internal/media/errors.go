package media

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSignature = errors.New("media: invalid signature")
	ErrRenditionMissing = errors.New("media: rendition not generated")
	ErrFilterSpec       = errors.New("media: invalid filter spec")
)

// NotFoundError reports a missing image or rendition.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
