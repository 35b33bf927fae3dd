package authors

import (
	"errors"
	"fmt"
)

var (
	ErrGenderInvalid  = errors.New("authors: gender must be U, M or F")
	ErrPayloadInvalid = errors.New("authors: page payload is not an author")
	ErrAuthorRequired = errors.New("authors: author page id required")
)

// NotFoundError reports a missing author row.
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
