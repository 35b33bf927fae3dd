package pages

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrPageRequired       = errors.New("pages: page id required")
	ErrParentRequired     = errors.New("pages: parent page required")
	ErrKindUnknown        = errors.New("pages: unknown page kind")
	ErrKindMismatch       = errors.New("pages: content kind does not match page")
	ErrSlugRequired       = errors.New("pages: slug is required")
	ErrSlugExists         = errors.New("pages: slug already used by a sibling")
	ErrSlugExhausted      = errors.New("pages: unable to allocate a free slug")
	ErrRevisionRequired   = errors.New("pages: revision id required")
	ErrRevisionMismatch   = errors.New("pages: revision belongs to another page")
	ErrSnapshotInvalid    = errors.New("pages: revision snapshot is invalid")
	ErrPageParentCycle    = errors.New("pages: parent assignment creates hierarchy cycle")
	ErrRootImmutable      = errors.New("pages: the root page cannot be moved")
	ErrTreeDepthExhausted = errors.New("pages: no free tree position under parent")
)

// NotFoundError represents missing records from repository lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func pageNotFound(id uuid.UUID) error {
	return &NotFoundError{Resource: "page", Key: id.String()}
}

func revisionNotFound(id uuid.UUID) error {
	return &NotFoundError{Resource: "revision", Key: id.String()}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
