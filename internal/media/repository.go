package media

import "context"

// Repository persists images and renditions.
type Repository interface {
	CreateImage(ctx context.Context, image *Image) (*Image, error)
	GetImage(ctx context.Context, id int64) (*Image, error)
	DeleteImage(ctx context.Context, id int64) error
	CreateRendition(ctx context.Context, rendition *Rendition) (*Rendition, error)
	FindRendition(ctx context.Context, imageID int64, filterSpec, focalPointKey string) (*Rendition, error)
	ListRenditions(ctx context.Context) ([]*Rendition, error)
	DeleteRenditions(ctx context.Context, ids []int64) error
	// ImageIDs returns the subset of ids that exist.
	ImageIDs(ctx context.Context, ids []int64) (map[int64]bool, error)
}
