package tags

import (
	"context"

	"github.com/goliatone/go-lis/internal/i18n"
	"github.com/goliatone/go-lis/internal/query"
	"github.com/google/uuid"
)

// ListOptions narrows a tag listing. Sort fields are "name", "sort_order"
// and "id"; name ordering uses the title of Language with base fallback.
type ListOptions struct {
	Kind     Kind
	IDs      []int64
	Search   string
	Language i18n.Language
	Sort     []query.SortField
	Limit    int
	Offset   int
}

// Repository persists tags and page attachments.
type Repository interface {
	Create(ctx context.Context, tag *Tag) (*Tag, error)
	Update(ctx context.Context, tag *Tag) (*Tag, error)
	GetByID(ctx context.Context, id int64) (*Tag, error)
	List(ctx context.Context, opts ListOptions) ([]*Tag, int, error)
	// Delete removes the tag and its attachments. Pages are untouched.
	Delete(ctx context.Context, id int64) error
	// TitleTaken reports whether another tag of kind uses title in lang.
	TitleTaken(ctx context.Context, kind Kind, lang i18n.Language, title string, exclude int64) (bool, error)
	// SetPageTags replaces the attachments of kind on a page.
	SetPageTags(ctx context.Context, pageID uuid.UUID, kind Kind, ids []int64) error
	// PageTags returns the attached tags of kind keyed by page.
	PageTags(ctx context.Context, pageIDs []uuid.UUID, kind Kind) (map[uuid.UUID][]*Tag, error)
}

func defaultSort(kind Kind) []query.SortField {
	if kind.Sortable() {
		return []query.SortField{{Field: "sort_order"}, {Field: "name"}}
	}
	return []query.SortField{{Field: "name"}}
}
