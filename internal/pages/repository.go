package pages

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListOptions narrows page listings.
type ListOptions struct {
	Kind     string
	ParentID *uuid.UUID
	LiveOnly bool
}

// PageRepository stores pages and their revisions.
type PageRepository interface {
	Create(ctx context.Context, record *Page) (*Page, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Page, error)
	Update(ctx context.Context, record *Page) (*Page, error)
	UpdateColumns(ctx context.Context, record *Page, columns ...string) error
	// List returns pages ordered by tree path.
	List(ctx context.Context, opts ListOptions) ([]*Page, error)
	Descendants(ctx context.Context, page *Page) ([]*Page, error)
	SlugTaken(ctx context.Context, parentID uuid.UUID, slug string, exclude uuid.UUID) (bool, error)

	CreateRevision(ctx context.Context, revision *Revision) (*Revision, error)
	GetRevision(ctx context.Context, id uuid.UUID) (*Revision, error)
	UpdateRevision(ctx context.Context, revision *Revision) (*Revision, error)
	// ListRevisions returns the revisions of a page, newest first.
	ListRevisions(ctx context.Context, pageID uuid.UUID) ([]*Revision, error)
	LatestRevision(ctx context.Context, pageID uuid.UUID) (*Revision, error)
	// ScheduledRevisions returns revisions approved to go live at or before now.
	ScheduledRevisions(ctx context.Context, now time.Time) ([]*Revision, error)
}

var pageColumns = []string{
	"kind",
	"parent_id",
	"path",
	"depth",
	"numchild",
	"url_path",
	"slug",
	"title",
	"title_de",
	"title_cs",
	"draft_title",
	"draft_title_de",
	"draft_title_cs",
	"live",
	"has_unpublished_changes",
	"locked",
	"owner_id",
	"editor_id",
	"original_language",
	"latest_revision_created_at",
	"first_published_at",
	"last_published_at",
	"live_revision_id",
	"updated_at",
}
