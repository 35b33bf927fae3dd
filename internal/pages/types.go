package pages

import (
	"time"

	"github.com/goliatone/go-lis/internal/i18n"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Page kinds.
const (
	KindRoot     = "root"
	KindIndex    = "index"
	KindAuthor   = "author"
	KindMemorial = "memorial"
)

// State is the publication state derived from the live flags.
type State string

const (
	StateDraft               State = "draft"
	StatePublishedWithDrafts State = "published-with-drafts"
	StatePublished           State = "published"
)

// Page is the common row of every node in the content tree. Variant columns
// live in their own tables keyed by the page id.
type Page struct {
	bun.BaseModel `bun:"table:pages,alias:p"`

	ID       uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	Kind     string     `bun:"kind,notnull" json:"kind"`
	ParentID *uuid.UUID `bun:"parent_id,type:uuid" json:"parent_id,omitempty"`
	Path     string     `bun:"path,notnull,unique" json:"path"`
	Depth    int        `bun:"depth,notnull" json:"depth"`
	NumChild int        `bun:"numchild,notnull" json:"numchild"`
	URLPath  string     `bun:"url_path,notnull" json:"url_path"`
	Slug     string     `bun:"slug,notnull" json:"slug"`

	Title        string `bun:"title,notnull" json:"title"`
	TitleDE      string `bun:"title_de,notnull" json:"title_de"`
	TitleCS      string `bun:"title_cs,notnull" json:"title_cs"`
	DraftTitle   string `bun:"draft_title,notnull" json:"draft_title"`
	DraftTitleDE string `bun:"draft_title_de,notnull" json:"draft_title_de"`
	DraftTitleCS string `bun:"draft_title_cs,notnull" json:"draft_title_cs"`

	Live                  bool       `bun:"live,notnull" json:"live"`
	HasUnpublishedChanges bool       `bun:"has_unpublished_changes,notnull" json:"has_unpublished_changes"`
	Locked                bool       `bun:"locked,notnull" json:"locked"`
	OwnerID               *uuid.UUID `bun:"owner_id,type:uuid" json:"owner_id,omitempty"`
	EditorID              *uuid.UUID `bun:"editor_id,type:uuid" json:"editor_id,omitempty"`
	OriginalLanguage      string     `bun:"original_language,notnull" json:"original_language"`

	LatestRevisionCreatedAt *time.Time `bun:"latest_revision_created_at,nullzero" json:"latest_revision_created_at,omitempty"`
	FirstPublishedAt        *time.Time `bun:"first_published_at,nullzero" json:"first_published_at,omitempty"`
	LastPublishedAt         *time.Time `bun:"last_published_at,nullzero" json:"last_published_at,omitempty"`
	LiveRevisionID          *uuid.UUID `bun:"live_revision_id,type:uuid" json:"live_revision_id,omitempty"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Titles returns the translated live title.
func (p *Page) Titles() i18n.Text {
	return i18n.Text{EN: p.Title, DE: p.TitleDE, CS: p.TitleCS}
}

// SetTitles stores all three title columns.
func (p *Page) SetTitles(t i18n.Text) {
	p.Title, p.TitleDE, p.TitleCS = t.EN, t.DE, t.CS
}

// DraftTitles returns the translated draft title mirror.
func (p *Page) DraftTitles() i18n.Text {
	return i18n.Text{EN: p.DraftTitle, DE: p.DraftTitleDE, CS: p.DraftTitleCS}
}

// SetDraftTitles stores all three draft title columns.
func (p *Page) SetDraftTitles(t i18n.Text) {
	p.DraftTitle, p.DraftTitleDE, p.DraftTitleCS = t.EN, t.DE, t.CS
}

// DisplayTitle is the title shown in the admin: the draft title when
// present, the live title otherwise.
func (p *Page) DisplayTitle(lang i18n.Language) string {
	if draft := i18n.WithDefault.Resolve(p.DraftTitles(), lang); draft != "" {
		return draft
	}
	return i18n.WithDefault.Resolve(p.Titles(), lang)
}

// State derives the publication state.
func (p *Page) State() State {
	switch {
	case !p.Live:
		return StateDraft
	case p.HasUnpublishedChanges:
		return StatePublishedWithDrafts
	default:
		return StatePublished
	}
}

// IsDescendantOf reports whether p sits below other in the tree.
func (p *Page) IsDescendantOf(other *Page) bool {
	if p == nil || other == nil {
		return false
	}
	return len(p.Path) > len(other.Path) && p.Path[:len(other.Path)] == other.Path
}

// Clone returns a deep copy.
func (p *Page) Clone() *Page {
	if p == nil {
		return nil
	}
	cloned := *p
	cloned.ParentID = cloneUUIDPtr(p.ParentID)
	cloned.OwnerID = cloneUUIDPtr(p.OwnerID)
	cloned.EditorID = cloneUUIDPtr(p.EditorID)
	cloned.LiveRevisionID = cloneUUIDPtr(p.LiveRevisionID)
	cloned.LatestRevisionCreatedAt = cloneTimePtr(p.LatestRevisionCreatedAt)
	cloned.FirstPublishedAt = cloneTimePtr(p.FirstPublishedAt)
	cloned.LastPublishedAt = cloneTimePtr(p.LastPublishedAt)
	return &cloned
}

// Revision is an immutable snapshot of a page and its variant payload.
type Revision struct {
	bun.BaseModel `bun:"table:page_revisions,alias:pr"`

	ID                     uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	PageID                 uuid.UUID      `bun:"page_id,notnull,type:uuid" json:"page_id"`
	UserID                 *uuid.UUID     `bun:"user_id,type:uuid" json:"user_id,omitempty"`
	SubmittedForModeration bool           `bun:"submitted_for_moderation,notnull" json:"submitted_for_moderation"`
	ApprovedGoLiveAt       *time.Time     `bun:"approved_go_live_at,nullzero" json:"approved_go_live_at,omitempty"`
	Snapshot               map[string]any `bun:"snapshot,type:jsonb,notnull" json:"snapshot"`
	CreatedAt              time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// Clone returns a copy sharing the snapshot map.
func (r *Revision) Clone() *Revision {
	if r == nil {
		return nil
	}
	cloned := *r
	cloned.UserID = cloneUUIDPtr(r.UserID)
	cloned.ApprovedGoLiveAt = cloneTimePtr(r.ApprovedGoLiveAt)
	return &cloned
}

// Content couples the common page row with its variant payload.
type Content struct {
	Page    *Page
	Payload any
}

// Actor identifies the editor performing a lifecycle operation.
type Actor struct {
	ID     uuid.UUID
	Groups []string
}

func (a Actor) userID() *uuid.UUID {
	if a.ID == uuid.Nil {
		return nil
	}
	id := a.ID
	return &id
}

func cloneUUIDPtr(value *uuid.UUID) *uuid.UUID {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneTimePtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
