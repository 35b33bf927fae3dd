package tags

import (
	"strings"
	"time"

	"github.com/goliatone/go-lis/internal/i18n"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Kind names a tag vocabulary.
type Kind string

const (
	KindGenre        Kind = "genre"
	KindLanguage     Kind = "language"
	KindPeriod       Kind = "period"
	KindMemorialType Kind = "memorial_type"
	KindAgeGroup     Kind = "age_group"
)

// Kinds lists every vocabulary.
var Kinds = []Kind{KindGenre, KindLanguage, KindPeriod, KindMemorialType, KindAgeGroup}

// ParseKind accepts a vocabulary name.
func ParseKind(raw string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Kinds {
		if kind == known {
			return kind, nil
		}
	}
	return "", ErrKindUnknown
}

// Sortable vocabularies are ordered by their explicit sort order.
func (k Kind) Sortable() bool {
	return k == KindPeriod || k == KindAgeGroup
}

// Tag is one term of a vocabulary. Descriptions are markdown.
type Tag struct {
	bun.BaseModel `bun:"table:tags,alias:t"`

	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Kind          Kind      `bun:"kind,notnull" json:"kind"`
	Title         string    `bun:"title,notnull" json:"title"`
	TitleDE       string    `bun:"title_de,notnull" json:"title_de"`
	TitleCS       string    `bun:"title_cs,notnull" json:"title_cs"`
	Description   string    `bun:"description,notnull" json:"description"`
	DescriptionDE string    `bun:"description_de,notnull" json:"description_de"`
	DescriptionCS string    `bun:"description_cs,notnull" json:"description_cs"`
	SortOrder     *int      `bun:"sort_order" json:"sort_order,omitempty"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

func (t *Tag) Titles() i18n.Text {
	return i18n.Text{EN: t.Title, DE: t.TitleDE, CS: t.TitleCS}
}

func (t *Tag) Descriptions() i18n.Text {
	return i18n.Text{EN: t.Description, DE: t.DescriptionDE, CS: t.DescriptionCS}
}

// DisplayTitle resolves the title in lang with base fallback.
func (t *Tag) DisplayTitle(lang i18n.Language) string {
	return i18n.WithDefault.Resolve(t.Titles(), lang)
}

// DescriptionHTML renders the description in lang. Descriptions do not fall
// back to the base language.
func (t *Tag) DescriptionHTML(lang i18n.Language) (string, error) {
	source := i18n.Plain.Resolve(t.Descriptions(), lang)
	if source == "" {
		return "", nil
	}
	return i18n.RenderMarkdown(source)
}

func (t *Tag) clone() *Tag {
	if t == nil {
		return nil
	}
	cloned := *t
	if t.SortOrder != nil {
		order := *t.SortOrder
		cloned.SortOrder = &order
	}
	return &cloned
}

// PageTag attaches a tag to a page.
type PageTag struct {
	bun.BaseModel `bun:"table:page_tags,alias:ptg"`

	PageID uuid.UUID `bun:"page_id,pk,type:uuid"`
	TagID  int64     `bun:"tag_id,pk"`
}
