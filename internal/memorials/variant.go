package memorials

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-lis/internal/authors"
	"github.com/goliatone/go-lis/internal/i18n"
	"github.com/goliatone/go-lis/internal/pages"
	"github.com/goliatone/go-lis/internal/tags"
	lisvalidation "github.com/goliatone/go-lis/internal/validation"
	slug "github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

// TagStore attaches memorial type terms to pages.
type TagStore interface {
	SetPageTags(ctx context.Context, pageID uuid.UUID, kind tags.Kind, ids []int64) error
	PageTags(ctx context.Context, pageIDs []uuid.UUID, kind tags.Kind) (map[uuid.UUID][]*tags.Tag, error)
}

// AuthorLookup resolves remembered authors.
type AuthorLookup interface {
	Get(ctx context.Context, pageID uuid.UUID) (*authors.Author, error)
}

var (
	errCoordinates   = validation.NewError("validation_coordinates", "coordinates must be a longitude and latitude in range")
	errUnknownAuthor = validation.NewError("validation_unknown_author", "references an unknown author")
)

// Variant plugs memorials into the page lifecycle.
type Variant struct {
	repo    Repository
	tags    TagStore
	authors AuthorLookup
}

func NewVariant(repo Repository, tagStore TagStore, authorLookup AuthorLookup) *Variant {
	return &Variant{repo: repo, tags: tagStore, authors: authorLookup}
}

func (v *Variant) Kind() string { return pages.KindMemorial }

// Clean validates the memorial and fills a missing slug from the base title.
func (v *Variant) Clean(ctx context.Context, content *pages.Content, slugs pages.SlugAllocator) error {
	memorial, err := payloadOf(content)
	if err != nil {
		return err
	}
	page := content.Page
	errs := validation.Errors{
		"title":              validation.Validate(page.Title, validation.Required, validation.Length(1, 255)),
		"title_de":           validation.Validate(page.TitleDE, validation.Length(0, 255)),
		"title_cs":           validation.Validate(page.TitleCS, validation.Length(0, 255)),
		"remembered_authors": validation.Validate(memorial.AuthorIDs, validation.Required),
		"memorial_type_tags": validation.Validate(memorial.MemorialTypeIDs, validation.Required),
		"coordinates":        validateCoordinates(memorial),
	}
	if errs["remembered_authors"] == nil {
		unknown, err := v.hasUnknownAuthor(ctx, memorial.AuthorIDs)
		if err != nil {
			return err
		}
		if unknown {
			errs["remembered_authors"] = errUnknownAuthor
		}
	}
	for _, lang := range i18n.Languages {
		for field, list := range map[string][]Paragraph{
			"description":          memorial.Descriptions().In(lang),
			"detailed_description": memorial.DetailedDescriptions().In(lang),
		} {
			for i, paragraph := range list {
				if err := paragraph.Validate(); err != nil {
					errs[fmt.Sprintf("%s.%d", lang.Column(field), i)] = err
				}
			}
		}
	}
	if err := errs.Filter(); err != nil {
		return lisvalidation.Wrap(err, "memorial validation failed", "MEMORIAL_INVALID")
	}

	if strings.TrimSpace(page.Slug) != "" {
		return nil
	}
	if page.ParentID == nil {
		return pages.ErrParentRequired
	}
	base, err := slug.Normalize(page.Title)
	if err != nil || base == "" {
		base = "memorial"
	}
	page.Slug, err = slugs.AutogeneratedSlug(ctx, *page.ParentID, base, page.ID)
	return err
}

func (v *Variant) hasUnknownAuthor(ctx context.Context, ids []uuid.UUID) (bool, error) {
	for _, id := range ids {
		if _, err := v.authors.Get(ctx, id); err != nil {
			if authors.IsNotFound(err) {
				return true, nil
			}
			return false, err
		}
	}
	return false, nil
}

func validateCoordinates(m *Memorial) error {
	point, ok := m.Point()
	if !ok {
		return validation.ErrRequired
	}
	if point.Lon() < -180 || point.Lon() > 180 || point.Lat() < -90 || point.Lat() > 90 {
		return errCoordinates
	}
	return nil
}

func (v *Variant) Decode(data json.RawMessage) (any, error) {
	return pages.DecodeJSON[Memorial](data)
}

func (v *Variant) Load(ctx context.Context, pageID uuid.UUID) (any, error) {
	memorial, err := v.repo.Get(ctx, pageID)
	if err != nil {
		return nil, err
	}
	ids := []uuid.UUID{pageID}
	authorIDs, err := v.repo.AuthorIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	memorial.AuthorIDs = authorIDs[pageID]
	types, err := v.tags.PageTags(ctx, ids, tags.KindMemorialType)
	if err != nil {
		return nil, err
	}
	memorial.MemorialTypeIDs = make([]int64, 0, len(types[pageID]))
	for _, tag := range types[pageID] {
		memorial.MemorialTypeIDs = append(memorial.MemorialTypeIDs, tag.ID)
	}
	return memorial, nil
}

// Store writes the variant row with its search text, the memorial types and
// the remembered authors.
func (v *Variant) Store(ctx context.Context, page *pages.Page, payload any) error {
	memorial, ok := payload.(*Memorial)
	if !ok || memorial == nil {
		return ErrPayloadInvalid
	}
	memorial.PageID = page.ID
	memorial.SearchText = searchText(memorial, i18n.EN)
	memorial.SearchTextDE = searchText(memorial, i18n.DE)
	memorial.SearchTextCS = searchText(memorial, i18n.CS)
	if err := v.repo.Save(ctx, memorial); err != nil {
		return err
	}
	if err := v.tags.SetPageTags(ctx, page.ID, tags.KindMemorialType, memorial.MemorialTypeIDs); err != nil {
		return err
	}
	return v.repo.SetAuthors(ctx, page.ID, memorial.AuthorIDs)
}

func searchText(m *Memorial, lang i18n.Language) string {
	parts := []string{
		i18n.PlainText(m.Introductions().In(lang)),
		PlainText(m.Descriptions().In(lang)),
		PlainText(m.DetailedDescriptions().In(lang)),
		i18n.PlainText(m.Addresses().In(lang)),
		i18n.PlainText(m.AllDirections().In(lang)),
	}
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, " ")
}

func payloadOf(content *pages.Content) (*Memorial, error) {
	if content == nil || content.Page == nil {
		return nil, pages.ErrPageRequired
	}
	memorial, ok := content.Payload.(*Memorial)
	if !ok || memorial == nil {
		return nil, ErrPayloadInvalid
	}
	return memorial, nil
}
