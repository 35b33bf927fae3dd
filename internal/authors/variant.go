package authors

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-lis/internal/i18n"
	"github.com/goliatone/go-lis/internal/pages"
	"github.com/goliatone/go-lis/internal/tags"
	lisvalidation "github.com/goliatone/go-lis/internal/validation"
	slug "github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

// TagStore attaches vocabulary terms to pages.
type TagStore interface {
	SetPageTags(ctx context.Context, pageID uuid.UUID, kind tags.Kind, ids []int64) error
	PageTags(ctx context.Context, pageIDs []uuid.UUID, kind tags.Kind) (map[uuid.UUID][]*tags.Tag, error)
}

var errNamesRequired = validation.NewError("validation_names_required", "at least one name is required")

// Variant plugs authors into the page lifecycle.
type Variant struct {
	repo Repository
	tags TagStore
}

func NewVariant(repo Repository, tagStore TagStore) *Variant {
	return &Variant{repo: repo, tags: tagStore}
}

func (v *Variant) Kind() string { return pages.KindAuthor }

// Clean validates names and dates, then derives the titles from the first
// name and the slug from its base last name.
func (v *Variant) Clean(ctx context.Context, content *pages.Content, slugs pages.SlugAllocator) error {
	author, err := payloadOf(content)
	if err != nil {
		return err
	}
	names := author.Names
	if names == nil {
		if names, err = v.repo.Names(ctx, content.Page.ID); err != nil {
			return err
		}
	}

	errs := validation.Errors{
		"gender":        validation.Validate(string(author.Gender), validation.In(string(GenderUnknown), string(GenderMale), string(GenderFemale))),
		"date_of_birth": author.Birth.Validate(),
		"date_of_death": author.Death.Validate(),
	}
	for _, lang := range i18n.Languages {
		errs[lang.Column("place_of_birth")] = validation.Validate(author.PlacesOfBirth().In(lang), validation.Length(0, 255))
		errs[lang.Column("place_of_death")] = validation.Validate(author.PlacesOfDeath().In(lang), validation.Length(0, 255))
	}
	if len(names) == 0 {
		errs["names"] = errNamesRequired
	}
	for i, name := range names {
		if err := name.Validate(); err != nil {
			errs[fmt.Sprintf("names.%d", i)] = err
		}
	}
	if err := errs.Filter(); err != nil {
		return lisvalidation.Wrap(err, "author validation failed", "AUTHOR_INVALID")
	}
	if author.Gender == "" {
		author.Gender = GenderUnknown
	}

	first := names[0]
	content.Page.SetTitles(first.FullNames())
	if content.Page.ParentID == nil {
		return pages.ErrParentRequired
	}
	base := slugBase(first)
	content.Page.Slug, err = slugs.AutogeneratedSlug(ctx, *content.Page.ParentID, base, content.Page.ID)
	return err
}

func (v *Variant) Decode(data json.RawMessage) (any, error) {
	return pages.DecodeJSON[Author](data)
}

func (v *Variant) Load(ctx context.Context, pageID uuid.UUID) (any, error) {
	author, err := v.repo.Get(ctx, pageID)
	if err != nil {
		return nil, err
	}
	ids := []uuid.UUID{pageID}
	for kind, target := range map[tags.Kind]*[]int64{
		tags.KindLanguage: &author.LanguageIDs,
		tags.KindGenre:    &author.GenreIDs,
		tags.KindPeriod:   &author.PeriodIDs,
	} {
		attached, err := v.tags.PageTags(ctx, ids, kind)
		if err != nil {
			return nil, err
		}
		*target = tagIDs(attached[pageID])
	}
	return author, nil
}

// Store writes the variant row, the tag attachments and, when the payload
// carries them, the names.
func (v *Variant) Store(ctx context.Context, page *pages.Page, payload any) error {
	author, ok := payload.(*Author)
	if !ok || author == nil {
		return ErrPayloadInvalid
	}
	author.PageID = page.ID
	if err := v.repo.Save(ctx, author); err != nil {
		return err
	}
	for kind, ids := range map[tags.Kind][]int64{
		tags.KindLanguage: author.LanguageIDs,
		tags.KindGenre:    author.GenreIDs,
		tags.KindPeriod:   author.PeriodIDs,
	} {
		if err := v.tags.SetPageTags(ctx, page.ID, kind, ids); err != nil {
			return err
		}
	}
	if author.Names != nil {
		if _, err := v.repo.ReplaceNames(ctx, page.ID, author.Names); err != nil {
			return err
		}
	}
	return nil
}

// BeforePublish refreshes the draft titles from the live names, which are
// not captured in revisions.
func (v *Variant) BeforePublish(ctx context.Context, content *pages.Content) error {
	names, err := v.repo.Names(ctx, content.Page.ID)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return nil
	}
	content.Page.SetDraftTitles(names[0].FullNames())
	return nil
}

func payloadOf(content *pages.Content) (*Author, error) {
	if content == nil || content.Page == nil {
		return nil, pages.ErrPageRequired
	}
	author, ok := content.Payload.(*Author)
	if !ok || author == nil {
		return nil, ErrPayloadInvalid
	}
	return author, nil
}

// slugBase slugifies the base last name, falling back to the full name for
// authors known by a first name only.
func slugBase(name *Name) string {
	for _, candidate := range []string{name.LastName, name.FullName(i18n.Base)} {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		if normalized, err := slug.Normalize(candidate); err == nil && normalized != "" {
			return normalized
		}
	}
	return "author"
}

func tagIDs(list []*tags.Tag) []int64 {
	ids := make([]int64, 0, len(list))
	for _, tag := range list {
		ids = append(ids, tag.ID)
	}
	return ids
}
