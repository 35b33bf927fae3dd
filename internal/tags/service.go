package tags

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-lis/internal/i18n"
	"github.com/goliatone/go-lis/internal/logging"
	"github.com/goliatone/go-lis/internal/permissions"
	lisvalidation "github.com/goliatone/go-lis/internal/validation"
	"github.com/goliatone/go-lis/pkg/interfaces"
	"github.com/google/uuid"
)

// DefaultAutocompleteLimit caps autocomplete suggestions.
const DefaultAutocompleteLimit = 20

// Service manages the vocabularies.
type Service interface {
	Create(ctx context.Context, req SaveRequest) (*Tag, error)
	Update(ctx context.Context, id int64, req SaveRequest) (*Tag, error)
	Get(ctx context.Context, kind Kind, id int64) (*Tag, error)
	List(ctx context.Context, opts ListOptions) ([]*Tag, int, error)
	Delete(ctx context.Context, kind Kind, id int64) error
	Autocomplete(ctx context.Context, kind Kind, q string, limit int) ([]*Tag, error)
	SetPageTags(ctx context.Context, pageID uuid.UUID, kind Kind, ids []int64) error
	PageTags(ctx context.Context, pageIDs []uuid.UUID, kind Kind) (map[uuid.UUID][]*Tag, error)
}

// SaveRequest carries the editable fields of a tag.
type SaveRequest struct {
	Kind         Kind
	Titles       i18n.Text
	Descriptions i18n.Text
	SortOrder    *int
}

type ServiceOption func(*service)

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		s.logger = logging.Ensure(logger)
	}
}

type service struct {
	repo   Repository
	logger interfaces.Logger
}

func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{repo: repo, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, req SaveRequest) (*Tag, error) {
	if err := permissions.Require(ctx, permissions.Join(permissions.ResourceTags, permissions.ActionCreate)); err != nil {
		return nil, err
	}
	tag := &Tag{Kind: req.Kind}
	apply(tag, req)
	if err := s.validate(ctx, tag); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, tag)
	if err != nil {
		return nil, err
	}
	s.logger.Info("tag.created", "tag_id", created.ID, "kind", created.Kind)
	return created, nil
}

func (s *service) Update(ctx context.Context, id int64, req SaveRequest) (*Tag, error) {
	if err := permissions.Require(ctx, permissions.Join(permissions.ResourceTags, permissions.ActionUpdate)); err != nil {
		return nil, err
	}
	tag, err := s.Get(ctx, req.Kind, id)
	if err != nil {
		return nil, err
	}
	apply(tag, req)
	if err := s.validate(ctx, tag); err != nil {
		return nil, err
	}
	updated, err := s.repo.Update(ctx, tag)
	if err != nil {
		return nil, err
	}
	s.logger.Info("tag.updated", "tag_id", updated.ID, "kind", updated.Kind)
	return updated, nil
}

// Get loads a tag and checks it belongs to kind. An empty kind matches any vocabulary.
func (s *service) Get(ctx context.Context, kind Kind, id int64) (*Tag, error) {
	if id <= 0 {
		return nil, ErrTagRequired
	}
	tag, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if kind != "" && tag.Kind != kind {
		return nil, &NotFoundError{ID: id}
	}
	return tag, nil
}

func (s *service) List(ctx context.Context, opts ListOptions) ([]*Tag, int, error) {
	if opts.Kind != "" {
		if _, err := ParseKind(string(opts.Kind)); err != nil {
			return nil, 0, err
		}
	}
	if opts.Language == "" {
		opts.Language = i18n.LanguageFrom(ctx)
	}
	return s.repo.List(ctx, opts)
}

func (s *service) Delete(ctx context.Context, kind Kind, id int64) error {
	if err := permissions.Require(ctx, permissions.Join(permissions.ResourceTags, permissions.ActionDelete)); err != nil {
		return err
	}
	if _, err := s.Get(ctx, kind, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("tag.deleted", "tag_id", id, "kind", kind)
	return nil
}

// Autocomplete matches q against the three title columns, ordered by the
// base title.
func (s *service) Autocomplete(ctx context.Context, kind Kind, q string, limit int) ([]*Tag, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultAutocompleteLimit
	}
	list, _, err := s.repo.List(ctx, ListOptions{
		Kind:     kind,
		Search:   q,
		Language: i18n.Base,
		Sort:     defaultSort(""),
		Limit:    limit,
	})
	return list, err
}

func (s *service) SetPageTags(ctx context.Context, pageID uuid.UUID, kind Kind, ids []int64) error {
	if _, err := ParseKind(string(kind)); err != nil {
		return err
	}
	return s.repo.SetPageTags(ctx, pageID, kind, ids)
}

func (s *service) PageTags(ctx context.Context, pageIDs []uuid.UUID, kind Kind) (map[uuid.UUID][]*Tag, error) {
	return s.repo.PageTags(ctx, pageIDs, kind)
}

func apply(tag *Tag, req SaveRequest) {
	titles := req.Titles
	tag.Title = strings.TrimSpace(titles.EN)
	tag.TitleDE = strings.TrimSpace(titles.DE)
	tag.TitleCS = strings.TrimSpace(titles.CS)
	tag.Description = req.Descriptions.EN
	tag.DescriptionDE = req.Descriptions.DE
	tag.DescriptionCS = req.Descriptions.CS
	tag.SortOrder = req.SortOrder
}

func (s *service) validate(ctx context.Context, tag *Tag) error {
	if _, err := ParseKind(string(tag.Kind)); err != nil {
		return err
	}
	errs := validation.Errors{}
	for _, lang := range i18n.Languages {
		field := lang.Column("title")
		title := tag.Titles().In(lang)
		if err := validation.Validate(title, validation.Required, validation.Length(1, 1000)); err != nil {
			errs[field] = err
			continue
		}
		taken, err := s.repo.TitleTaken(ctx, tag.Kind, lang, title, tag.ID)
		if err != nil {
			return err
		}
		if taken {
			errs[field] = validation.NewError("validation_title_taken", "is already used in this vocabulary")
		}
	}
	if tag.Kind.Sortable() {
		errs["sort_order"] = validation.Validate(tag.SortOrder, validation.NotNil)
	}
	if err := errs.Filter(); err != nil {
		return lisvalidation.Wrap(err, "tag validation failed", "TAG_INVALID")
	}
	return nil
}
