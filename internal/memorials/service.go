package memorials

import (
	"context"
	"time"

	"github.com/goliatone/go-lis/internal/i18n"
	"github.com/goliatone/go-lis/internal/logging"
	"github.com/goliatone/go-lis/internal/pages"
	"github.com/goliatone/go-lis/internal/permissions"
	"github.com/goliatone/go-lis/pkg/interfaces"
	"github.com/google/uuid"
)

// IndexSlug is the slug of the page holding all memorials.
const IndexSlug = "memorials"

var indexTitle = i18n.Text{EN: "Memorials", DE: "Gedenkstätten", CS: "Památná místa"}

// Site is a memorial page with its payload.
type Site struct {
	Page     *pages.Page
	Memorial *Memorial
}

type Service interface {
	Index(ctx context.Context) (*pages.Page, error)
	Create(ctx context.Context, req CreateRequest) (*Site, *pages.Revision, error)
	SaveDraft(ctx context.Context, req SaveRequest) (*pages.Revision, error)
	Get(ctx context.Context, id uuid.UUID) (*Site, error)
	Latest(ctx context.Context, id uuid.UUID) (*Site, error)
	// OfAuthor lists the memorials remembering an author.
	OfAuthor(ctx context.Context, authorID uuid.UUID) ([]uuid.UUID, error)
}

// CreateRequest adds a memorial draft. A blank slug is derived from the
// English title.
type CreateRequest struct {
	Titles           i18n.Text
	Slug             string
	Memorial         *Memorial
	OriginalLanguage i18n.Language
	Actor            pages.Actor
	Submit           bool
}

// SaveRequest stores a new draft revision. Nil titles and a blank slug keep
// the current values, a nil memorial keeps the latest payload.
type SaveRequest struct {
	PageID           uuid.UUID
	Titles           *i18n.Text
	Slug             string
	Memorial         *Memorial
	OriginalLanguage i18n.Language
	Actor            pages.Actor
	Submit           bool
	GoLiveAt         *time.Time
}

type ServiceOption func(*service)

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		s.logger = logging.Ensure(logger)
	}
}

type service struct {
	pages  pages.Service
	repo   Repository
	logger interfaces.Logger
}

func NewService(pageSvc pages.Service, repo Repository, opts ...ServiceOption) Service {
	s := &service{pages: pageSvc, repo: repo, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Index(ctx context.Context) (*pages.Page, error) {
	return s.pages.EnsureIndex(ctx, IndexSlug, indexTitle)
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Site, *pages.Revision, error) {
	if err := authorize(ctx, req.Actor, permissions.ActionCreate); err != nil {
		return nil, nil, err
	}
	index, err := s.Index(ctx)
	if err != nil {
		return nil, nil, err
	}
	memorial := req.Memorial
	if memorial == nil {
		memorial = &Memorial{}
	}
	page := &pages.Page{Kind: pages.KindMemorial, Slug: req.Slug, OriginalLanguage: string(req.OriginalLanguage)}
	page.SetTitles(req.Titles)
	content, revision, err := s.pages.Create(ctx, pages.CreateRequest{
		ParentID:               index.ID,
		Content:                &pages.Content{Page: page, Payload: memorial},
		Actor:                  req.Actor,
		SubmittedForModeration: req.Submit,
	})
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("memorial.created", "page_id", content.Page.ID.String(), "slug", content.Page.Slug)
	return &Site{Page: content.Page, Memorial: memorial}, revision, nil
}

func (s *service) SaveDraft(ctx context.Context, req SaveRequest) (*pages.Revision, error) {
	if req.PageID == uuid.Nil {
		return nil, ErrMemorialRequired
	}
	if err := authorize(ctx, req.Actor, permissions.ActionUpdate); err != nil {
		return nil, err
	}
	latest, err := s.pages.Latest(ctx, req.PageID)
	if err != nil {
		return nil, err
	}
	if latest.Page.Kind != pages.KindMemorial {
		return nil, pages.ErrKindMismatch
	}
	memorial := req.Memorial
	if memorial == nil {
		if memorial, err = payloadOf(latest); err != nil {
			return nil, err
		}
	}
	page := latest.Page.Clone()
	if req.Titles != nil {
		page.SetTitles(*req.Titles)
	}
	if req.Slug != "" {
		page.Slug = req.Slug
	}
	if req.OriginalLanguage != "" {
		page.OriginalLanguage = string(req.OriginalLanguage)
	}
	return s.pages.SaveRevision(ctx, pages.SaveRevisionRequest{
		Content:                &pages.Content{Page: page, Payload: memorial},
		Actor:                  req.Actor,
		SubmittedForModeration: req.Submit,
		ApprovedGoLiveAt:       req.GoLiveAt,
	})
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Site, error) {
	content, err := s.pages.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return site(content)
}

func (s *service) Latest(ctx context.Context, id uuid.UUID) (*Site, error) {
	content, err := s.pages.Latest(ctx, id)
	if err != nil {
		return nil, err
	}
	return site(content)
}

func (s *service) OfAuthor(ctx context.Context, authorID uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.MemorialIDs(ctx, authorID)
}

func site(content *pages.Content) (*Site, error) {
	if content.Page.Kind != pages.KindMemorial {
		return nil, pages.ErrKindMismatch
	}
	memorial, err := payloadOf(content)
	if err != nil {
		return nil, err
	}
	return &Site{Page: content.Page, Memorial: memorial}, nil
}

func authorize(ctx context.Context, actor pages.Actor, action permissions.Action) error {
	return permissions.Authorize(ctx, actor.Groups, permissions.ResourceMemorials, action)
}
