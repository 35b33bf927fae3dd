package authors

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

// IndexSlug is the slug of the page holding all authors.
const IndexSlug = "authors"

var indexTitle = i18n.Text{EN: "Authors", DE: "Autoren", CS: "Autoři"}

// Profile is an author page with its payload and live names.
type Profile struct {
	Page   *pages.Page
	Author *Author
	Names  []*Name
}

// Title is the first name, or nil for authors without names.
func (p *Profile) Title() *Name {
	if len(p.Names) == 0 {
		return nil
	}
	return p.Names[0]
}

// AlsoKnownAs returns every name after the first.
func (p *Profile) AlsoKnownAs() []*Name {
	if len(p.Names) < 2 {
		return nil
	}
	return p.Names[1:]
}

type Service interface {
	Index(ctx context.Context) (*pages.Page, error)
	Create(ctx context.Context, req CreateRequest) (*Profile, *pages.Revision, error)
	SaveDraft(ctx context.Context, req SaveRequest) (*pages.Revision, error)
	ReplaceNames(ctx context.Context, req ReplaceNamesRequest) (*pages.Revision, error)
	Get(ctx context.Context, id uuid.UUID) (*Profile, error)
	Latest(ctx context.Context, id uuid.UUID) (*Profile, error)
}

type CreateRequest struct {
	Author           *Author
	Names            []*Name
	OriginalLanguage i18n.Language
	Actor            pages.Actor
	Submit           bool
}

// SaveRequest stores a new draft revision. Names, when not nil, replace
// the live names once the revision is written.
type SaveRequest struct {
	PageID           uuid.UUID
	Author           *Author
	Names            []*Name
	OriginalLanguage i18n.Language
	Actor            pages.Actor
	Submit           bool
	GoLiveAt         *time.Time
}

type ReplaceNamesRequest struct {
	PageID uuid.UUID
	Names  []*Name
	Actor  pages.Actor
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

func (s *service) Create(ctx context.Context, req CreateRequest) (*Profile, *pages.Revision, error) {
	if err := authorize(ctx, req.Actor, permissions.ActionCreate); err != nil {
		return nil, nil, err
	}
	index, err := s.Index(ctx)
	if err != nil {
		return nil, nil, err
	}
	author := req.Author
	if author == nil {
		author = &Author{}
	}
	author.Names = req.Names
	if author.Names == nil {
		author.Names = []*Name{}
	}
	page := &pages.Page{Kind: pages.KindAuthor, OriginalLanguage: string(req.OriginalLanguage)}
	content, revision, err := s.pages.Create(ctx, pages.CreateRequest{
		ParentID:               index.ID,
		Content:                &pages.Content{Page: page, Payload: author},
		Actor:                  req.Actor,
		SubmittedForModeration: req.Submit,
	})
	if err != nil {
		return nil, nil, err
	}
	names, err := s.repo.Names(ctx, content.Page.ID)
	if err != nil {
		return nil, nil, err
	}
	author.Names = nil
	s.logger.Info("author.created", "page_id", content.Page.ID.String(), "slug", content.Page.Slug)
	return &Profile{Page: content.Page, Author: author, Names: names}, revision, nil
}

func (s *service) SaveDraft(ctx context.Context, req SaveRequest) (*pages.Revision, error) {
	if req.PageID == uuid.Nil {
		return nil, ErrAuthorRequired
	}
	if err := authorize(ctx, req.Actor, permissions.ActionUpdate); err != nil {
		return nil, err
	}
	latest, err := s.pages.Latest(ctx, req.PageID)
	if err != nil {
		return nil, err
	}
	if latest.Page.Kind != pages.KindAuthor {
		return nil, pages.ErrKindMismatch
	}
	author := req.Author
	if author == nil {
		if author, err = payloadOf(latest); err != nil {
			return nil, err
		}
	}
	author.Names = req.Names
	page := latest.Page.Clone()
	if req.OriginalLanguage != "" {
		page.OriginalLanguage = string(req.OriginalLanguage)
	}

	revision, err := s.pages.SaveRevision(ctx, pages.SaveRevisionRequest{
		Content:                &pages.Content{Page: page, Payload: author},
		Actor:                  req.Actor,
		SubmittedForModeration: req.Submit,
		ApprovedGoLiveAt:       req.GoLiveAt,
	})
	if err != nil {
		return nil, err
	}
	if req.Names != nil {
		if _, err := s.repo.ReplaceNames(ctx, req.PageID, req.Names); err != nil {
			return nil, err
		}
		s.logger.Info("author.names.replaced", "page_id", req.PageID.String(), "count", len(req.Names))
	}
	return revision, nil
}

// ReplaceNames swaps the live names and records a revision carrying the
// titles derived from them.
func (s *service) ReplaceNames(ctx context.Context, req ReplaceNamesRequest) (*pages.Revision, error) {
	names := req.Names
	if names == nil {
		names = []*Name{}
	}
	return s.SaveDraft(ctx, SaveRequest{PageID: req.PageID, Names: names, Actor: req.Actor})
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Profile, error) {
	content, err := s.pages.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, content)
}

func (s *service) Latest(ctx context.Context, id uuid.UUID) (*Profile, error) {
	content, err := s.pages.Latest(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, content)
}

func (s *service) profile(ctx context.Context, content *pages.Content) (*Profile, error) {
	if content.Page.Kind != pages.KindAuthor {
		return nil, pages.ErrKindMismatch
	}
	author, err := payloadOf(content)
	if err != nil {
		return nil, err
	}
	names, err := s.repo.Names(ctx, content.Page.ID)
	if err != nil {
		return nil, err
	}
	return &Profile{Page: content.Page, Author: author, Names: names}, nil
}

func authorize(ctx context.Context, actor pages.Actor, action permissions.Action) error {
	return permissions.Authorize(ctx, actor.Groups, permissions.ResourceAuthors, action)
}
