package pages

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-lis/internal/i18n"
	"github.com/goliatone/go-lis/internal/identity"
	"github.com/goliatone/go-lis/internal/logging"
	"github.com/goliatone/go-lis/internal/permissions"
	lisvalidation "github.com/goliatone/go-lis/internal/validation"
	"github.com/goliatone/go-lis/pkg/interfaces"
	slug "github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

// Service manages the page tree and the revision lifecycle.
type Service interface {
	EnsureRoot(ctx context.Context) (*Page, error)
	EnsureIndex(ctx context.Context, slug string, title i18n.Text) (*Page, error)
	Create(ctx context.Context, req CreateRequest) (*Content, *Revision, error)
	Get(ctx context.Context, id uuid.UUID) (*Content, error)
	Latest(ctx context.Context, id uuid.UUID) (*Content, error)
	SaveRevision(ctx context.Context, req SaveRevisionRequest) (*Revision, error)
	Publish(ctx context.Context, req PublishRequest) (*PublishResult, error)
	Unpublish(ctx context.Context, req UnpublishRequest) (*Page, error)
	PublishScheduled(ctx context.Context, now time.Time) ([]*PublishResult, error)
	ListRevisions(ctx context.Context, pageID uuid.UUID) ([]*Revision, error)
	Move(ctx context.Context, req MoveRequest) (*Page, error)
	Children(ctx context.Context, parentID uuid.UUID, liveOnly bool) ([]*Page, error)
	List(ctx context.Context, opts ListOptions) ([]*Page, error)
	SlugAllocator
}

// CreateRequest adds a new draft page under ParentID and stores its first revision.
type CreateRequest struct {
	ParentID               uuid.UUID
	Content                *Content
	Actor                  Actor
	SubmittedForModeration bool
}

// SaveRevisionRequest captures a revision save.
type SaveRevisionRequest struct {
	Content                *Content
	Actor                  Actor
	SubmittedForModeration bool
	ApprovedGoLiveAt       *time.Time
	// Unchanged marks saves that must not flag the page as having
	// unpublished changes.
	Unchanged bool
}

// PublishRequest promotes a revision to the live row.
type PublishRequest struct {
	RevisionID uuid.UUID
	Actor      Actor
}

// PublishResult reports what Publish did with a revision.
type PublishResult struct {
	Page      *Page
	Revision  *Revision
	Scheduled bool
}

type UnpublishRequest struct {
	PageID uuid.UUID
	Actor  Actor
}

type MoveRequest struct {
	PageID      uuid.UUID
	NewParentID uuid.UUID
	Actor       Actor
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

type IDGenerator func() uuid.UUID

func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithLogger sets the lifecycle logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		s.logger = logging.Ensure(logger)
	}
}

// WithVariant registers the storage and validation hooks of a page kind.
func WithVariant(variant Variant) ServiceOption {
	return func(s *service) {
		if variant != nil {
			s.variants[variant.Kind()] = variant
		}
	}
}

type service struct {
	pages    PageRepository
	variants map[string]Variant
	now      func() time.Time
	id       IDGenerator
	logger   interfaces.Logger
}

// NewService constructs the page service.
func NewService(pages PageRepository, opts ...ServiceOption) Service {
	s := &service{
		pages: pages,
		variants: map[string]Variant{
			KindRoot:  structuralVariant{kind: KindRoot},
			KindIndex: structuralVariant{kind: KindIndex},
		},
		now:    time.Now,
		id:     uuid.New,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) EnsureRoot(ctx context.Context) (*Page, error) {
	id := identity.RootPageUUID()
	if existing, err := s.pages.GetByID(ctx, id); err == nil {
		return existing, nil
	} else if !IsNotFound(err) {
		return nil, err
	}
	now := s.now().UTC()
	root := &Page{
		ID:               id,
		Kind:             KindRoot,
		Path:             mustStep(1),
		Depth:            1,
		URLPath:          "/",
		Slug:             "root",
		Title:            "Root",
		DraftTitle:       "Root",
		Live:             true,
		OriginalLanguage: string(i18n.Base),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return s.pages.Create(ctx, root)
}

func (s *service) EnsureIndex(ctx context.Context, indexSlug string, title i18n.Text) (*Page, error) {
	indexSlug = strings.TrimSpace(indexSlug)
	if indexSlug == "" {
		return nil, ErrSlugRequired
	}
	id := identity.IndexPageUUID(indexSlug)
	if existing, err := s.pages.GetByID(ctx, id); err == nil {
		return existing, nil
	} else if !IsNotFound(err) {
		return nil, err
	}
	root, err := s.EnsureRoot(ctx)
	if err != nil {
		return nil, err
	}
	page := &Page{ID: id, Kind: KindIndex, Slug: indexSlug, Live: true}
	page.SetTitles(title)
	page.SetDraftTitles(title)
	return s.insertChild(ctx, root, page)
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Content, *Revision, error) {
	if req.Content == nil || req.Content.Page == nil {
		return nil, nil, ErrPageRequired
	}
	if req.ParentID == uuid.Nil {
		return nil, nil, ErrParentRequired
	}
	if err := authorize(ctx, req.Actor, permissions.ActionCreate); err != nil {
		return nil, nil, err
	}
	variant, err := s.variant(req.Content.Page.Kind)
	if err != nil {
		return nil, nil, err
	}
	parent, err := s.pages.GetByID(ctx, req.ParentID)
	if err != nil {
		return nil, nil, err
	}

	working := &Content{Page: req.Content.Page.Clone(), Payload: req.Content.Payload}
	if working.Page.ID == uuid.Nil {
		working.Page.ID = s.id()
	}
	working.Page.ParentID = &parent.ID
	if err := s.fullClean(ctx, variant, working); err != nil {
		return nil, nil, err
	}

	page := working.Page
	page.Live = false
	page.HasUnpublishedChanges = true
	page.OwnerID = req.Actor.userID()
	page.SetDraftTitles(page.Titles())
	if page.OriginalLanguage == "" {
		page.OriginalLanguage = string(i18n.Base)
	}
	created, err := s.insertChild(ctx, parent, page)
	if err != nil {
		return nil, nil, err
	}
	if err := variant.Store(ctx, created, working.Payload); err != nil {
		return nil, nil, err
	}

	revision, err := s.SaveRevision(ctx, SaveRevisionRequest{
		Content:                &Content{Page: created, Payload: working.Payload},
		Actor:                  req.Actor,
		SubmittedForModeration: req.SubmittedForModeration,
	})
	if err != nil {
		return nil, nil, err
	}
	current, err := s.pages.GetByID(ctx, created.ID)
	if err != nil {
		return nil, nil, err
	}
	return &Content{Page: current, Payload: working.Payload}, revision, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Content, error) {
	if id == uuid.Nil {
		return nil, ErrPageRequired
	}
	page, err := s.pages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	variant, err := s.variant(page.Kind)
	if err != nil {
		return nil, err
	}
	payload, err := variant.Load(ctx, page.ID)
	if err != nil {
		return nil, err
	}
	return &Content{Page: page, Payload: payload}, nil
}

// Latest returns the newest revision materialized onto the current tree
// position, the view an editor works from.
func (s *service) Latest(ctx context.Context, id uuid.UUID) (*Content, error) {
	revision, err := s.pages.LatestRevision(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return s.Get(ctx, id)
		}
		return nil, err
	}
	content, _, err := s.materializeRevision(ctx, revision)
	return content, err
}

func (s *service) SaveRevision(ctx context.Context, req SaveRevisionRequest) (*Revision, error) {
	if req.Content == nil || req.Content.Page == nil || req.Content.Page.ID == uuid.Nil {
		return nil, ErrPageRequired
	}
	if err := authorize(ctx, req.Actor, permissions.ActionUpdate); err != nil {
		return nil, err
	}
	live, err := s.pages.GetByID(ctx, req.Content.Page.ID)
	if err != nil {
		return nil, err
	}
	if req.Content.Page.Kind != "" && req.Content.Page.Kind != live.Kind {
		return nil, ErrKindMismatch
	}
	variant, err := s.variant(live.Kind)
	if err != nil {
		return nil, err
	}

	working := &Content{Page: req.Content.Page.Clone(), Payload: req.Content.Payload}
	adoptTreePosition(working.Page, live)
	if err := s.fullClean(ctx, variant, working); err != nil {
		return nil, err
	}
	snapshot, err := encodeSnapshot(working)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	revision, err := s.pages.CreateRevision(ctx, &Revision{
		ID:                     s.id(),
		PageID:                 live.ID,
		UserID:                 req.Actor.userID(),
		SubmittedForModeration: req.SubmittedForModeration,
		ApprovedGoLiveAt:       cloneTimePtr(req.ApprovedGoLiveAt),
		Snapshot:               snapshot,
		CreatedAt:              now,
	})
	if err != nil {
		return nil, err
	}
	if revision.ApprovedGoLiveAt != nil {
		if err := s.clearOtherSchedules(ctx, revision); err != nil {
			return nil, err
		}
	}

	live.LatestRevisionCreatedAt = &now
	live.SetDraftTitles(working.Page.Titles())
	live.UpdatedAt = now
	columns := []string{"latest_revision_created_at", "draft_title", "draft_title_de", "draft_title_cs", "updated_at"}
	if !req.Unchanged {
		live.HasUnpublishedChanges = true
		columns = append(columns, "has_unpublished_changes")
	}
	if err := s.pages.UpdateColumns(ctx, live, columns...); err != nil {
		return nil, err
	}

	logger := logging.WithPageContext(s.logger, live.ID.String(), live.Kind, actorLabel(req.Actor))
	logger.Info("page.revision.saved", "title", working.Page.Title, "revision_id", revision.ID.String())
	if req.SubmittedForModeration {
		logger.Info("page.revision.submitted", "title", working.Page.Title, "revision_id", revision.ID.String())
	}
	return revision, nil
}

func (s *service) Publish(ctx context.Context, req PublishRequest) (*PublishResult, error) {
	if req.RevisionID == uuid.Nil {
		return nil, ErrRevisionRequired
	}
	if err := authorize(ctx, req.Actor, permissions.ActionPublish); err != nil {
		return nil, err
	}
	revision, err := s.pages.GetRevision(ctx, req.RevisionID)
	if err != nil {
		return nil, err
	}
	content, live, err := s.materializeRevision(ctx, revision)
	if err != nil {
		return nil, err
	}
	variant, err := s.variant(live.Kind)
	if err != nil {
		return nil, err
	}
	if hook, ok := variant.(PublishHook); ok {
		if err := hook.BeforePublish(ctx, content); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	logger := logging.WithPageContext(s.logger, live.ID.String(), live.Kind, actorLabel(req.Actor))

	if revision.ApprovedGoLiveAt != nil && revision.ApprovedGoLiveAt.After(now) {
		if err := s.clearOtherSchedules(ctx, revision); err != nil {
			return nil, err
		}
		logger.Info("page.publish.scheduled", "revision_id", revision.ID.String(), "go_live_at", revision.ApprovedGoLiveAt.Format(time.RFC3339))
		return &PublishResult{Page: live, Revision: revision, Scheduled: true}, nil
	}

	latest, err := s.pages.LatestRevision(ctx, live.ID)
	if err != nil {
		return nil, err
	}

	page := content.Page
	if page.Slug != live.Slug {
		taken, err := s.pages.SlugTaken(ctx, parentIDOf(live), page.Slug, live.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrSlugExists
		}
	}
	page.Live = true
	page.HasUnpublishedChanges = latest.ID != revision.ID
	if page.FirstPublishedAt == nil {
		page.FirstPublishedAt = &now
	}
	page.LastPublishedAt = &now
	page.LiveRevisionID = &revision.ID
	page.UpdatedAt = now

	updated, err := s.pages.Update(ctx, page)
	if err != nil {
		return nil, err
	}
	if err := variant.Store(ctx, updated, content.Payload); err != nil {
		return nil, err
	}
	if updated.URLPath != live.URLPath {
		if err := s.rewriteDescendants(ctx, live, updated); err != nil {
			return nil, err
		}
	}
	if revision.ApprovedGoLiveAt != nil {
		revision.ApprovedGoLiveAt = nil
		if revision, err = s.pages.UpdateRevision(ctx, revision); err != nil {
			return nil, err
		}
	}

	logger.Info("page.published", "title", updated.Title, "revision_id", revision.ID.String())
	return &PublishResult{Page: updated, Revision: revision}, nil
}

func (s *service) Unpublish(ctx context.Context, req UnpublishRequest) (*Page, error) {
	if req.PageID == uuid.Nil {
		return nil, ErrPageRequired
	}
	if err := authorize(ctx, req.Actor, permissions.ActionPublish); err != nil {
		return nil, err
	}
	page, err := s.pages.GetByID(ctx, req.PageID)
	if err != nil {
		return nil, err
	}
	if !page.Live {
		return page, nil
	}
	page.Live = false
	page.HasUnpublishedChanges = true
	page.LiveRevisionID = nil
	page.UpdatedAt = s.now().UTC()
	if err := s.pages.UpdateColumns(ctx, page, "live", "has_unpublished_changes", "live_revision_id", "updated_at"); err != nil {
		return nil, err
	}
	logging.WithPageContext(s.logger, page.ID.String(), page.Kind, actorLabel(req.Actor)).
		Info("page.unpublished", "title", page.Title)
	return page, nil
}

// PublishScheduled publishes every revision whose go-live time has passed.
// A failing revision is logged and skipped so one bad page does not block
// the rest of the queue.
func (s *service) PublishScheduled(ctx context.Context, now time.Time) ([]*PublishResult, error) {
	due, err := s.pages.ScheduledRevisions(ctx, now)
	if err != nil {
		return nil, err
	}
	results := make([]*PublishResult, 0, len(due))
	var errs []error
	for _, revision := range due {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		pinned := &service{pages: s.pages, variants: s.variants, now: func() time.Time { return now }, id: s.id, logger: s.logger}
		result, err := pinned.Publish(ctx, PublishRequest{RevisionID: revision.ID})
		if err != nil {
			s.logger.Error("page.publish.scheduled_failed", "revision_id", revision.ID.String(), "error", err)
			errs = append(errs, fmt.Errorf("revision %s: %w", revision.ID, err))
			continue
		}
		results = append(results, result)
	}
	return results, errors.Join(errs...)
}

func (s *service) ListRevisions(ctx context.Context, pageID uuid.UUID) ([]*Revision, error) {
	if pageID == uuid.Nil {
		return nil, ErrPageRequired
	}
	if _, err := s.pages.GetByID(ctx, pageID); err != nil {
		return nil, err
	}
	return s.pages.ListRevisions(ctx, pageID)
}

func (s *service) Move(ctx context.Context, req MoveRequest) (*Page, error) {
	if req.PageID == uuid.Nil {
		return nil, ErrPageRequired
	}
	if req.NewParentID == uuid.Nil {
		return nil, ErrParentRequired
	}
	if err := authorize(ctx, req.Actor, permissions.ActionUpdate); err != nil {
		return nil, err
	}
	page, err := s.pages.GetByID(ctx, req.PageID)
	if err != nil {
		return nil, err
	}
	if page.ParentID == nil {
		return nil, ErrRootImmutable
	}
	if *page.ParentID == req.NewParentID {
		return page, nil
	}
	newParent, err := s.pages.GetByID(ctx, req.NewParentID)
	if err != nil {
		return nil, err
	}
	if newParent.ID == page.ID || newParent.IsDescendantOf(page) {
		return nil, ErrPageParentCycle
	}
	taken, err := s.pages.SlugTaken(ctx, newParent.ID, page.Slug, page.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlugExists
	}
	oldParent, err := s.pages.GetByID(ctx, *page.ParentID)
	if err != nil {
		return nil, err
	}
	siblings, err := s.pages.List(ctx, ListOptions{ParentID: &newParent.ID})
	if err != nil {
		return nil, err
	}
	path, err := nextChildPath(newParent.Path, siblings)
	if err != nil {
		return nil, err
	}

	before := page.Clone()
	now := s.now().UTC()
	page.ParentID = &newParent.ID
	page.Path = path
	page.Depth = depthOf(path)
	page.URLPath = urlPathFor(newParent, page.Slug)
	page.UpdatedAt = now
	if err := s.pages.UpdateColumns(ctx, page, "parent_id", "path", "depth", "url_path", "updated_at"); err != nil {
		return nil, err
	}
	if err := s.rewriteDescendants(ctx, before, page); err != nil {
		return nil, err
	}

	oldParent.NumChild = max(oldParent.NumChild-1, 0)
	newParent.NumChild++
	for _, parent := range []*Page{oldParent, newParent} {
		parent.UpdatedAt = now
		if err := s.pages.UpdateColumns(ctx, parent, "numchild", "updated_at"); err != nil {
			return nil, err
		}
	}
	logging.WithPageContext(s.logger, page.ID.String(), page.Kind, actorLabel(req.Actor)).
		Info("page.moved", "from", before.URLPath, "to", page.URLPath)
	return page, nil
}

func (s *service) Children(ctx context.Context, parentID uuid.UUID, liveOnly bool) ([]*Page, error) {
	return s.pages.List(ctx, ListOptions{ParentID: &parentID, LiveOnly: liveOnly})
}

func (s *service) List(ctx context.Context, opts ListOptions) ([]*Page, error) {
	return s.pages.List(ctx, opts)
}

// AutogeneratedSlug returns base when no sibling uses it, otherwise the
// first free base-N with N starting at 2.
func (s *service) AutogeneratedSlug(ctx context.Context, parentID uuid.UUID, base string, exclude uuid.UUID) (string, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return "", ErrSlugRequired
	}
	candidate := base
	for n := 2; n < 10000; n++ {
		taken, err := s.pages.SlugTaken(ctx, parentID, candidate, exclude)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
	return "", ErrSlugExhausted
}

func (s *service) variant(kind string) (Variant, error) {
	variant, ok := s.variants[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKindUnknown, kind)
	}
	return variant, nil
}

// fullClean runs the variant hooks and then validates the common columns.
// Nothing is written when it fails.
func (s *service) fullClean(ctx context.Context, variant Variant, content *Content) error {
	content.Page.Kind = variant.Kind()
	if err := variant.Clean(ctx, content, s); err != nil {
		return err
	}
	page := content.Page
	if page.DraftTitleDE == "" {
		page.DraftTitleDE = page.TitleDE
	}
	if page.DraftTitleCS == "" {
		page.DraftTitleCS = page.TitleCS
	}

	errs := validation.Errors{
		"title": validation.Validate(page.Title, validation.Required, validation.Length(1, 255)),
		"slug":  validation.Validate(page.Slug, validation.Required, validation.Length(1, 255), validation.By(validSlug)),
	}
	if page.ParentID != nil && errs["slug"] == nil {
		taken, err := s.pages.SlugTaken(ctx, *page.ParentID, page.Slug, page.ID)
		if err != nil {
			return err
		}
		if taken {
			errs["slug"] = validation.NewError("validation_slug_taken", "is already used by a sibling page")
		}
	}
	if err := errs.Filter(); err != nil {
		return lisvalidation.Wrap(err, "page validation failed", "PAGE_INVALID")
	}
	return nil
}

func (s *service) insertChild(ctx context.Context, parent, page *Page) (*Page, error) {
	siblings, err := s.pages.List(ctx, ListOptions{ParentID: &parent.ID})
	if err != nil {
		return nil, err
	}
	path, err := nextChildPath(parent.Path, siblings)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	page.ParentID = &parent.ID
	page.Path = path
	page.Depth = depthOf(path)
	page.NumChild = 0
	page.URLPath = urlPathFor(parent, page.Slug)
	if page.OriginalLanguage == "" {
		page.OriginalLanguage = string(i18n.Base)
	}
	page.CreatedAt = now
	page.UpdatedAt = now
	created, err := s.pages.Create(ctx, page)
	if err != nil {
		return nil, err
	}
	parent.NumChild++
	parent.UpdatedAt = now
	if err := s.pages.UpdateColumns(ctx, parent, "numchild", "updated_at"); err != nil {
		return nil, err
	}
	return created, nil
}

// materializeRevision decodes a revision onto the current live row.
func (s *service) materializeRevision(ctx context.Context, revision *Revision) (*Content, *Page, error) {
	live, err := s.pages.GetByID(ctx, revision.PageID)
	if err != nil {
		return nil, nil, err
	}
	variant, err := s.variant(live.Kind)
	if err != nil {
		return nil, nil, err
	}
	snapshot, data, err := decodeSnapshot(revision.Snapshot)
	if err != nil {
		return nil, nil, err
	}
	payload, err := variant.Decode(data)
	if err != nil {
		return nil, nil, err
	}
	var parent *Page
	if live.ParentID != nil {
		if parent, err = s.pages.GetByID(ctx, *live.ParentID); err != nil {
			return nil, nil, err
		}
	}
	return &Content{Page: Materialize(snapshot, live, parent), Payload: payload}, live, nil
}

func (s *service) rewriteDescendants(ctx context.Context, before, after *Page) error {
	descendants, err := s.pages.Descendants(ctx, before)
	if err != nil {
		return err
	}
	for _, descendant := range descendants {
		if descendant.ID == after.ID {
			continue
		}
		descendant.Path = after.Path + strings.TrimPrefix(descendant.Path, before.Path)
		descendant.Depth = depthOf(descendant.Path)
		descendant.URLPath = after.URLPath + strings.TrimPrefix(descendant.URLPath, before.URLPath)
		descendant.UpdatedAt = after.UpdatedAt
		if err := s.pages.UpdateColumns(ctx, descendant, "path", "depth", "url_path", "updated_at"); err != nil {
			return err
		}
	}
	return nil
}

// only one revision of a page may wait for its go-live time.
func (s *service) clearOtherSchedules(ctx context.Context, keep *Revision) error {
	revisions, err := s.pages.ListRevisions(ctx, keep.PageID)
	if err != nil {
		return err
	}
	for _, revision := range revisions {
		if revision.ID == keep.ID || revision.ApprovedGoLiveAt == nil {
			continue
		}
		revision.ApprovedGoLiveAt = nil
		if _, err := s.pages.UpdateRevision(ctx, revision); err != nil {
			return err
		}
	}
	return nil
}

// adoptTreePosition copies fields the editor cannot change from the live row.
func adoptTreePosition(page, live *Page) {
	page.Kind = live.Kind
	page.ParentID = cloneUUIDPtr(live.ParentID)
	page.Path = live.Path
	page.Depth = live.Depth
	page.NumChild = live.NumChild
	page.URLPath = live.URLPath
	page.Live = live.Live
	page.HasUnpublishedChanges = live.HasUnpublishedChanges
	page.OwnerID = cloneUUIDPtr(live.OwnerID)
	page.FirstPublishedAt = cloneTimePtr(live.FirstPublishedAt)
	page.LastPublishedAt = cloneTimePtr(live.LastPublishedAt)
	page.LiveRevisionID = cloneUUIDPtr(live.LiveRevisionID)
	page.CreatedAt = live.CreatedAt
}

func authorize(ctx context.Context, actor Actor, action permissions.Action) error {
	return permissions.Authorize(ctx, actor.Groups, permissions.ResourcePages, action)
}

func validSlug(value any) error {
	s, _ := value.(string)
	if s == "" || slug.IsValid(s) {
		return nil
	}
	return validation.NewError("validation_slug_invalid", "must contain only lowercase letters, digits and hyphens")
}

func actorLabel(actor Actor) string {
	if actor.ID == uuid.Nil {
		return ""
	}
	return actor.ID.String()
}

func mustStep(n int) string {
	step, err := encodeStep(n)
	if err != nil {
		panic(err)
	}
	return step
}
