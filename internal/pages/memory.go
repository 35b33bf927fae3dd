package pages

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryPageRepository is an in-memory page store for tests and tooling.
type MemoryPageRepository struct {
	mu        sync.RWMutex
	pages     map[uuid.UUID]*Page
	revisions map[uuid.UUID]*Revision
}

// NewMemoryPageRepository constructs the repository.
func NewMemoryPageRepository() *MemoryPageRepository {
	return &MemoryPageRepository{
		pages:     make(map[uuid.UUID]*Page),
		revisions: make(map[uuid.UUID]*Revision),
	}
}

func (m *MemoryPageRepository) Create(_ context.Context, record *Page) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.pages {
		if existing.Path == record.Path {
			return nil, fmt.Errorf("page repository: path %q already used", record.Path)
		}
	}
	m.pages[record.ID] = record.Clone()
	return record.Clone(), nil
}

func (m *MemoryPageRepository) GetByID(_ context.Context, id uuid.UUID) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	page, ok := m.pages[id]
	if !ok {
		return nil, pageNotFound(id)
	}
	return page.Clone(), nil
}

func (m *MemoryPageRepository) Update(_ context.Context, record *Page) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.pages[record.ID]
	if !ok {
		return nil, pageNotFound(record.ID)
	}
	updated := record.Clone()
	updated.CreatedAt = existing.CreatedAt
	m.pages[record.ID] = updated
	return updated.Clone(), nil
}

func (m *MemoryPageRepository) UpdateColumns(_ context.Context, record *Page, columns ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.pages[record.ID]
	if !ok {
		return pageNotFound(record.ID)
	}
	updated := existing.Clone()
	for _, column := range columns {
		setter, ok := columnSetters[column]
		if !ok {
			return fmt.Errorf("page repository: unknown column %q", column)
		}
		setter(updated, record)
	}
	m.pages[record.ID] = updated
	return nil
}

func (m *MemoryPageRepository) List(_ context.Context, opts ListOptions) ([]*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Page, 0, len(m.pages))
	for _, page := range m.pages {
		if opts.Kind != "" && page.Kind != opts.Kind {
			continue
		}
		if opts.ParentID != nil && parentIDOf(page) != *opts.ParentID {
			continue
		}
		if opts.LiveOnly && !page.Live {
			continue
		}
		out = append(out, page.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (m *MemoryPageRepository) Descendants(_ context.Context, page *Page) ([]*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Page
	for _, candidate := range m.pages {
		if candidate.ID != page.ID && strings.HasPrefix(candidate.Path, page.Path) {
			out = append(out, candidate.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (m *MemoryPageRepository) SlugTaken(_ context.Context, parentID uuid.UUID, slug string, exclude uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, page := range m.pages {
		if page.ID == exclude || parentIDOf(page) != parentID {
			continue
		}
		if page.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryPageRepository) CreateRevision(_ context.Context, revision *Revision) (*Revision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revisions[revision.ID] = revision.Clone()
	return revision.Clone(), nil
}

func (m *MemoryPageRepository) GetRevision(_ context.Context, id uuid.UUID) (*Revision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	revision, ok := m.revisions[id]
	if !ok {
		return nil, revisionNotFound(id)
	}
	return revision.Clone(), nil
}

func (m *MemoryPageRepository) UpdateRevision(_ context.Context, revision *Revision) (*Revision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.revisions[revision.ID]
	if !ok {
		return nil, revisionNotFound(revision.ID)
	}
	// revisions are append-only; only moderation metadata may change
	existing.SubmittedForModeration = revision.SubmittedForModeration
	existing.ApprovedGoLiveAt = cloneTimePtr(revision.ApprovedGoLiveAt)
	return existing.Clone(), nil
}

func (m *MemoryPageRepository) ListRevisions(_ context.Context, pageID uuid.UUID) ([]*Revision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Revision
	for _, revision := range m.revisions {
		if revision.PageID == pageID {
			out = append(out, revision.Clone())
		}
	}
	sortRevisionsNewestFirst(out)
	return out, nil
}

func (m *MemoryPageRepository) LatestRevision(ctx context.Context, pageID uuid.UUID) (*Revision, error) {
	revisions, err := m.ListRevisions(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if len(revisions) == 0 {
		return nil, &NotFoundError{Resource: "revision", Key: "latest:" + pageID.String()}
	}
	return revisions[0], nil
}

func (m *MemoryPageRepository) ScheduledRevisions(_ context.Context, now time.Time) ([]*Revision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Revision
	for _, revision := range m.revisions {
		if revision.ApprovedGoLiveAt != nil && !revision.ApprovedGoLiveAt.After(now) {
			out = append(out, revision.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ApprovedGoLiveAt.Before(*out[j].ApprovedGoLiveAt) })
	return out, nil
}

func sortRevisionsNewestFirst(revisions []*Revision) {
	sort.SliceStable(revisions, func(i, j int) bool {
		if revisions[i].CreatedAt.Equal(revisions[j].CreatedAt) {
			return revisions[i].ID.String() > revisions[j].ID.String()
		}
		return revisions[i].CreatedAt.After(revisions[j].CreatedAt)
	})
}

var columnSetters = map[string]func(dst, src *Page){
	"kind":                       func(d, s *Page) { d.Kind = s.Kind },
	"parent_id":                  func(d, s *Page) { d.ParentID = cloneUUIDPtr(s.ParentID) },
	"path":                       func(d, s *Page) { d.Path = s.Path },
	"depth":                      func(d, s *Page) { d.Depth = s.Depth },
	"numchild":                   func(d, s *Page) { d.NumChild = s.NumChild },
	"url_path":                   func(d, s *Page) { d.URLPath = s.URLPath },
	"slug":                       func(d, s *Page) { d.Slug = s.Slug },
	"title":                      func(d, s *Page) { d.Title = s.Title },
	"title_de":                   func(d, s *Page) { d.TitleDE = s.TitleDE },
	"title_cs":                   func(d, s *Page) { d.TitleCS = s.TitleCS },
	"draft_title":                func(d, s *Page) { d.DraftTitle = s.DraftTitle },
	"draft_title_de":             func(d, s *Page) { d.DraftTitleDE = s.DraftTitleDE },
	"draft_title_cs":             func(d, s *Page) { d.DraftTitleCS = s.DraftTitleCS },
	"live":                       func(d, s *Page) { d.Live = s.Live },
	"has_unpublished_changes":    func(d, s *Page) { d.HasUnpublishedChanges = s.HasUnpublishedChanges },
	"locked":                     func(d, s *Page) { d.Locked = s.Locked },
	"owner_id":                   func(d, s *Page) { d.OwnerID = cloneUUIDPtr(s.OwnerID) },
	"editor_id":                  func(d, s *Page) { d.EditorID = cloneUUIDPtr(s.EditorID) },
	"original_language":          func(d, s *Page) { d.OriginalLanguage = s.OriginalLanguage },
	"latest_revision_created_at": func(d, s *Page) { d.LatestRevisionCreatedAt = cloneTimePtr(s.LatestRevisionCreatedAt) },
	"first_published_at":         func(d, s *Page) { d.FirstPublishedAt = cloneTimePtr(s.FirstPublishedAt) },
	"last_published_at":          func(d, s *Page) { d.LastPublishedAt = cloneTimePtr(s.LastPublishedAt) },
	"live_revision_id":           func(d, s *Page) { d.LiveRevisionID = cloneUUIDPtr(s.LiveRevisionID) },
	"updated_at":                 func(d, s *Page) { d.UpdatedAt = s.UpdatedAt },
}
