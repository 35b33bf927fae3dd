package tags

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-lis/internal/i18n"
	"github.com/google/uuid"
)

// MemoryRepository keeps tags in process. It is used by tests and the
// in-memory module.
type MemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	tags   map[int64]*Tag
	pages  map[uuid.UUID]map[int64]struct{}
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		tags:  make(map[int64]*Tag),
		pages: make(map[uuid.UUID]map[int64]struct{}),
	}
}

func (m *MemoryRepository) Create(_ context.Context, tag *Tag) (*Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	stored := tag.clone()
	stored.ID = m.nextID
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	m.tags[stored.ID] = stored
	return stored.clone(), nil
}

func (m *MemoryRepository) Update(_ context.Context, tag *Tag) (*Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.tags[tag.ID]
	if !ok {
		return nil, &NotFoundError{ID: tag.ID}
	}
	stored := tag.clone()
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now().UTC()
	m.tags[stored.ID] = stored
	return stored.clone(), nil
}

func (m *MemoryRepository) GetByID(_ context.Context, id int64) (*Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tag, ok := m.tags[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return tag.clone(), nil
}

func (m *MemoryRepository) List(_ context.Context, opts ListOptions) ([]*Tag, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var wanted map[int64]struct{}
	if len(opts.IDs) > 0 {
		wanted = make(map[int64]struct{}, len(opts.IDs))
		for _, id := range opts.IDs {
			wanted[id] = struct{}{}
		}
	}
	needle := strings.ToLower(strings.TrimSpace(opts.Search))

	matched := make([]*Tag, 0, len(m.tags))
	for _, tag := range m.tags {
		if opts.Kind != "" && tag.Kind != opts.Kind {
			continue
		}
		if wanted != nil {
			if _, ok := wanted[tag.ID]; !ok {
				continue
			}
		}
		if needle != "" && !titleContains(tag, needle) {
			continue
		}
		matched = append(matched, tag.clone())
	}

	sortTags(matched, opts)
	total := len(matched)
	return paginate(matched, opts.Limit, opts.Offset), total, nil
}

func (m *MemoryRepository) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tags[id]; !ok {
		return &NotFoundError{ID: id}
	}
	delete(m.tags, id)
	for _, attached := range m.pages {
		delete(attached, id)
	}
	return nil
}

func (m *MemoryRepository) TitleTaken(_ context.Context, kind Kind, lang i18n.Language, title string, exclude int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, tag := range m.tags {
		if tag.Kind != kind || tag.ID == exclude {
			continue
		}
		if tag.Titles().In(lang) == title {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryRepository) SetPageTags(_ context.Context, pageID uuid.UUID, kind Kind, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	attached := m.pages[pageID]
	if attached == nil {
		attached = make(map[int64]struct{})
		m.pages[pageID] = attached
	}
	for id := range attached {
		if tag, ok := m.tags[id]; ok && tag.Kind == kind {
			delete(attached, id)
		}
	}
	for _, id := range ids {
		tag, ok := m.tags[id]
		if !ok {
			return &NotFoundError{ID: id}
		}
		if tag.Kind != kind {
			return ErrKindMismatch
		}
		attached[id] = struct{}{}
	}
	return nil
}

func (m *MemoryRepository) PageTags(_ context.Context, pageIDs []uuid.UUID, kind Kind) (map[uuid.UUID][]*Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[uuid.UUID][]*Tag, len(pageIDs))
	for _, pageID := range pageIDs {
		for id := range m.pages[pageID] {
			tag, ok := m.tags[id]
			if !ok || tag.Kind != kind {
				continue
			}
			out[pageID] = append(out[pageID], tag.clone())
		}
		sortTags(out[pageID], ListOptions{Kind: kind})
	}
	return out, nil
}

func titleContains(tag *Tag, needle string) bool {
	for _, title := range []string{tag.Title, tag.TitleDE, tag.TitleCS} {
		if strings.Contains(strings.ToLower(title), needle) {
			return true
		}
	}
	return false
}

func sortTags(list []*Tag, opts ListOptions) {
	fields := opts.Sort
	if len(fields) == 0 {
		fields = defaultSort(opts.Kind)
	}
	lang := opts.Language
	if lang == "" {
		lang = i18n.Base
	}
	sort.SliceStable(list, func(i, j int) bool {
		for _, field := range fields {
			cmp := compareField(list[i], list[j], field.Field, lang)
			if cmp == 0 {
				continue
			}
			if field.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return list[i].ID < list[j].ID
	})
}

func compareField(a, b *Tag, field string, lang i18n.Language) int {
	switch field {
	case "name":
		return strings.Compare(a.DisplayTitle(lang), b.DisplayTitle(lang))
	case "sort_order":
		return compareOrder(a.SortOrder, b.SortOrder)
	case "id":
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
	}
	return 0
}

// nil orders sort last
func compareOrder(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}

func paginate(list []*Tag, limit, offset int) []*Tag {
	if offset >= len(list) {
		return []*Tag{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
