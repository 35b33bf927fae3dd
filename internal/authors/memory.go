package authors

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type MemoryRepository struct {
	mu      sync.RWMutex
	authors map[uuid.UUID]*Author
	names   map[uuid.UUID][]*Name
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		authors: make(map[uuid.UUID]*Author),
		names:   make(map[uuid.UUID][]*Name),
	}
}

func (m *MemoryRepository) Get(_ context.Context, pageID uuid.UUID) (*Author, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	author, ok := m.authors[pageID]
	if !ok {
		return nil, &NotFoundError{Resource: "author", Key: pageID.String()}
	}
	return cloneAuthor(author), nil
}

func (m *MemoryRepository) Save(_ context.Context, author *Author) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := cloneAuthor(author)
	stored.Names = nil
	m.authors[author.PageID] = stored
	return nil
}

func (m *MemoryRepository) Names(_ context.Context, authorID uuid.UUID) ([]*Name, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneNames(m.names[authorID]), nil
}

func (m *MemoryRepository) NamesFor(_ context.Context, authorIDs []uuid.UUID) (map[uuid.UUID][]*Name, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[uuid.UUID][]*Name, len(authorIDs))
	for _, id := range authorIDs {
		if names := m.names[id]; len(names) > 0 {
			out[id] = cloneNames(names)
		}
	}
	return out, nil
}

func (m *MemoryRepository) ReplaceNames(_ context.Context, authorID uuid.UUID, names []*Name) ([]*Name, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := prepareNames(authorID, names, uuid.New)
	m.names[authorID] = stored
	return cloneNames(stored), nil
}

func cloneAuthor(a *Author) *Author {
	cloned := *a
	cloned.LanguageIDs = append([]int64(nil), a.LanguageIDs...)
	cloned.GenreIDs = append([]int64(nil), a.GenreIDs...)
	cloned.PeriodIDs = append([]int64(nil), a.PeriodIDs...)
	return &cloned
}

func cloneNames(names []*Name) []*Name {
	out := make([]*Name, 0, len(names))
	for _, name := range names {
		out = append(out, name.clone())
	}
	sortNames(out)
	return out
}
