package memorials

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type MemoryRepository struct {
	mu        sync.RWMutex
	memorials map[uuid.UUID]*Memorial
	authors   map[uuid.UUID][]uuid.UUID
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		memorials: make(map[uuid.UUID]*Memorial),
		authors:   make(map[uuid.UUID][]uuid.UUID),
	}
}

func (m *MemoryRepository) Get(_ context.Context, pageID uuid.UUID) (*Memorial, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	memorial, ok := m.memorials[pageID]
	if !ok {
		return nil, &NotFoundError{Resource: "memorial", Key: pageID.String()}
	}
	return memorial.clone(), nil
}

func (m *MemoryRepository) Save(_ context.Context, memorial *Memorial) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.memorials[memorial.PageID] = memorial.clone()
	return nil
}

func (m *MemoryRepository) SetAuthors(_ context.Context, memorialID uuid.UUID, authorIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authors[memorialID] = uniqueIDs(authorIDs)
	return nil
}

func (m *MemoryRepository) AuthorIDs(_ context.Context, memorialIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[uuid.UUID][]uuid.UUID, len(memorialIDs))
	for _, id := range memorialIDs {
		if ids := m.authors[id]; len(ids) > 0 {
			out[id] = append([]uuid.UUID(nil), ids...)
		}
	}
	return out, nil
}

func (m *MemoryRepository) MemorialIDs(_ context.Context, authorID uuid.UUID) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []uuid.UUID
	for memorialID, ids := range m.authors {
		for _, id := range ids {
			if id == authorID {
				out = append(out, memorialID)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}
