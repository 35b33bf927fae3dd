package media

import (
	"context"
	"sort"
	"sync"
)

type MemoryRepository struct {
	mu         sync.RWMutex
	nextID     int64
	images     map[int64]*Image
	renditions map[int64]*Rendition
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		images:     make(map[int64]*Image),
		renditions: make(map[int64]*Rendition),
	}
}

func (m *MemoryRepository) CreateImage(_ context.Context, image *Image) (*Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	stored := *image
	stored.ID = m.nextID
	m.images[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *MemoryRepository) GetImage(_ context.Context, id int64) (*Image, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	image, ok := m.images[id]
	if !ok {
		return nil, &NotFoundError{Resource: "image", ID: id}
	}
	out := *image
	return &out, nil
}

// DeleteImage removes the image and leaves its renditions behind, like a
// database without cascading deletes.
func (m *MemoryRepository) DeleteImage(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.images[id]; !ok {
		return &NotFoundError{Resource: "image", ID: id}
	}
	delete(m.images, id)
	return nil
}

func (m *MemoryRepository) CreateRendition(_ context.Context, rendition *Rendition) (*Rendition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	stored := *rendition
	stored.ID = m.nextID
	m.renditions[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (m *MemoryRepository) FindRendition(_ context.Context, imageID int64, filterSpec, focalPointKey string) (*Rendition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rendition := range m.renditions {
		if rendition.ImageID == imageID && rendition.FilterSpec == filterSpec && rendition.FocalPointKey == focalPointKey {
			out := *rendition
			return &out, nil
		}
	}
	return nil, &NotFoundError{Resource: "rendition", ID: imageID}
}

func (m *MemoryRepository) ListRenditions(_ context.Context) ([]*Rendition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Rendition, 0, len(m.renditions))
	for _, rendition := range m.renditions {
		copied := *rendition
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryRepository) DeleteRenditions(_ context.Context, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.renditions, id)
	}
	return nil
}

func (m *MemoryRepository) ImageIDs(_ context.Context, ids []int64) (map[int64]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if _, ok := m.images[id]; ok {
			out[id] = true
		}
	}
	return out, nil
}
