package memorials

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists memorial rows and their remembered authors.
type Repository interface {
	Get(ctx context.Context, pageID uuid.UUID) (*Memorial, error)
	// Save inserts or replaces the variant row.
	Save(ctx context.Context, memorial *Memorial) error
	// SetAuthors replaces the remembered authors, keeping their order.
	SetAuthors(ctx context.Context, memorialID uuid.UUID, authorIDs []uuid.UUID) error
	AuthorIDs(ctx context.Context, memorialIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error)
	// MemorialIDs lists the memorials remembering an author.
	MemorialIDs(ctx context.Context, authorID uuid.UUID) ([]uuid.UUID, error)
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == uuid.Nil {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
