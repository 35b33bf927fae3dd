package authors

import (
	"context"
	"sort"

	"github.com/google/uuid"
)

// Repository persists the author variant rows and their names.
type Repository interface {
	Get(ctx context.Context, pageID uuid.UUID) (*Author, error)
	// Save inserts or replaces the variant row.
	Save(ctx context.Context, author *Author) error
	// Names returns the names of an author in sort order.
	Names(ctx context.Context, authorID uuid.UUID) ([]*Name, error)
	NamesFor(ctx context.Context, authorIDs []uuid.UUID) (map[uuid.UUID][]*Name, error)
	// ReplaceNames stores names as the complete ordered list of the author.
	ReplaceNames(ctx context.Context, authorID uuid.UUID, names []*Name) ([]*Name, error)
}

func sortNames(names []*Name) {
	sort.SliceStable(names, func(i, j int) bool {
		return names[i].SortOrder < names[j].SortOrder
	})
}

// prepareNames assigns ids, owner and sort order in slice order.
func prepareNames(authorID uuid.UUID, names []*Name, newID func() uuid.UUID) []*Name {
	out := make([]*Name, 0, len(names))
	for i, name := range names {
		if name == nil {
			continue
		}
		stored := name.clone()
		if stored.ID == uuid.Nil {
			stored.ID = newID()
		}
		stored.AuthorID = authorID
		stored.SortOrder = i
		out = append(out, stored)
	}
	return out
}
