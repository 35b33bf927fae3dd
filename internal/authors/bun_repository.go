package authors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var authorColumns = []string{
	"gender",
	"date_of_birth_year", "date_of_birth_month", "date_of_birth_day",
	"date_of_death_year", "date_of_death_month", "date_of_death_day",
	"place_of_birth", "place_of_birth_de", "place_of_birth_cs",
	"place_of_death", "place_of_death_de", "place_of_death_cs",
	"title_image_id",
}

func NewNameRepository(db *bun.DB) repository.Repository[*Name] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Name]{
		NewRecord: func() *Name { return &Name{} },
		GetID: func(n *Name) uuid.UUID {
			return n.ID
		},
		SetID: func(n *Name, id uuid.UUID) {
			n.ID = id
		},
		GetIdentifier: func() string {
			return ""
		},
		GetIdentifierValue: func(*Name) string {
			return ""
		},
	})
}

type BunRepository struct {
	db    *bun.DB
	names repository.Repository[*Name]
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db, names: NewNameRepository(db)}
}

func (r *BunRepository) Get(ctx context.Context, pageID uuid.UUID) (*Author, error) {
	author := new(Author)
	if err := r.db.NewSelect().Model(author).Where("?TableAlias.page_id = ?", pageID).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "author", Key: pageID.String()}
		}
		return nil, fmt.Errorf("author repository: get: %w", err)
	}
	return author, nil
}

func (r *BunRepository) Save(ctx context.Context, author *Author) error {
	q := r.db.NewInsert().Model(author).On("CONFLICT (page_id) DO UPDATE")
	for _, column := range authorColumns {
		q = q.Set("? = EXCLUDED.?", bun.Ident(column), bun.Ident(column))
	}
	if _, err := q.Exec(ctx); err != nil {
		return fmt.Errorf("author repository: save: %w", err)
	}
	return nil
}

func (r *BunRepository) Names(ctx context.Context, authorID uuid.UUID) ([]*Name, error) {
	byAuthor, err := r.NamesFor(ctx, []uuid.UUID{authorID})
	if err != nil {
		return nil, err
	}
	return byAuthor[authorID], nil
}

func (r *BunRepository) NamesFor(ctx context.Context, authorIDs []uuid.UUID) (map[uuid.UUID][]*Name, error) {
	out := make(map[uuid.UUID][]*Name, len(authorIDs))
	if len(authorIDs) == 0 {
		return out, nil
	}
	records, _, err := r.names.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.author_id IN (?)", bun.In(authorIDs)).
				OrderExpr("?TableAlias.sort_order ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("author name repository: list: %w", err)
	}
	for _, record := range records {
		out[record.AuthorID] = append(out[record.AuthorID], record)
	}
	for id := range out {
		sortNames(out[id])
	}
	return out, nil
}

func (r *BunRepository) ReplaceNames(ctx context.Context, authorID uuid.UUID, names []*Name) ([]*Name, error) {
	stored := prepareNames(authorID, names, uuid.New)
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*Name)(nil)).
			Where("?TableAlias.author_id = ?", authorID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete author names: %w", err)
		}
		if len(stored) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&stored).Exec(ctx); err != nil {
			return fmt.Errorf("insert author names: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("author name repository: %w", err)
	}
	return stored, nil
}
