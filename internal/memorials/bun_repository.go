package memorials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var memorialColumns = []string{
	"title_image_id", "lon", "lat",
	"address", "address_de", "address_cs",
	"contact_info", "contact_info_de", "contact_info_cs",
	"directions", "directions_de", "directions_cs",
	"introduction", "introduction_de", "introduction_cs",
	"description", "description_de", "description_cs",
	"detailed_description", "detailed_description_de", "detailed_description_cs",
	"search_text", "search_text_de", "search_text_cs",
}

type BunRepository struct {
	db *bun.DB
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

func (r *BunRepository) Get(ctx context.Context, pageID uuid.UUID) (*Memorial, error) {
	memorial := new(Memorial)
	if err := r.db.NewSelect().Model(memorial).Where("?TableAlias.page_id = ?", pageID).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "memorial", Key: pageID.String()}
		}
		return nil, fmt.Errorf("memorial repository: get: %w", err)
	}
	return memorial, nil
}

func (r *BunRepository) Save(ctx context.Context, memorial *Memorial) error {
	q := r.db.NewInsert().Model(memorial).On("CONFLICT (page_id) DO UPDATE")
	for _, column := range memorialColumns {
		q = q.Set("? = EXCLUDED.?", bun.Ident(column), bun.Ident(column))
	}
	if _, err := q.Exec(ctx); err != nil {
		return fmt.Errorf("memorial repository: save: %w", err)
	}
	return nil
}

func (r *BunRepository) SetAuthors(ctx context.Context, memorialID uuid.UUID, authorIDs []uuid.UUID) error {
	ids := uniqueIDs(authorIDs)
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*MemorialAuthor)(nil)).
			Where("?TableAlias.memorial_id = ?", memorialID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete memorial authors: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}
		links := make([]*MemorialAuthor, 0, len(ids))
		for i, id := range ids {
			links = append(links, &MemorialAuthor{MemorialID: memorialID, AuthorID: id, SortOrder: i})
		}
		if _, err := tx.NewInsert().Model(&links).Exec(ctx); err != nil {
			return fmt.Errorf("insert memorial authors: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("memorial repository: %w", err)
	}
	return nil
}

func (r *BunRepository) AuthorIDs(ctx context.Context, memorialIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	out := make(map[uuid.UUID][]uuid.UUID, len(memorialIDs))
	if len(memorialIDs) == 0 {
		return out, nil
	}
	var links []*MemorialAuthor
	if err := r.db.NewSelect().
		Model(&links).
		Where("?TableAlias.memorial_id IN (?)", bun.In(memorialIDs)).
		OrderExpr("?TableAlias.sort_order ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("memorial repository: authors: %w", err)
	}
	for _, link := range links {
		out[link.MemorialID] = append(out[link.MemorialID], link.AuthorID)
	}
	return out, nil
}

func (r *BunRepository) MemorialIDs(ctx context.Context, authorID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.NewSelect().
		Model((*MemorialAuthor)(nil)).
		Column("memorial_id").
		Where("?TableAlias.author_id = ?", authorID).
		OrderExpr("?TableAlias.memorial_id ASC").
		Scan(ctx, &ids); err != nil {
		return nil, fmt.Errorf("memorial repository: memorials of author: %w", err)
	}
	return ids, nil
}
