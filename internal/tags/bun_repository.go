package tags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-lis/internal/i18n"
	"github.com/goliatone/go-lis/internal/query"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunRepository stores tags with integer ids, which the generic uuid keyed
// repositories cannot address, so it talks to bun directly.
type BunRepository struct {
	db *bun.DB
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

func (r *BunRepository) Create(ctx context.Context, tag *Tag) (*Tag, error) {
	record := tag.clone()
	record.ID = 0
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	if _, err := r.db.NewInsert().Model(record).Returning("id").Exec(ctx); err != nil {
		return nil, fmt.Errorf("tags: insert: %w", err)
	}
	return record, nil
}

func (r *BunRepository) Update(ctx context.Context, tag *Tag) (*Tag, error) {
	record := tag.clone()
	record.UpdatedAt = time.Now().UTC()
	res, err := r.db.NewUpdate().
		Model(record).
		Column("title", "title_de", "title_cs", "description", "description_de", "description_cs", "sort_order", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("tags: update: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, &NotFoundError{ID: tag.ID}
	}
	return r.GetByID(ctx, tag.ID)
}

func (r *BunRepository) GetByID(ctx context.Context, id int64) (*Tag, error) {
	tag := new(Tag)
	err := r.db.NewSelect().Model(tag).Where("?TableAlias.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("tags: get: %w", err)
	}
	return tag, nil
}

func (r *BunRepository) List(ctx context.Context, opts ListOptions) ([]*Tag, int, error) {
	var records []*Tag
	q := r.db.NewSelect().Model(&records)
	if opts.Kind != "" {
		q = q.Where("?TableAlias.kind = ?", opts.Kind)
	}
	if len(opts.IDs) > 0 {
		q = q.Where("?TableAlias.id IN (?)", bun.In(opts.IDs))
	}
	if pattern, ok := query.Contains(opts.Search); ok {
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("LOWER(?TableAlias.title) LIKE ?"+query.LikeEscape, pattern).
				WhereOr("LOWER(?TableAlias.title_de) LIKE ?"+query.LikeEscape, pattern).
				WhereOr("LOWER(?TableAlias.title_cs) LIKE ?"+query.LikeEscape, pattern)
		})
	}

	fields := opts.Sort
	if len(fields) == 0 {
		fields = defaultSort(opts.Kind)
	}
	for _, field := range fields {
		q = applyOrder(q, field.Field, field.Desc, opts.Language)
	}
	q = q.OrderExpr("?TableAlias.id ASC")

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("tags: list: %w", err)
	}
	return records, total, nil
}

func (r *BunRepository) Delete(ctx context.Context, id int64) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*PageTag)(nil)).
			Where("?TableAlias.tag_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("tags: delete attachments: %w", err)
		}
		res, err := tx.NewDelete().
			Model((*Tag)(nil)).
			Where("?TableAlias.id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("tags: delete: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return &NotFoundError{ID: id}
		}
		return nil
	})
}

func (r *BunRepository) TitleTaken(ctx context.Context, kind Kind, lang i18n.Language, title string, exclude int64) (bool, error) {
	return r.db.NewSelect().
		Model((*Tag)(nil)).
		Where("?TableAlias.kind = ?", kind).
		Where("?TableAlias.? = ?", bun.Ident(lang.Column("title")), title).
		Where("?TableAlias.id <> ?", exclude).
		Exists(ctx)
}

func (r *BunRepository) SetPageTags(ctx context.Context, pageID uuid.UUID, kind Kind, ids []int64) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if len(ids) > 0 {
			count, err := tx.NewSelect().
				Model((*Tag)(nil)).
				Where("?TableAlias.id IN (?)", bun.In(ids)).
				Where("?TableAlias.kind = ?", kind).
				Count(ctx)
			if err != nil {
				return fmt.Errorf("tags: check attachments: %w", err)
			}
			if count != len(uniqueIDs(ids)) {
				return ErrKindMismatch
			}
		}

		if _, err := tx.NewDelete().
			Model((*PageTag)(nil)).
			Where("?TableAlias.page_id = ?", pageID).
			Where("?TableAlias.tag_id IN (?)", tx.NewSelect().Model((*Tag)(nil)).Column("id").Where("kind = ?", kind)).
			Exec(ctx); err != nil {
			return fmt.Errorf("tags: clear attachments: %w", err)
		}

		unique := uniqueIDs(ids)
		if len(unique) == 0 {
			return nil
		}
		rows := make([]PageTag, 0, len(unique))
		for _, id := range unique {
			rows = append(rows, PageTag{PageID: pageID, TagID: id})
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("tags: attach: %w", err)
		}
		return nil
	})
}

func (r *BunRepository) PageTags(ctx context.Context, pageIDs []uuid.UUID, kind Kind) (map[uuid.UUID][]*Tag, error) {
	out := make(map[uuid.UUID][]*Tag, len(pageIDs))
	if len(pageIDs) == 0 {
		return out, nil
	}
	var links []PageTag
	if err := r.db.NewSelect().
		Model(&links).
		Where("?TableAlias.page_id IN (?)", bun.In(pageIDs)).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("tags: page tags: %w", err)
	}
	if len(links) == 0 {
		return out, nil
	}
	ids := make([]int64, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.TagID)
	}
	tags, _, err := r.List(ctx, ListOptions{Kind: kind, IDs: uniqueIDs(ids)})
	if err != nil {
		return nil, err
	}
	// walk tags in vocabulary order so every page list is sorted
	for _, tag := range tags {
		for _, link := range links {
			if link.TagID == tag.ID {
				out[link.PageID] = append(out[link.PageID], tag)
			}
		}
	}
	return out, nil
}

func applyOrder(q *bun.SelectQuery, field string, desc bool, lang i18n.Language) *bun.SelectQuery {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	switch field {
	case "name":
		if lang == "" {
			lang = i18n.Base
		}
		return q.OrderExpr(lang.ColumnExpr("t", "title") + " " + dir)
	case "sort_order":
		return q.OrderExpr("t.sort_order IS NULL").OrderExpr("t.sort_order " + dir)
	case "id":
		return q.OrderExpr("t.id " + dir)
	}
	return q
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
