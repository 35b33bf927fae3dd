package media

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

type BunRepository struct {
	db *bun.DB
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

func (r *BunRepository) CreateImage(ctx context.Context, image *Image) (*Image, error) {
	if _, err := r.db.NewInsert().Model(image).Returning("id").Exec(ctx); err != nil {
		return nil, fmt.Errorf("media repository: create image: %w", err)
	}
	return image, nil
}

func (r *BunRepository) GetImage(ctx context.Context, id int64) (*Image, error) {
	image := new(Image)
	if err := r.db.NewSelect().Model(image).Where("?TableAlias.id = ?", id).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "image", ID: id}
		}
		return nil, fmt.Errorf("media repository: get image: %w", err)
	}
	return image, nil
}

func (r *BunRepository) DeleteImage(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().Model((*Image)(nil)).Where("?TableAlias.id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("media repository: delete image: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &NotFoundError{Resource: "image", ID: id}
	}
	return nil
}

func (r *BunRepository) CreateRendition(ctx context.Context, rendition *Rendition) (*Rendition, error) {
	if _, err := r.db.NewInsert().Model(rendition).Returning("id").Exec(ctx); err != nil {
		return nil, fmt.Errorf("media repository: create rendition: %w", err)
	}
	return rendition, nil
}

func (r *BunRepository) FindRendition(ctx context.Context, imageID int64, filterSpec, focalPointKey string) (*Rendition, error) {
	rendition := new(Rendition)
	err := r.db.NewSelect().
		Model(rendition).
		Where("?TableAlias.image_id = ?", imageID).
		Where("?TableAlias.filter_spec = ?", filterSpec).
		Where("?TableAlias.focal_point_key = ?", focalPointKey).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "rendition", ID: imageID}
		}
		return nil, fmt.Errorf("media repository: find rendition: %w", err)
	}
	return rendition, nil
}

func (r *BunRepository) ListRenditions(ctx context.Context) ([]*Rendition, error) {
	var renditions []*Rendition
	if err := r.db.NewSelect().Model(&renditions).OrderExpr("?TableAlias.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("media repository: list renditions: %w", err)
	}
	return renditions, nil
}

func (r *BunRepository) DeleteRenditions(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.db.NewDelete().
		Model((*Rendition)(nil)).
		Where("?TableAlias.id IN (?)", bun.In(ids)).
		Exec(ctx); err != nil {
		return fmt.Errorf("media repository: delete renditions: %w", err)
	}
	return nil
}

func (r *BunRepository) ImageIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var found []int64
	if err := r.db.NewSelect().
		Model((*Image)(nil)).
		Column("id").
		Where("?TableAlias.id IN (?)", bun.In(ids)).
		Scan(ctx, &found); err != nil {
		return nil, fmt.Errorf("media repository: image ids: %w", err)
	}
	for _, id := range found {
		out[id] = true
	}
	return out, nil
}
