package pages

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// modelHandlers wires go-repository-bun to a uuid keyed model. Pages are
// addressed by path; revisions have no natural identifier.
func modelHandlers[T any](newRecord func() T, key func(T) *uuid.UUID, identifier string, value func(T) string) repository.ModelHandlers[T] {
	if value == nil {
		value = func(T) string { return "" }
	}
	return repository.ModelHandlers[T]{
		NewRecord:          newRecord,
		GetID:              func(record T) uuid.UUID { return *key(record) },
		SetID:              func(record T, id uuid.UUID) { *key(record) = id },
		GetIdentifier:      func() string { return identifier },
		GetIdentifierValue: value,
	}
}

func NewPageRepository(db *bun.DB) repository.Repository[*Page] {
	return repository.MustNewRepository(db, modelHandlers(
		func() *Page { return &Page{} },
		func(p *Page) *uuid.UUID { return &p.ID },
		"path",
		func(p *Page) string { return p.Path },
	))
}

func NewRevisionRepository(db *bun.DB) repository.Repository[*Revision] {
	return repository.MustNewRepository(db, modelHandlers(
		func() *Revision { return &Revision{} },
		func(r *Revision) *uuid.UUID { return &r.ID },
		"",
		nil,
	))
}

type BunPageRepository struct {
	db        *bun.DB
	repo      repository.Repository[*Page]
	revisions repository.Repository[*Revision]
}

func NewBunPageRepository(db *bun.DB) *BunPageRepository {
	return NewBunPageRepositoryWithCache(db, nil, nil)
}

// NewBunPageRepositoryWithCache constructs a PageRepository backed by bun with optional caching.
// Revisions are never cached.
func NewBunPageRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunPageRepository {
	return &BunPageRepository{
		db:        db,
		repo:      wrapWithCache(NewPageRepository(db), cacheService, keySerializer),
		revisions: NewRevisionRepository(db),
	}
}

func (r *BunPageRepository) Create(ctx context.Context, record *Page) (*Page, error) {
	return r.repo.Create(ctx, record)
}

func (r *BunPageRepository) GetByID(ctx context.Context, id uuid.UUID) (*Page, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "page", id.String())
	}
	return result, nil
}

func (r *BunPageRepository) Update(ctx context.Context, record *Page) (*Page, error) {
	updated, err := r.repo.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns(pageColumns...),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "page", record.ID.String())
	}
	return updated, nil
}

func (r *BunPageRepository) UpdateColumns(ctx context.Context, record *Page, columns ...string) error {
	if len(columns) == 0 {
		return nil
	}
	_, err := r.repo.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns(columns...),
	)
	return mapRepositoryError(err, "page", record.ID.String())
}

func (r *BunPageRepository) List(ctx context.Context, opts ListOptions) ([]*Page, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			if opts.Kind != "" {
				q = q.Where("?TableAlias.kind = ?", opts.Kind)
			}
			if opts.ParentID != nil {
				q = q.Where("?TableAlias.parent_id = ?", *opts.ParentID)
			}
			if opts.LiveOnly {
				q = q.Where("?TableAlias.live = ?", true)
			}
			return q.OrderExpr("?TableAlias.path ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("page repository: list: %w", err)
	}
	return records, nil
}

func (r *BunPageRepository) Descendants(ctx context.Context, page *Page) ([]*Page, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.path LIKE ?", page.Path+"%").
				Where("?TableAlias.id <> ?", page.ID).
				OrderExpr("?TableAlias.path ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("page repository: descendants: %w", err)
	}
	return records, nil
}

func (r *BunPageRepository) SlugTaken(ctx context.Context, parentID uuid.UUID, slug string, exclude uuid.UUID) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*Page)(nil)).
		Where("?TableAlias.parent_id = ?", parentID).
		Where("?TableAlias.slug = ?", slug).
		Where("?TableAlias.id <> ?", exclude).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("page repository: slug lookup: %w", err)
	}
	return exists, nil
}

func (r *BunPageRepository) CreateRevision(ctx context.Context, revision *Revision) (*Revision, error) {
	return r.revisions.Create(ctx, revision)
}

func (r *BunPageRepository) GetRevision(ctx context.Context, id uuid.UUID) (*Revision, error) {
	result, err := r.revisions.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "revision", id.String())
	}
	return result, nil
}

func (r *BunPageRepository) UpdateRevision(ctx context.Context, revision *Revision) (*Revision, error) {
	updated, err := r.revisions.Update(ctx, revision,
		repository.UpdateByID(revision.ID.String()),
		repository.UpdateColumns("submitted_for_moderation", "approved_go_live_at"),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "revision", revision.ID.String())
	}
	return updated, nil
}

func (r *BunPageRepository) ListRevisions(ctx context.Context, pageID uuid.UUID) ([]*Revision, error) {
	records, _, err := r.revisions.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.page_id = ?", pageID).
				OrderExpr("?TableAlias.created_at DESC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("revision repository: list: %w", err)
	}
	sortRevisionsNewestFirst(records)
	return records, nil
}

func (r *BunPageRepository) LatestRevision(ctx context.Context, pageID uuid.UUID) (*Revision, error) {
	records, err := r.ListRevisions(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "revision", Key: "latest:" + pageID.String()}
	}
	return records[0], nil
}

func (r *BunPageRepository) ScheduledRevisions(ctx context.Context, now time.Time) ([]*Revision, error) {
	records, _, err := r.revisions.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.approved_go_live_at IS NOT NULL").
				Where("?TableAlias.approved_go_live_at <= ?", now).
				OrderExpr("?TableAlias.approved_go_live_at ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("revision repository: scheduled: %w", err)
	}
	return records, nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
