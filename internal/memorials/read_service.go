package memorials

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-lis/internal/geo"
	"github.com/goliatone/go-lis/internal/i18n"
	"github.com/goliatone/go-lis/internal/pages"
	"github.com/goliatone/go-lis/internal/query"
	"github.com/goliatone/go-lis/internal/tags"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/uptrace/bun"
)

// SortFields are the orderings the memorial listing accepts.
var SortFields = []string{"name"}

// Near selects memorials within Meters of Center.
type Near struct {
	Center orb.Point
	Meters float64
}

// ListOptions selects memorials for the public listing.
type ListOptions struct {
	IDs             []uuid.UUID
	AuthorIDs       []uuid.UUID
	MemorialTypeIDs []int64
	BBox            *orb.Bound
	Near            *Near
	Search          string
	Language        i18n.Language
	Sort            []query.SortField
	Limit           int
	Offset          int
	IncludeDrafts   bool
}

// Record is a hydrated memorial for read surfaces.
type Record struct {
	Page          *pages.Page
	Memorial      *Memorial
	MemorialTypes []*tags.Tag
}

// ListResult is one page of memorials with the envelope of its points.
type ListResult struct {
	Records []*Record
	Total   int
	BBox    orb.Bound
}

type ReadService interface {
	List(ctx context.Context, opts ListOptions) (*ListResult, error)
	Get(ctx context.Context, id uuid.UUID, includeDrafts bool) (*Record, error)
}

func NewDBReadService(db *bun.DB, repo Repository, tagStore TagStore) ReadService {
	return &dbReadService{db: db, repo: repo, tags: tagStore}
}

type dbReadService struct {
	db   *bun.DB
	repo Repository
	tags TagStore
}

func (s *dbReadService) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	if s.db == nil {
		return nil, errors.New("memorials: read service requires database")
	}
	if opts.Language == "" {
		opts.Language = i18n.LanguageFrom(ctx)
	}
	countQuery := s.newQuery()
	applyFilters(countQuery, opts)
	total, err := countQuery.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("memorials: count: %w", err)
	}

	listQuery := s.newQuery().ColumnExpr("p.id")
	applyFilters(listQuery, opts)
	applySort(listQuery, opts)
	if opts.Limit > 0 {
		listQuery.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		listQuery.Offset(opts.Offset)
	}
	var ids []uuid.UUID
	if err := listQuery.Scan(ctx, &ids); err != nil {
		return nil, fmt.Errorf("memorials: list: %w", err)
	}
	records, err := s.hydrate(ctx, ids)
	if err != nil {
		return nil, err
	}

	points := make([]orb.Point, 0, len(records))
	for _, record := range records {
		if point, ok := record.Memorial.Point(); ok {
			points = append(points, point)
		}
	}
	return &ListResult{Records: records, Total: total, BBox: geo.Envelope(points)}, nil
}

func (s *dbReadService) Get(ctx context.Context, id uuid.UUID, includeDrafts bool) (*Record, error) {
	result, err := s.List(ctx, ListOptions{IDs: []uuid.UUID{id}, IncludeDrafts: includeDrafts, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		return nil, &NotFoundError{Resource: "memorial", Key: id.String()}
	}
	return result.Records[0], nil
}

func (s *dbReadService) newQuery() *bun.SelectQuery {
	return s.db.NewSelect().
		TableExpr("pages AS p").
		Join("JOIN memorials AS m ON m.page_id = p.id").
		Where("p.kind = ?", pages.KindMemorial)
}

func applyFilters(q *bun.SelectQuery, opts ListOptions) {
	if !opts.IncludeDrafts {
		q.Where("p.live = ?", true)
	}
	if len(opts.IDs) > 0 {
		q.Where("p.id IN (?)", bun.In(opts.IDs))
	}
	if len(opts.AuthorIDs) > 0 {
		q.Where("EXISTS (SELECT 1 FROM memorial_authors AS ma WHERE ma.memorial_id = p.id AND ma.author_id IN (?))", bun.In(opts.AuthorIDs))
	}
	if len(opts.MemorialTypeIDs) > 0 {
		q.Where("EXISTS (SELECT 1 FROM page_tags AS ptg JOIN tags AS t ON t.id = ptg.tag_id WHERE ptg.page_id = p.id AND t.kind = ? AND ptg.tag_id IN (?))",
			tags.KindMemorialType, bun.In(opts.MemorialTypeIDs))
	}
	if opts.BBox != nil {
		withinBound(q, *opts.BBox)
	}
	if opts.Near != nil {
		center := opts.Near.Center
		degrees := geo.DistanceToDegrees(opts.Near.Meters, center.Lat())
		withinBound(q, geo.RadiusBound(center, degrees))
		q.Where("((m.lon - ?) * (m.lon - ?) + (m.lat - ?) * (m.lat - ?)) <= ?",
			center.Lon(), center.Lon(), center.Lat(), center.Lat(), degrees*degrees)
	}
	if pattern, ok := query.Contains(opts.Search); ok {
		lang := opts.Language
		q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("LOWER("+lang.ColumnExpr("p", "title")+") LIKE ?"+query.LikeEscape, pattern).
				WhereOr("LOWER("+lang.ColumnExpr("m", "search_text")+") LIKE ?"+query.LikeEscape, pattern)
		})
	}
}

func withinBound(q *bun.SelectQuery, b orb.Bound) {
	q.Where("m.lon >= ? AND m.lon <= ?", b.Min.Lon(), b.Max.Lon()).
		Where("m.lat >= ? AND m.lat <= ?", b.Min.Lat(), b.Max.Lat())
}

func applySort(q *bun.SelectQuery, opts ListOptions) {
	for _, field := range opts.Sort {
		if field.Field != "name" {
			continue
		}
		dir := " ASC"
		if field.Desc {
			dir = " DESC"
		}
		q.OrderExpr(opts.Language.ColumnExpr("p", "title") + dir)
	}
	q.OrderExpr("p.path ASC")
}

func (s *dbReadService) hydrate(ctx context.Context, ids []uuid.UUID) ([]*Record, error) {
	if len(ids) == 0 {
		return []*Record{}, nil
	}
	var pageRows []*pages.Page
	if err := s.db.NewSelect().Model(&pageRows).Where("?TableAlias.id IN (?)", bun.In(ids)).Scan(ctx); err != nil {
		return nil, fmt.Errorf("memorials: load pages: %w", err)
	}
	var memorialRows []*Memorial
	if err := s.db.NewSelect().Model(&memorialRows).Where("?TableAlias.page_id IN (?)", bun.In(ids)).Scan(ctx); err != nil {
		return nil, fmt.Errorf("memorials: load memorials: %w", err)
	}
	authorIDs, err := s.repo.AuthorIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	types, err := s.tags.PageTags(ctx, ids, tags.KindMemorialType)
	if err != nil {
		return nil, err
	}

	pagesByID := make(map[uuid.UUID]*pages.Page, len(pageRows))
	for _, page := range pageRows {
		pagesByID[page.ID] = page
	}
	memorialsByID := make(map[uuid.UUID]*Memorial, len(memorialRows))
	for _, memorial := range memorialRows {
		memorialsByID[memorial.PageID] = memorial
	}

	records := make([]*Record, 0, len(ids))
	for _, id := range ids {
		page, memorial := pagesByID[id], memorialsByID[id]
		if page == nil || memorial == nil {
			continue
		}
		memorial.AuthorIDs = authorIDs[id]
		memorial.MemorialTypeIDs = make([]int64, 0, len(types[id]))
		for _, tag := range types[id] {
			memorial.MemorialTypeIDs = append(memorial.MemorialTypeIDs, tag.ID)
		}
		records = append(records, &Record{Page: page, Memorial: memorial, MemorialTypes: types[id]})
	}
	return records, nil
}
