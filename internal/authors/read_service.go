package authors

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-lis/internal/i18n"
	"github.com/goliatone/go-lis/internal/pages"
	"github.com/goliatone/go-lis/internal/query"
	"github.com/goliatone/go-lis/internal/tags"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SortFields are the orderings the author listing accepts.
var SortFields = []string{
	"name", "born_in", "died_in",
	"date_of_birth_year", "date_of_birth_month", "date_of_birth_day",
	"date_of_death_year", "date_of_death_month", "date_of_death_day",
}

// DateFields accept numeric filters.
var DateFields = []string{
	"date_of_birth_year", "date_of_birth_month", "date_of_birth_day",
	"date_of_death_year", "date_of_death_month", "date_of_death_day",
}

// DateFilter compares one date component.
type DateFilter struct {
	Field  string
	Op     query.Op
	Values []int
}

// ListOptions selects authors for the public listing. Tag dimensions match
// any of their ids and are combined with each other.
type ListOptions struct {
	IDs           []uuid.UUID
	Genders       []Gender
	LanguageIDs   []int64
	GenreIDs      []int64
	PeriodIDs     []int64
	Dates         []DateFilter
	Search        string
	Language      i18n.Language
	Sort          []query.SortField
	Limit         int
	Offset        int
	IncludeDrafts bool
}

// Record is a hydrated author for read surfaces.
type Record struct {
	Page      *pages.Page
	Author    *Author
	Names     []*Name
	Languages []*tags.Tag
	Genres    []*tags.Tag
	Periods   []*tags.Tag
}

func (r *Record) Profile() *Profile {
	return &Profile{Page: r.Page, Author: r.Author, Names: r.Names}
}

type ReadService interface {
	List(ctx context.Context, opts ListOptions) ([]*Record, int, error)
	Get(ctx context.Context, id uuid.UUID, includeDrafts bool) (*Record, error)
	Autocomplete(ctx context.Context, q string, limit int) ([]*pages.Page, error)
}

// NewDBReadService builds the SQL backed author read service.
func NewDBReadService(db *bun.DB, repo Repository, tagStore TagStore) ReadService {
	return &dbReadService{db: db, repo: repo, tags: tagStore}
}

type dbReadService struct {
	db   *bun.DB
	repo Repository
	tags TagStore
}

func (s *dbReadService) List(ctx context.Context, opts ListOptions) ([]*Record, int, error) {
	if s.db == nil {
		return nil, 0, errors.New("authors: read service requires database")
	}
	if opts.Language == "" {
		opts.Language = i18n.LanguageFrom(ctx)
	}
	countQuery := s.newQuery()
	if err := applyFilters(countQuery, opts); err != nil {
		return nil, 0, err
	}
	total, err := countQuery.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("authors: count: %w", err)
	}

	listQuery := s.newQuery().ColumnExpr("p.id")
	if err := applyFilters(listQuery, opts); err != nil {
		return nil, 0, err
	}
	applySort(listQuery, opts)
	if opts.Limit > 0 {
		listQuery.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		listQuery.Offset(opts.Offset)
	}
	var ids []uuid.UUID
	if err := listQuery.Scan(ctx, &ids); err != nil {
		return nil, 0, fmt.Errorf("authors: list: %w", err)
	}
	records, err := s.hydrate(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (s *dbReadService) Get(ctx context.Context, id uuid.UUID, includeDrafts bool) (*Record, error) {
	records, _, err := s.List(ctx, ListOptions{IDs: []uuid.UUID{id}, IncludeDrafts: includeDrafts, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "author", Key: id.String()}
	}
	return records[0], nil
}

// Autocomplete matches q against the three title columns of every author
// page, drafts included.
func (s *dbReadService) Autocomplete(ctx context.Context, q string, limit int) ([]*pages.Page, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []*pages.Page
	sel := s.db.NewSelect().
		Model(&records).
		Where("?TableAlias.kind = ?", pages.KindAuthor)
	if pattern, ok := query.Contains(q); ok {
		sel.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("LOWER(?TableAlias.title) LIKE ?"+query.LikeEscape, pattern).
				WhereOr("LOWER(?TableAlias.title_de) LIKE ?"+query.LikeEscape, pattern).
				WhereOr("LOWER(?TableAlias.title_cs) LIKE ?"+query.LikeEscape, pattern)
		})
	}
	if err := sel.OrderExpr("?TableAlias.title ASC").Limit(limit).Scan(ctx); err != nil {
		return nil, fmt.Errorf("authors: autocomplete: %w", err)
	}
	return records, nil
}

func (s *dbReadService) newQuery() *bun.SelectQuery {
	return s.db.NewSelect().
		TableExpr("pages AS p").
		Join("JOIN authors AS a ON a.page_id = p.id").
		Where("p.kind = ?", pages.KindAuthor)
}

func applyFilters(q *bun.SelectQuery, opts ListOptions) error {
	if !opts.IncludeDrafts {
		q.Where("p.live = ?", true)
	}
	if len(opts.IDs) > 0 {
		q.Where("p.id IN (?)", bun.In(opts.IDs))
	}
	if len(opts.Genders) > 0 {
		q.Where("a.gender IN (?)", bun.In(opts.Genders))
	}
	tagFilter(q, tags.KindLanguage, opts.LanguageIDs)
	tagFilter(q, tags.KindGenre, opts.GenreIDs)
	tagFilter(q, tags.KindPeriod, opts.PeriodIDs)
	for _, filter := range opts.Dates {
		if err := dateFilter(q, filter); err != nil {
			return err
		}
	}
	if pattern, ok := query.Contains(opts.Search); ok {
		lang := opts.Language
		like := func(column string) string { return "LOWER(" + column + ") LIKE ?" + query.LikeEscape }
		nameMatch := fmt.Sprintf(
			"EXISTS (SELECT 1 FROM author_names AS an WHERE an.author_id = p.id AND (%s OR %s OR %s))",
			like(lang.ColumnExpr("an", "first_name")), like(lang.ColumnExpr("an", "last_name")), like(lang.ColumnExpr("an", "birth_name")),
		)
		q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where(like(lang.ColumnExpr("p", "title")), pattern).
				WhereOr(nameMatch, pattern, pattern, pattern).
				WhereOr(like(lang.ColumnExpr("a", "place_of_birth")), pattern).
				WhereOr(like(lang.ColumnExpr("a", "place_of_death")), pattern)
		})
	}
	return nil
}

// tagFilter keeps pages carrying any of ids in the vocabulary.
func tagFilter(q *bun.SelectQuery, kind tags.Kind, ids []int64) {
	if len(ids) == 0 {
		return
	}
	q.Where("EXISTS (SELECT 1 FROM page_tags AS ptg JOIN tags AS t ON t.id = ptg.tag_id WHERE ptg.page_id = p.id AND t.kind = ? AND ptg.tag_id IN (?))", kind, bun.In(ids))
}

func dateFilter(q *bun.SelectQuery, filter DateFilter) error {
	if !contains(DateFields, filter.Field) || len(filter.Values) == 0 {
		return fmt.Errorf("%w: filter %q", query.ErrInvalidParam, filter.Field)
	}
	column := bun.Ident("a." + filter.Field)
	value := filter.Values[0]
	switch filter.Op {
	case query.OpEq, "":
		q.Where("? = ?", column, value)
	case query.OpIn:
		q.Where("? IN (?)", column, bun.In(filter.Values))
	case query.OpGt:
		q.Where("? > ?", column, value)
	case query.OpGte:
		q.Where("? >= ?", column, value)
	case query.OpLt:
		q.Where("? < ?", column, value)
	case query.OpLte:
		q.Where("? <= ?", column, value)
	default:
		return fmt.Errorf("%w: operator %q", query.ErrInvalidParam, filter.Op)
	}
	return nil
}

func applySort(q *bun.SelectQuery, opts ListOptions) {
	fields := opts.Sort
	if len(fields) == 0 {
		fields = []query.SortField{{Field: "name"}}
	}
	for _, field := range fields {
		dir := " ASC"
		if field.Desc {
			dir = " DESC"
		}
		switch field.Field {
		case "name":
			q.OrderExpr(opts.Language.ColumnExpr("p", "title") + dir)
		case "born_in":
			q.OrderExpr(opts.Language.ColumnExpr("a", "place_of_birth") + dir)
		case "died_in":
			q.OrderExpr(opts.Language.ColumnExpr("a", "place_of_death") + dir)
		default:
			if contains(DateFields, field.Field) {
				q.OrderExpr("a." + field.Field + dir)
			}
		}
	}
	q.OrderExpr("p.path ASC")
}

func (s *dbReadService) hydrate(ctx context.Context, ids []uuid.UUID) ([]*Record, error) {
	if len(ids) == 0 {
		return []*Record{}, nil
	}
	var pageRows []*pages.Page
	if err := s.db.NewSelect().Model(&pageRows).Where("?TableAlias.id IN (?)", bun.In(ids)).Scan(ctx); err != nil {
		return nil, fmt.Errorf("authors: load pages: %w", err)
	}
	var authorRows []*Author
	if err := s.db.NewSelect().Model(&authorRows).Where("?TableAlias.page_id IN (?)", bun.In(ids)).Scan(ctx); err != nil {
		return nil, fmt.Errorf("authors: load authors: %w", err)
	}
	names, err := s.repo.NamesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	attached := map[tags.Kind]map[uuid.UUID][]*tags.Tag{}
	for _, kind := range []tags.Kind{tags.KindLanguage, tags.KindGenre, tags.KindPeriod} {
		if attached[kind], err = s.tags.PageTags(ctx, ids, kind); err != nil {
			return nil, err
		}
	}

	pagesByID := make(map[uuid.UUID]*pages.Page, len(pageRows))
	for _, page := range pageRows {
		pagesByID[page.ID] = page
	}
	authorsByID := make(map[uuid.UUID]*Author, len(authorRows))
	for _, author := range authorRows {
		authorsByID[author.PageID] = author
	}

	records := make([]*Record, 0, len(ids))
	for _, id := range ids {
		page, author := pagesByID[id], authorsByID[id]
		if page == nil || author == nil {
			continue
		}
		author.LanguageIDs = tagIDs(attached[tags.KindLanguage][id])
		author.GenreIDs = tagIDs(attached[tags.KindGenre][id])
		author.PeriodIDs = tagIDs(attached[tags.KindPeriod][id])
		records = append(records, &Record{
			Page:      page,
			Author:    author,
			Names:     names[id],
			Languages: attached[tags.KindLanguage][id],
			Genres:    attached[tags.KindGenre][id],
			Periods:   attached[tags.KindPeriod][id],
		})
	}
	return records, nil
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
