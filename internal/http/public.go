package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-lis/internal/authors"
	"github.com/goliatone/go-lis/internal/geo"
	"github.com/goliatone/go-lis/internal/i18n"
	"github.com/goliatone/go-lis/internal/logging"
	"github.com/goliatone/go-lis/internal/media"
	"github.com/goliatone/go-lis/internal/memorials"
	"github.com/goliatone/go-lis/internal/query"
	"github.com/goliatone/go-lis/internal/tags"
	"github.com/goliatone/go-lis/pkg/interfaces"
)

// PublicAPI serves the read-only archive API.
type PublicAPI struct {
	basePath     string
	defaultLimit int
	maxLimit     int
	authors      authors.ReadService
	memorials    memorials.ReadService
	tags         tags.Service
	media        media.Service
	imageSpec    string
	logger       interfaces.Logger
}

type PublicOption func(*PublicAPI)

func WithPublicBasePath(path string) PublicOption {
	return func(api *PublicAPI) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithLimits sets the default and maximum page size.
func WithLimits(defaultLimit, maxLimit int) PublicOption {
	return func(api *PublicAPI) {
		if defaultLimit > 0 {
			api.defaultLimit = defaultLimit
		}
		if maxLimit > 0 {
			api.maxLimit = maxLimit
		}
	}
}

func WithAuthorReader(reader authors.ReadService) PublicOption {
	return func(api *PublicAPI) { api.authors = reader }
}

func WithMemorialReader(reader memorials.ReadService) PublicOption {
	return func(api *PublicAPI) { api.memorials = reader }
}

func WithTags(service tags.Service) PublicOption {
	return func(api *PublicAPI) { api.tags = service }
}

// WithImages adds a signed "image" url of the memorial title image rendered
// with filterSpec.
func WithImages(service media.Service, filterSpec string) PublicOption {
	return func(api *PublicAPI) {
		api.media = service
		api.imageSpec = filterSpec
	}
}

func WithPublicLogger(logger interfaces.Logger) PublicOption {
	return func(api *PublicAPI) { api.logger = logging.Ensure(logger) }
}

func NewPublicAPI(opts ...PublicOption) *PublicAPI {
	api := &PublicAPI{
		basePath:     "/api/v2",
		defaultLimit: 20,
		maxLimit:     100,
		imageSpec:    "fill-400x300",
		logger:       logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

func (api *PublicAPI) BasePath() string {
	return joinPath(api.basePath, "")
}

// Register attaches the public endpoints to mux.
func (api *PublicAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	base := api.BasePath()
	mux.HandleFunc("GET "+joinPath(base, "authors"), api.handleAuthorList)
	mux.HandleFunc("GET "+joinPath(base, "authors/{id}"), api.handleAuthorGet)
	mux.HandleFunc("GET "+joinPath(base, "memorials"), api.handleMemorialList)
	mux.HandleFunc("GET "+joinPath(base, "memorials/{id}"), api.handleMemorialGet)
	for kind, segment := range tagTypes {
		mux.HandleFunc("GET "+joinPath(base, segment), api.handleTagList(kind))
		mux.HandleFunc("GET "+joinPath(base, segment+"/{id}"), api.handleTagGet(kind))
	}
	return nil
}

func (api *PublicAPI) authorSpec() query.Spec {
	filters := map[string]query.FilterKind{"gender": query.Exact}
	for _, field := range authors.DateFields {
		filters[field] = query.Numeric
	}
	return query.Spec{
		Sort:         authors.SortFields,
		Filters:      filters,
		Types:        []string{"authors"},
		Extra:        []string{"lang", "search", "ids", "languages", "genres", "periods"},
		DefaultLimit: api.defaultLimit,
		MaxLimit:     api.maxLimit,
	}
}

func (api *PublicAPI) memorialSpec() query.Spec {
	return query.Spec{
		Sort:         memorials.SortFields,
		Types:        []string{"memorials"},
		Extra:        []string{"lang", "search", "ids", "authors", "memorial_types", "in_bbox", "point", "dist"},
		DefaultLimit: api.defaultLimit,
		MaxLimit:     api.maxLimit,
	}
}

func (api *PublicAPI) tagSpec(resourceType string) query.Spec {
	return query.Spec{
		Sort:         []string{"name", "sort_order", "id"},
		Types:        []string{resourceType},
		Extra:        []string{"lang", "search", "ids"},
		DefaultLimit: api.defaultLimit,
		MaxLimit:     api.maxLimit,
	}
}

// detailSpec accepts the parameters of single record endpoints.
func detailSpec(resourceType string) query.Spec {
	return query.Spec{Types: []string{resourceType}, Extra: []string{"lang"}}
}

func (api *PublicAPI) handleAuthorList(w http.ResponseWriter, r *http.Request) {
	if api.authors == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	params, err := api.authorSpec().Parse(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	opts := authors.ListOptions{
		Search:   params.Get("search"),
		Language: i18n.LanguageFrom(r.Context()),
		Sort:     params.Sort,
		Limit:    params.Limit,
		Offset:   params.Offset,
	}
	if opts.IDs, err = params.UUIDs("ids"); err != nil {
		writeError(w, err)
		return
	}
	if opts.LanguageIDs, err = params.IDs("languages"); err != nil {
		writeError(w, err)
		return
	}
	if opts.GenreIDs, err = params.IDs("genres"); err != nil {
		writeError(w, err)
		return
	}
	if opts.PeriodIDs, err = params.IDs("periods"); err != nil {
		writeError(w, err)
		return
	}
	for _, filter := range params.Filters {
		if filter.Field == "gender" {
			for _, value := range filter.Values {
				gender, err := authors.ParseGender(value)
				if err != nil {
					writeError(w, err)
					return
				}
				opts.Genders = append(opts.Genders, gender)
			}
			continue
		}
		opts.Dates = append(opts.Dates, authors.DateFilter{Field: filter.Field, Op: filter.Op, Values: filter.Ints()})
	}

	records, total, err := api.authors.List(r.Context(), opts)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	fields, sparse := params.Fieldset("authors")
	results := make([]resource, 0, len(records))
	for _, rec := range records {
		results = append(results, authorResource(r.Context(), rec, api.BasePath(), false).sparse(fields, sparse))
	}
	writeJSON(w, http.StatusOK, newListDocument(r, params, total, results))
}

func (api *PublicAPI) handleAuthorGet(w http.ResponseWriter, r *http.Request) {
	if api.authors == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	params, err := detailSpec("authors").Parse(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	rec, err := api.authors.Get(r.Context(), id, false)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	fields, sparse := params.Fieldset("authors")
	writeJSON(w, http.StatusOK, authorResource(r.Context(), rec, api.BasePath(), true).sparse(fields, sparse))
}

func (api *PublicAPI) handleMemorialList(w http.ResponseWriter, r *http.Request) {
	if api.memorials == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	params, err := api.memorialSpec().Parse(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	opts := memorials.ListOptions{
		Search:   params.Get("search"),
		Language: i18n.LanguageFrom(r.Context()),
		Sort:     params.Sort,
		Limit:    params.Limit,
		Offset:   params.Offset,
	}
	if opts.IDs, err = params.UUIDs("ids"); err != nil {
		writeError(w, err)
		return
	}
	if opts.AuthorIDs, err = params.UUIDs("authors"); err != nil {
		writeError(w, err)
		return
	}
	if opts.MemorialTypeIDs, err = params.IDs("memorial_types"); err != nil {
		writeError(w, err)
		return
	}
	if params.Has("in_bbox") {
		bound, err := geo.ParseBBox(params.Get("in_bbox"))
		if err != nil {
			writeError(w, err)
			return
		}
		opts.BBox = &bound
	}
	if params.Has("point") {
		center, err := geo.ParsePoint(params.Get("point"))
		if err != nil {
			writeError(w, err)
			return
		}
		meters := geo.DefaultDistance
		if params.Has("dist") {
			if meters, err = geo.ParseDistance(params.Get("dist")); err != nil {
				writeError(w, err)
				return
			}
		}
		opts.Near = &memorials.Near{Center: center, Meters: meters}
	} else if params.Has("dist") {
		writeError(w, &query.ParamError{Param: "dist", Reason: "requires point"})
		return
	}

	result, err := api.memorials.List(r.Context(), opts)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	fields, sparse := params.Fieldset("memorials")
	results := make([]resource, 0, len(result.Records))
	for _, rec := range result.Records {
		res := api.withImage(r, memorialResource(r.Context(), rec, api.BasePath(), false), rec)
		results = append(results, res.sparse(fields, sparse))
	}
	doc := newListDocument(r, params, result.Total, results)
	doc.BBox = corners(result.BBox)
	writeJSON(w, http.StatusOK, doc)
}

func (api *PublicAPI) handleMemorialGet(w http.ResponseWriter, r *http.Request) {
	if api.memorials == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid id")
		return
	}
	params, err := detailSpec("memorials").Parse(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	rec, err := api.memorials.Get(r.Context(), id, false)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	fields, sparse := params.Fieldset("memorials")
	res := api.withImage(r, memorialResource(r.Context(), rec, api.BasePath(), true), rec)
	writeJSON(w, http.StatusOK, res.sparse(fields, sparse))
}

func (api *PublicAPI) handleTagList(kind tags.Kind) http.HandlerFunc {
	resourceType := tagTypes[kind]
	return func(w http.ResponseWriter, r *http.Request) {
		if api.tags == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
			return
		}
		params, err := api.tagSpec(resourceType).Parse(r.URL.Query())
		if err != nil {
			writeError(w, err)
			return
		}
		ids, err := params.IDs("ids")
		if err != nil {
			writeError(w, err)
			return
		}
		lang := i18n.LanguageFrom(r.Context())
		list, total, err := api.tags.List(r.Context(), tags.ListOptions{
			Kind:     kind,
			IDs:      ids,
			Search:   params.Get("search"),
			Language: lang,
			Sort:     params.Sort,
			Limit:    params.Limit,
			Offset:   params.Offset,
		})
		if err != nil {
			api.fail(w, r, err)
			return
		}
		fields, sparse := params.Fieldset(resourceType)
		results := make([]resource, 0, len(list))
		for _, tag := range list {
			res, err := tagResource(tag, lang, api.BasePath())
			if err != nil {
				api.fail(w, r, err)
				return
			}
			results = append(results, res.sparse(fields, sparse))
		}
		writeJSON(w, http.StatusOK, newListDocument(r, params, total, results))
	}
}

func (api *PublicAPI) handleTagGet(kind tags.Kind) http.HandlerFunc {
	resourceType := tagTypes[kind]
	return func(w http.ResponseWriter, r *http.Request) {
		if api.tags == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
			return
		}
		id, err := parseID(r.PathValue("id"))
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		params, err := detailSpec(resourceType).Parse(r.URL.Query())
		if err != nil {
			writeError(w, err)
			return
		}
		tag, err := api.tags.Get(r.Context(), kind, id)
		if err != nil {
			api.fail(w, r, err)
			return
		}
		res, err := tagResource(tag, i18n.LanguageFrom(r.Context()), api.BasePath())
		if err != nil {
			api.fail(w, r, err)
			return
		}
		fields, sparse := params.Fieldset(resourceType)
		writeJSON(w, http.StatusOK, res.sparse(fields, sparse))
	}
}

// withImage attaches the title image url. A missing image only drops the
// field.
func (api *PublicAPI) withImage(r *http.Request, res resource, rec *memorials.Record) resource {
	if api.media == nil || rec.Memorial.TitleImageID == nil {
		return res
	}
	url, err := api.media.URL(r.Context(), *rec.Memorial.TitleImageID, api.imageSpec)
	if err != nil {
		api.logger.Warn("http.memorial.image_unavailable", "memorial_id", rec.Page.ID, "error", err)
		return res
	}
	res["image"] = url
	return res
}

func (api *PublicAPI) fail(w http.ResponseWriter, r *http.Request, err error) {
	logFailure(api.logger, r, err)
	writeError(w, err)
}

func logFailure(logger interfaces.Logger, r *http.Request, err error) {
	if status, _ := mapError(err); status >= http.StatusInternalServerError {
		logger.Error("http.request.failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
}
