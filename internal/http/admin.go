package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-lis/internal/auth"
	"github.com/goliatone/go-lis/internal/authors"
	"github.com/goliatone/go-lis/internal/i18n"
	"github.com/goliatone/go-lis/internal/logging"
	"github.com/goliatone/go-lis/internal/memorials"
	"github.com/goliatone/go-lis/internal/metrics"
	"github.com/goliatone/go-lis/internal/pages"
	"github.com/goliatone/go-lis/internal/permissions"
	"github.com/goliatone/go-lis/internal/tags"
	"github.com/goliatone/go-lis/pkg/interfaces"
	"github.com/google/uuid"
)

// AdminAPI exposes the editorial endpoints behind an editor session.
type AdminAPI struct {
	basePath     string
	pages        pages.Service
	authors      authors.Service
	authorSearch authors.ReadService
	memorials    memorials.Service
	tags         tags.Service
	editors      *auth.Editors
	sessions     *auth.Sessions
	metrics      *metrics.Collectors
	logger       interfaces.Logger
}

type AdminOption func(*AdminAPI)

func WithAdminBasePath(path string) AdminOption {
	return func(api *AdminAPI) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

func WithPages(service pages.Service) AdminOption {
	return func(api *AdminAPI) { api.pages = service }
}

func WithAuthors(service authors.Service) AdminOption {
	return func(api *AdminAPI) { api.authors = service }
}

func WithMemorials(service memorials.Service) AdminOption {
	return func(api *AdminAPI) { api.memorials = service }
}

func WithAdminTags(service tags.Service) AdminOption {
	return func(api *AdminAPI) { api.tags = service }
}

// WithEditors enables login against the editor accounts.
func WithEditors(editors *auth.Editors, sessions *auth.Sessions) AdminOption {
	return func(api *AdminAPI) {
		api.editors = editors
		api.sessions = sessions
	}
}

func WithAdminMetrics(collectors *metrics.Collectors) AdminOption {
	return func(api *AdminAPI) { api.metrics = collectors }
}

func WithAdminLogger(logger interfaces.Logger) AdminOption {
	return func(api *AdminAPI) { api.logger = logging.Ensure(logger) }
}

func NewAdminAPI(opts ...AdminOption) *AdminAPI {
	api := &AdminAPI{basePath: "/admin", logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

func (api *AdminAPI) BasePath() string {
	return joinPath(api.basePath, "")
}

// Register attaches the admin endpoints to mux. Everything but login is
// wrapped with requireSession.
func (api *AdminAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api.pages == nil {
		return fmt.Errorf("http: admin api requires the page service")
	}
	base := api.BasePath()
	mux.HandleFunc("POST "+joinPath(base, "login"), api.handleLogin)
	mux.HandleFunc("POST "+joinPath(base, "logout"), api.handleLogout)

	routes := map[string]http.HandlerFunc{
		"GET api/pages/{id}/revisions":    api.handleRevisions,
		"POST api/revisions/{id}/publish": api.handlePublish,
		"POST api/pages/{id}/unpublish":   api.handleUnpublish,
		"POST api/authors":                api.handleAuthorCreate,
		"GET api/authors/{id}":            api.handleAuthorLatest,
		"PUT api/authors/{id}":            api.handleAuthorSave,
		"PUT api/authors/{id}/names":      api.handleAuthorNames,
		"POST api/memorials":              api.handleMemorialCreate,
		"GET api/memorials/{id}":          api.handleMemorialLatest,
		"PUT api/memorials/{id}":          api.handleMemorialSave,
		"GET api/tags/{kind}":             api.handleTagList,
		"POST api/tags/{kind}":            api.handleTagCreate,
		"GET api/tags/{kind}/{id}":        api.handleTagGet,
		"PUT api/tags/{kind}/{id}":        api.handleTagUpdate,
		"DELETE api/tags/{kind}/{id}":     api.handleTagDelete,
		"GET api/authors/{id}/memorials":  api.handleMemorialsOfAuthor,
		"GET api/pages/{id}":              api.handlePageState,
	}
	for pattern, handler := range routes {
		method, suffix, _ := strings.Cut(pattern, " ")
		mux.Handle(method+" "+joinPath(base, suffix), RequireSession(handler))
	}
	api.registerAutocomplete(mux)
	return nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (api *AdminAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	if api.editors == nil || api.sessions == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	editor, err := api.editors.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	if err := api.sessions.Login(w, r, editor); err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resource{
		"id":       editor.ID,
		"type":     "editors",
		"username": editor.Username,
		"groups":   editor.Groups,
	})
}

func (api *AdminAPI) handleLogout(w http.ResponseWriter, r *http.Request) {
	if api.sessions == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := api.sessions.Logout(w, r); err != nil {
		api.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func revisionResource(rev *pages.Revision) resource {
	return resource{
		"id":                       rev.ID,
		"type":                     "revisions",
		"page_id":                  rev.PageID,
		"user_id":                  rev.UserID,
		"submitted_for_moderation": rev.SubmittedForModeration,
		"approved_go_live_at":      rev.ApprovedGoLiveAt,
		"created_at":               rev.CreatedAt,
	}
}

func pageResource(page *pages.Page, lang i18n.Language) resource {
	return resource{
		"id":                      page.ID,
		"type":                    "pages",
		"kind":                    page.Kind,
		"slug":                    page.Slug,
		"url_path":                page.URLPath,
		"title":                   page.DisplayTitle(lang),
		"state":                   page.State(),
		"live":                    page.Live,
		"has_unpublished_changes": page.HasUnpublishedChanges,
		"first_published_at":      page.FirstPublishedAt,
		"last_published_at":       page.LastPublishedAt,
		"live_revision_id":        page.LiveRevisionID,
	}
}

func (api *AdminAPI) handleRevisions(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid page id")
		return
	}
	if !requirePermission(w, r, permissions.Join(permissions.ResourcePages, permissions.ActionRead)) {
		return
	}
	revisions, err := api.pages.ListRevisions(r.Context(), id)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	results := make([]resource, 0, len(revisions))
	for _, rev := range revisions {
		results = append(results, revisionResource(rev))
	}
	writeJSON(w, http.StatusOK, resource{"count": len(results), "results": results})
}

func (api *AdminAPI) handlePageState(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid page id")
		return
	}
	content, err := api.pages.Latest(r.Context(), id)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageResource(content.Page, i18n.LanguageFrom(r.Context())))
}

func (api *AdminAPI) handlePublish(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid revision id")
		return
	}
	result, err := api.pages.Publish(r.Context(), pages.PublishRequest{RevisionID: id, Actor: actorFrom(r)})
	if err != nil {
		api.fail(w, r, err)
		return
	}
	if !result.Scheduled {
		api.metrics.Published(result.Page.Kind)
	}
	res := pageResource(result.Page, i18n.LanguageFrom(r.Context()))
	res["revision"] = revisionResource(result.Revision)
	res["scheduled"] = result.Scheduled
	writeJSON(w, http.StatusOK, res)
}

func (api *AdminAPI) handleUnpublish(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid page id")
		return
	}
	page, err := api.pages.Unpublish(r.Context(), pages.UnpublishRequest{PageID: id, Actor: actorFrom(r)})
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageResource(page, i18n.LanguageFrom(r.Context())))
}

type authorPayload struct {
	Author           *authors.Author `json:"author"`
	Names            []*authors.Name `json:"names"`
	OriginalLanguage string          `json:"original_language"`
	Submit           bool            `json:"submit"`
	GoLiveAt         *time.Time      `json:"go_live_at"`
}

type namesPayload struct {
	Names []*authors.Name `json:"names"`
}

func (api *AdminAPI) handleAuthorCreate(w http.ResponseWriter, r *http.Request) {
	if api.authors == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	var payload authorPayload
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	lang, err := originalLanguage(payload.OriginalLanguage)
	if err != nil {
		writeError(w, err)
		return
	}
	profile, rev, err := api.authors.Create(r.Context(), authors.CreateRequest{
		Author:           payload.Author,
		Names:            payload.Names,
		OriginalLanguage: lang,
		Actor:            actorFrom(r),
		Submit:           payload.Submit,
	})
	if err != nil {
		api.fail(w, r, err)
		return
	}
	res := pageResource(profile.Page, i18n.LanguageFrom(r.Context()))
	res["revision"] = revisionResource(rev)
	writeJSON(w, http.StatusCreated, res)
}

func (api *AdminAPI) handleAuthorLatest(w http.ResponseWriter, r *http.Request) {
	if api.authors == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid author id")
		return
	}
	profile, err := api.authors.Latest(r.Context(), id)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	res := pageResource(profile.Page, i18n.LanguageFrom(r.Context()))
	res["author"] = profile.Author
	res["names"] = profile.Names
	writeJSON(w, http.StatusOK, res)
}

func (api *AdminAPI) handleAuthorSave(w http.ResponseWriter, r *http.Request) {
	if api.authors == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid author id")
		return
	}
	var payload authorPayload
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	lang, err := originalLanguage(payload.OriginalLanguage)
	if err != nil {
		writeError(w, err)
		return
	}
	rev, err := api.authors.SaveDraft(r.Context(), authors.SaveRequest{
		PageID:           id,
		Author:           payload.Author,
		Names:            payload.Names,
		OriginalLanguage: lang,
		Actor:            actorFrom(r),
		Submit:           payload.Submit,
		GoLiveAt:         payload.GoLiveAt,
	})
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, revisionResource(rev))
}

func (api *AdminAPI) handleAuthorNames(w http.ResponseWriter, r *http.Request) {
	if api.authors == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid author id")
		return
	}
	var payload namesPayload
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	rev, err := api.authors.ReplaceNames(r.Context(), authors.ReplaceNamesRequest{
		PageID: id,
		Names:  payload.Names,
		Actor:  actorFrom(r),
	})
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, revisionResource(rev))
}

type memorialPayload struct {
	Titles           *i18n.Text          `json:"titles"`
	Slug             string              `json:"slug"`
	Memorial         *memorials.Memorial `json:"memorial"`
	OriginalLanguage string              `json:"original_language"`
	Submit           bool                `json:"submit"`
	GoLiveAt         *time.Time          `json:"go_live_at"`
}

func (api *AdminAPI) handleMemorialCreate(w http.ResponseWriter, r *http.Request) {
	if api.memorials == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	var payload memorialPayload
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if payload.Titles == nil {
		badRequest(w, "titles are required")
		return
	}
	lang, err := originalLanguage(payload.OriginalLanguage)
	if err != nil {
		writeError(w, err)
		return
	}
	site, rev, err := api.memorials.Create(r.Context(), memorials.CreateRequest{
		Titles:           *payload.Titles,
		Slug:             payload.Slug,
		Memorial:         payload.Memorial,
		OriginalLanguage: lang,
		Actor:            actorFrom(r),
		Submit:           payload.Submit,
	})
	if err != nil {
		api.fail(w, r, err)
		return
	}
	res := pageResource(site.Page, i18n.LanguageFrom(r.Context()))
	res["revision"] = revisionResource(rev)
	writeJSON(w, http.StatusCreated, res)
}

func (api *AdminAPI) handleMemorialLatest(w http.ResponseWriter, r *http.Request) {
	if api.memorials == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid memorial id")
		return
	}
	site, err := api.memorials.Latest(r.Context(), id)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	res := pageResource(site.Page, i18n.LanguageFrom(r.Context()))
	res["memorial"] = site.Memorial
	writeJSON(w, http.StatusOK, res)
}

func (api *AdminAPI) handleMemorialSave(w http.ResponseWriter, r *http.Request) {
	if api.memorials == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid memorial id")
		return
	}
	var payload memorialPayload
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	lang, err := originalLanguage(payload.OriginalLanguage)
	if err != nil {
		writeError(w, err)
		return
	}
	rev, err := api.memorials.SaveDraft(r.Context(), memorials.SaveRequest{
		PageID:           id,
		Titles:           payload.Titles,
		Slug:             payload.Slug,
		Memorial:         payload.Memorial,
		OriginalLanguage: lang,
		Actor:            actorFrom(r),
		Submit:           payload.Submit,
		GoLiveAt:         payload.GoLiveAt,
	})
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, revisionResource(rev))
}

func (api *AdminAPI) handleMemorialsOfAuthor(w http.ResponseWriter, r *http.Request) {
	if api.memorials == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid author id")
		return
	}
	ids, err := api.memorials.OfAuthor(r.Context(), id)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	writeJSON(w, http.StatusOK, resource{"count": len(ids), "results": ids})
}

type tagPayload struct {
	Titles       i18n.Text `json:"titles"`
	Descriptions i18n.Text `json:"descriptions"`
	SortOrder    *int      `json:"sort_order"`
}

func (api *AdminAPI) tagKind(w http.ResponseWriter, r *http.Request) (tags.Kind, bool) {
	if api.tags == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return "", false
	}
	kind, err := tags.ParseKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, err)
		return "", false
	}
	return kind, true
}

func adminTag(tag *tags.Tag) resource {
	return resource{
		"id":           tag.ID,
		"type":         "tags",
		"kind":         tag.Kind,
		"titles":       tag.Titles(),
		"descriptions": tag.Descriptions(),
		"sort_order":   tag.SortOrder,
	}
}

func (api *AdminAPI) handleTagList(w http.ResponseWriter, r *http.Request) {
	kind, ok := api.tagKind(w, r)
	if !ok {
		return
	}
	list, total, err := api.tags.List(r.Context(), tags.ListOptions{
		Kind:     kind,
		Search:   r.URL.Query().Get("search"),
		Language: i18n.LanguageFrom(r.Context()),
	})
	if err != nil {
		api.fail(w, r, err)
		return
	}
	results := make([]resource, 0, len(list))
	for _, tag := range list {
		results = append(results, adminTag(tag))
	}
	writeJSON(w, http.StatusOK, resource{"count": total, "results": results})
}

func (api *AdminAPI) handleTagGet(w http.ResponseWriter, r *http.Request) {
	kind, ok := api.tagKind(w, r)
	if !ok {
		return
	}
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	tag, err := api.tags.Get(r.Context(), kind, id)
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, adminTag(tag))
}

func (api *AdminAPI) handleTagCreate(w http.ResponseWriter, r *http.Request) {
	kind, ok := api.tagKind(w, r)
	if !ok {
		return
	}
	if !requirePermission(w, r, permissions.Join(permissions.ResourceTags, permissions.ActionCreate)) {
		return
	}
	var payload tagPayload
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	tag, err := api.tags.Create(r.Context(), tags.SaveRequest{
		Kind:         kind,
		Titles:       payload.Titles,
		Descriptions: payload.Descriptions,
		SortOrder:    payload.SortOrder,
	})
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, adminTag(tag))
}

func (api *AdminAPI) handleTagUpdate(w http.ResponseWriter, r *http.Request) {
	kind, ok := api.tagKind(w, r)
	if !ok {
		return
	}
	if !requirePermission(w, r, permissions.Join(permissions.ResourceTags, permissions.ActionUpdate)) {
		return
	}
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var payload tagPayload
	if err := decodeJSON(r, &payload); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	tag, err := api.tags.Update(r.Context(), id, tags.SaveRequest{
		Kind:         kind,
		Titles:       payload.Titles,
		Descriptions: payload.Descriptions,
		SortOrder:    payload.SortOrder,
	})
	if err != nil {
		api.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, adminTag(tag))
}

func (api *AdminAPI) handleTagDelete(w http.ResponseWriter, r *http.Request) {
	kind, ok := api.tagKind(w, r)
	if !ok {
		return
	}
	if !requirePermission(w, r, permissions.Join(permissions.ResourceTags, permissions.ActionDelete)) {
		return
	}
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := api.tags.Delete(r.Context(), kind, id); err != nil {
		api.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *AdminAPI) fail(w http.ResponseWriter, r *http.Request, err error) {
	logFailure(api.logger, r, err)
	writeError(w, err)
}

func originalLanguage(raw string) (i18n.Language, error) {
	if strings.TrimSpace(raw) == "" {
		return i18n.Base, nil
	}
	return i18n.ParseLanguage(raw)
}

// RequireSession rejects requests without an editor principal.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFrom(r.Context())
		if !ok || !principal.IsEditor() {
			writeError(w, auth.ErrNotAuthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}
