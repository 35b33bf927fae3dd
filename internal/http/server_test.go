package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-lis/internal/auth"
	"github.com/goliatone/go-lis/internal/authors"
	"github.com/goliatone/go-lis/internal/i18n"
	"github.com/goliatone/go-lis/internal/media"
	"github.com/goliatone/go-lis/internal/memorials"
	"github.com/goliatone/go-lis/internal/metrics"
	"github.com/goliatone/go-lis/internal/pages"
	"github.com/goliatone/go-lis/internal/permissions"
	"github.com/goliatone/go-lis/internal/tags"
	"github.com/goliatone/go-lis/pkg/testsupport"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

const testSessionKey = "0123456789abcdef0123456789abcdef"

var testMediaKey = []byte("secret")

type apiFixture struct {
	handler   http.Handler
	pages     pages.Service
	memorials memorials.Service
	tags      tags.Service
	editors   *auth.Editors
	keys      *auth.APIKeys
	media     *media.MemoryRepository
	mediaRoot string
	author    uuid.UUID
}

type fixtureConfig struct {
	requireKey bool
	buckets    []auth.Bucket
}

func newAPIFixture(t *testing.T, cfg fixtureConfig) *apiFixture {
	t.Helper()
	db := testsupport.NewBunDB(t,
		(*pages.Page)(nil), (*pages.Revision)(nil),
		(*authors.Author)(nil), (*authors.Name)(nil),
		(*memorials.Memorial)(nil), (*memorials.MemorialAuthor)(nil),
		(*tags.Tag)(nil), (*tags.PageTag)(nil),
	)
	tagSvc := tags.NewService(tags.NewBunRepository(db))
	authorRepo := authors.NewBunRepository(db)
	memorialRepo := memorials.NewBunRepository(db)
	clock := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	pageSvc := pages.NewService(pages.NewBunPageRepository(db),
		pages.WithVariant(authors.NewVariant(authorRepo, tagSvc)),
		pages.WithVariant(memorials.NewVariant(memorialRepo, tagSvc, authorRepo)),
		pages.WithClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}),
	)
	authorSvc := authors.NewService(pageSvc, authorRepo)
	memorialSvc := memorials.NewService(pageSvc, memorialRepo)

	sessions, err := auth.NewSessions(testSessionKey)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	editors := auth.NewEditors(auth.NewMemoryEditorRepository(), nil)
	keys := auth.NewAPIKeys(auth.NewMemoryAPIKeyRepository())
	mediaRepo := media.NewMemoryRepository()
	mediaRoot := t.TempDir()
	mediaSvc := media.NewService(mediaRepo, media.NewLocalStore(mediaRoot, "/media/"), testMediaKey)
	collectors := metrics.NewWithRegistry(prometheus.NewRegistry())

	var throttle *auth.Throttle
	if len(cfg.buckets) > 0 {
		now := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
		throttle = auth.NewThrottle(auth.NewMemoryCounter(func() time.Time { return now }), cfg.buckets)
	}

	handler, err := NewHandler(ServerOptions{
		Public: NewPublicAPI(
			WithAuthorReader(authors.NewDBReadService(db, authorRepo, tagSvc)),
			WithMemorialReader(memorials.NewDBReadService(db, memorialRepo, tagSvc)),
			WithTags(tagSvc),
			WithImages(mediaSvc, "fill-100x100"),
		),
		Admin: NewAdminAPI(
			WithPages(pageSvc),
			WithAuthors(authorSvc),
			WithAuthorSearch(authors.NewDBReadService(db, authorRepo, tagSvc)),
			WithMemorials(memorialSvc),
			WithAdminTags(tagSvc),
			WithEditors(editors, sessions),
			WithAdminMetrics(collectors),
		),
		Images:   NewImageHandler("/images", mediaSvc, nil),
		Sessions: sessions,
		Access:   APIAccess{Keys: keys, Throttle: throttle, Required: cfg.requireKey},
		Metrics:  collectors,
	})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	author := uuid.New()
	if err := authorRepo.Save(context.Background(), &authors.Author{PageID: author, Gender: authors.GenderUnknown}); err != nil {
		t.Fatalf("seed author: %v", err)
	}
	return &apiFixture{
		handler:   handler,
		pages:     pageSvc,
		memorials: memorialSvc,
		tags:      tagSvc,
		editors:   editors,
		keys:      keys,
		media:     mediaRepo,
		mediaRoot: mediaRoot,
		author:    author,
	}
}

type requestOption func(*http.Request)

func withCookies(cookies []*http.Cookie) requestOption {
	return func(r *http.Request) {
		for _, cookie := range cookies {
			r.AddCookie(cookie)
		}
	}
}

func withHeader(name, value string) requestOption {
	return func(r *http.Request) { r.Header.Set(name, value) }
}

func doJSONRequest(t *testing.T, handler http.Handler, method, path string, body any, wantStatus int, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != wantStatus {
		t.Fatalf("%s %s: expected status %d got %d (%s)", method, path, wantStatus, rec.Code, rec.Body.String())
	}
	return rec
}

func decodeJSONBody(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func (f *apiFixture) login(t *testing.T, username string, groups ...string) []*http.Cookie {
	t.Helper()
	if _, err := f.editors.Create(context.Background(), username, "correct horse", groups...); err != nil {
		t.Fatalf("create editor: %v", err)
	}
	rec := doJSONRequest(t, f.handler, http.MethodPost, "/admin/login",
		map[string]string{"username": username, "password": "correct horse"}, http.StatusOK)
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("expected a session cookie")
	}
	return cookies
}

func (f *apiFixture) memorialType(t *testing.T, titles i18n.Text) int64 {
	t.Helper()
	tag, err := f.tags.Create(context.Background(), tags.SaveRequest{Kind: tags.KindMemorialType, Titles: titles})
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	return tag.ID
}

func (f *apiFixture) publishMemorial(t *testing.T, title string, lon, lat float64, typeID int64) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	memorial := &memorials.Memorial{AuthorIDs: []uuid.UUID{f.author}, MemorialTypeIDs: []int64{typeID}}
	memorial.Lon, memorial.Lat = &lon, &lat
	site, rev, err := f.memorials.Create(ctx, memorials.CreateRequest{Titles: i18n.Text{EN: title}, Memorial: memorial})
	if err != nil {
		t.Fatalf("create memorial: %v", err)
	}
	if _, err := f.pages.Publish(ctx, pages.PublishRequest{RevisionID: rev.ID}); err != nil {
		t.Fatalf("publish memorial: %v", err)
	}
	return site.Page.ID
}

type listBody struct {
	Count    int              `json:"count"`
	Next     *string          `json:"next"`
	Previous *string          `json:"previous"`
	BBox     *[2][2]float64   `json:"bbox"`
	Results  []map[string]any `json:"results"`
}

func TestPublicMemorialsListWithEnvelope(t *testing.T) {
	f := newAPIFixture(t, fixtureConfig{})
	grave := f.memorialType(t, i18n.Text{EN: "Grave", DE: "Grab"})
	f.publishMemorial(t, "Karlsbad", 12.87, 50.23, grave)
	prague := f.publishMemorial(t, "Prague", 14.42, 50.08, grave)
	f.publishMemorial(t, "Brno", 16.6, 49.2, grave)

	rec := doJSONRequest(t, f.handler, http.MethodGet, "/api/v2/memorials?page[limit]=2", nil, http.StatusOK)
	var page listBody
	decodeJSONBody(t, rec, &page)
	if page.Count != 3 || len(page.Results) != 2 {
		t.Fatalf("expected 3 results paged by 2, got %d/%d", page.Count, len(page.Results))
	}
	if page.Next == nil || !strings.Contains(*page.Next, "page%5Boffset%5D=2") || page.Previous != nil {
		t.Fatalf("unexpected links next=%v previous=%v", page.Next, page.Previous)
	}
	want := [2][2]float64{{12.87, 49.2}, {16.6, 50.23}}
	if page.BBox == nil || *page.BBox != want {
		t.Fatalf("expected envelope %v got %v", want, page.BBox)
	}

	rec = doJSONRequest(t, f.handler, http.MethodGet, "/api/v2/memorials?in_bbox=14,50,15,51&lang=de&fields[memorials]=title,memorial_types", nil, http.StatusOK)
	decodeJSONBody(t, rec, &page)
	if page.Count != 1 || page.Results[0]["id"] != prague.String() {
		t.Fatalf("expected prague in bbox, got %+v", page.Results)
	}
	if _, ok := page.Results[0]["address"]; ok {
		t.Fatalf("expected sparse fieldset to drop address")
	}
	types := page.Results[0]["memorial_types"].([]any)
	if types[0].(map[string]any)["title"] != "Grab" {
		t.Fatalf("expected german memorial type, got %v", types)
	}
	if rec.Header().Get("Content-Language") != "de" {
		t.Fatalf("expected Content-Language de")
	}
}

func TestPublicRejectsUnknownParameters(t *testing.T) {
	f := newAPIFixture(t, fixtureConfig{})
	for _, path := range []string{
		"/api/v2/memorials?foo=bar",
		"/api/v2/memorials?sort=created",
		"/api/v2/memorials?in_bbox=1,2,3",
		"/api/v2/memorials?dist=100",
		"/api/v2/authors?filter[nickname]=x",
		"/api/v2/authors?lang=fr",
		"/api/v2/genres?page[limit]=-1",
	} {
		rec := doJSONRequest(t, f.handler, http.MethodGet, path, nil, http.StatusBadRequest)
		var body errorResponse
		decodeJSONBody(t, rec, &body)
		if body.Error == "" {
			t.Fatalf("%s: expected an error code", path)
		}
	}
	doJSONRequest(t, f.handler, http.MethodGet, "/api/v2/authors/not-a-uuid", nil, http.StatusBadRequest)
	doJSONRequest(t, f.handler, http.MethodGet, "/api/v2/authors/"+uuid.NewString(), nil, http.StatusNotFound)
}

func TestPublicTagVocabularies(t *testing.T) {
	f := newAPIFixture(t, fixtureConfig{})
	grave := f.memorialType(t, i18n.Text{EN: "Grave", DE: "Grab", CS: "Hrob"})
	f.memorialType(t, i18n.Text{EN: "Birth house"})

	rec := doJSONRequest(t, f.handler, http.MethodGet, "/api/v2/memorialTypes?sort=name", nil, http.StatusOK)
	var page listBody
	decodeJSONBody(t, rec, &page)
	if page.Count != 2 || page.Results[0]["title"] != "Birth house" {
		t.Fatalf("unexpected vocabulary %+v", page.Results)
	}

	rec = doJSONRequest(t, f.handler, http.MethodGet, "/api/v2/memorialTypes/"+itoa(grave)+"?lang=cs", nil, http.StatusOK)
	var tag map[string]any
	decodeJSONBody(t, rec, &tag)
	if tag["title"] != "Hrob" || tag["type"] != "memorialTypes" {
		t.Fatalf("unexpected tag %+v", tag)
	}
	doJSONRequest(t, f.handler, http.MethodGet, "/api/v2/genres/"+itoa(grave), nil, http.StatusNotFound)
}

func TestAPIKeyRequiredAndThrottled(t *testing.T) {
	f := newAPIFixture(t, fixtureConfig{requireKey: true, buckets: []auth.Bucket{{Window: time.Minute, Limit: 2}}})
	doJSONRequest(t, f.handler, http.MethodGet, "/api/v2/authors", nil, http.StatusUnauthorized)
	doJSONRequest(t, f.handler, http.MethodGet, "/api/v2/authors", nil, http.StatusForbidden, withHeader(auth.APIKeyHeader, "nope"))

	raw, _, err := f.keys.Issue(context.Background(), "museum app")
	if err != nil {
		t.Fatalf("issue key: %v", err)
	}
	doJSONRequest(t, f.handler, http.MethodGet, "/api/v2/authors", nil, http.StatusOK, withHeader(auth.APIKeyHeader, raw))
	doJSONRequest(t, f.handler, http.MethodGet, "/api/v2/genres", nil, http.StatusOK, withHeader(auth.APIKeyHeader, raw))
	rec := doJSONRequest(t, f.handler, http.MethodGet, "/api/v2/authors", nil, http.StatusTooManyRequests, withHeader(auth.APIKeyHeader, raw))
	if rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("expected Retry-After 60, got %q", rec.Header().Get("Retry-After"))
	}

	cookies := f.login(t, "editor")
	doJSONRequest(t, f.handler, http.MethodGet, "/api/v2/authors", nil, http.StatusOK, withCookies(cookies))

	rec = doJSONRequest(t, f.handler, http.MethodGet, "/metrics", nil, http.StatusOK)
	for _, want := range []string{
		`lis_api_rejected_requests_total{reason="throttled"} 1`,
		`lis_api_rejected_requests_total{reason="missing_key"} 1`,
		`lis_api_rejected_requests_total{reason="invalid_key"} 1`,
	} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Fatalf("expected %q in metrics output", want)
		}
	}
}

func TestAdminAuthorLifecycle(t *testing.T) {
	f := newAPIFixture(t, fixtureConfig{})
	doJSONRequest(t, f.handler, http.MethodPost, "/admin/api/authors", map[string]any{}, http.StatusUnauthorized)
	doJSONRequest(t, f.handler, http.MethodPost, "/admin/login",
		map[string]string{"username": "ghost", "password": "whatever1"}, http.StatusUnauthorized)

	cookies := f.login(t, "editor")
	body := map[string]any{
		"author": map[string]any{
			"gender": "F",
			"birth":  map[string]int{"year": 1899, "month": 1, "day": 29},
			"death":  map[string]int{"year": 1944, "month": 10, "day": 9},
		},
		"names": []map[string]any{{"first_name": "Ilse", "last_name": "Weber"}},
	}
	rec := doJSONRequest(t, f.handler, http.MethodPost, "/admin/api/authors", body, http.StatusCreated, withCookies(cookies))
	var created struct {
		ID       uuid.UUID `json:"id"`
		State    string    `json:"state"`
		Revision struct {
			ID uuid.UUID `json:"id"`
		} `json:"revision"`
	}
	decodeJSONBody(t, rec, &created)
	if created.State != string(pages.StateDraft) {
		t.Fatalf("expected draft state got %q", created.State)
	}

	var list listBody
	decodeJSONBody(t, doJSONRequest(t, f.handler, http.MethodGet, "/api/v2/authors", nil, http.StatusOK), &list)
	if list.Count != 0 {
		t.Fatalf("drafts must not be public, got %d", list.Count)
	}

	doJSONRequest(t, f.handler, http.MethodPost, "/admin/api/revisions/"+created.Revision.ID.String()+"/publish", nil, http.StatusOK, withCookies(cookies))
	decodeJSONBody(t, doJSONRequest(t, f.handler, http.MethodGet, "/api/v2/authors?filter[gender]=F&filter[date_of_birth_year.lt]=1900", nil, http.StatusOK), &list)
	if list.Count != 1 || list.Results[0]["name"] != "Ilse Weber" {
		t.Fatalf("expected the published author, got %+v", list.Results)
	}
	if age, _ := list.Results[0]["age"].(float64); age != 45 {
		t.Fatalf("expected age 45, got %v", list.Results[0]["age"])
	}

	rec = doJSONRequest(t, f.handler, http.MethodGet, "/admin/api/pages/"+created.ID.String()+"/revisions", nil, http.StatusOK, withCookies(cookies))
	var revisions struct {
		Count int `json:"count"`
	}
	decodeJSONBody(t, rec, &revisions)
	if revisions.Count != 1 {
		t.Fatalf("expected one revision got %d", revisions.Count)
	}

	rec = doJSONRequest(t, f.handler, http.MethodGet, "/admin/autocomplete/authors?q=weber", nil, http.StatusOK, withCookies(cookies))
	var suggestions autocompleteResponse
	decodeJSONBody(t, rec, &suggestions)
	if len(suggestions.Results) != 1 || suggestions.Results[0].Text != "Ilse Weber" {
		t.Fatalf("unexpected suggestions %+v", suggestions.Results)
	}

	doJSONRequest(t, f.handler, http.MethodPost, "/admin/api/pages/"+created.ID.String()+"/unpublish", nil, http.StatusOK, withCookies(cookies))
	decodeJSONBody(t, doJSONRequest(t, f.handler, http.MethodGet, "/api/v2/authors", nil, http.StatusOK), &list)
	if list.Count != 0 {
		t.Fatalf("expected unpublished author to disappear, got %d", list.Count)
	}
}

func TestAdminValidationAndPermissions(t *testing.T) {
	f := newAPIFixture(t, fixtureConfig{})
	cookies := f.login(t, "editor")
	rec := doJSONRequest(t, f.handler, http.MethodPost, "/admin/api/authors",
		map[string]any{"author": map[string]any{"gender": "F"}, "names": []any{}}, http.StatusBadRequest, withCookies(cookies))
	var body errorResponse
	decodeJSONBody(t, rec, &body)
	if body.Error != "validation_failed" || len(body.Issues) == 0 {
		t.Fatalf("expected validation issues, got %+v", body)
	}
	doJSONRequest(t, f.handler, http.MethodPost, "/admin/api/authors", map[string]any{"unknown": true}, http.StatusBadRequest, withCookies(cookies))

	reader := f.login(t, "reader", permissions.GroupReadOnly)
	doJSONRequest(t, f.handler, http.MethodPost, "/admin/api/tags/genre",
		map[string]any{"titles": map[string]string{"en": "Poetry"}}, http.StatusForbidden, withCookies(reader))
	rec = doJSONRequest(t, f.handler, http.MethodPost, "/admin/api/tags/genre",
		map[string]any{"titles": map[string]string{"en": "Poetry"}}, http.StatusCreated, withCookies(cookies))
	var tag struct {
		ID int64 `json:"id"`
	}
	decodeJSONBody(t, rec, &tag)
	doJSONRequest(t, f.handler, http.MethodGet, "/admin/api/tags/genre/"+itoa(tag.ID), nil, http.StatusOK, withCookies(reader))
	doJSONRequest(t, f.handler, http.MethodDelete, "/admin/api/tags/genre/"+itoa(tag.ID), nil, http.StatusForbidden, withCookies(reader))
	doJSONRequest(t, f.handler, http.MethodDelete, "/admin/api/tags/genre/"+itoa(tag.ID), nil, http.StatusNoContent, withCookies(cookies))
	doJSONRequest(t, f.handler, http.MethodGet, "/admin/api/tags/galaxy", nil, http.StatusBadRequest, withCookies(cookies))

	rec = doJSONRequest(t, f.handler, http.MethodPost, "/admin/logout", nil, http.StatusNoContent, withCookies(cookies))
	doJSONRequest(t, f.handler, http.MethodGet, "/admin/api/tags/genre", nil, http.StatusUnauthorized, withCookies(rec.Result().Cookies()))
}

func TestSignedImageRedirect(t *testing.T) {
	f := newAPIFixture(t, fixtureConfig{})
	ctx := context.Background()
	image, err := f.media.CreateImage(ctx, &media.Image{Title: "Villa", File: media.OriginalsDir + "/villa.jpg", Width: 800, Height: 600})
	if err != nil {
		t.Fatalf("create image: %v", err)
	}
	file := media.RenditionsDir + "/villa.fill-100x100.jpg"
	if _, err := f.media.CreateRendition(ctx, &media.Rendition{ImageID: image.ID, FilterSpec: "fill-100x100", File: file}); err != nil {
		t.Fatalf("create rendition: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(f.mediaRoot, media.RenditionsDir), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	signed := media.RenditionURL(image, "fill-100x100", testMediaKey)
	rec := doJSONRequest(t, f.handler, http.MethodGet, signed, nil, http.StatusFound)
	if got := rec.Header().Get("Location"); got != "/media/"+file {
		t.Fatalf("unexpected redirect %q", got)
	}

	tampered := strings.Replace(signed, "fill-100x100", "fill-200x200", 1)
	doJSONRequest(t, f.handler, http.MethodGet, tampered, nil, http.StatusNotFound)
	unknownSpec := media.RenditionURL(image, "width-400", testMediaKey)
	doJSONRequest(t, f.handler, http.MethodGet, unknownSpec, nil, http.StatusNotFound)

	grave := f.memorialType(t, i18n.Text{EN: "Grave"})
	lon, lat := 14.42, 50.08
	memorial := &memorials.Memorial{AuthorIDs: []uuid.UUID{f.author}, MemorialTypeIDs: []int64{grave}, TitleImageID: &image.ID, Lon: &lon, Lat: &lat}
	site, rev, err := f.memorials.Create(ctx, memorials.CreateRequest{Titles: i18n.Text{EN: "Villa"}, Memorial: memorial})
	if err != nil {
		t.Fatalf("create memorial: %v", err)
	}
	if _, err := f.pages.Publish(ctx, pages.PublishRequest{RevisionID: rev.ID}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	var detail map[string]any
	decodeJSONBody(t, doJSONRequest(t, f.handler, http.MethodGet, "/api/v2/memorials/"+site.Page.ID.String(), nil, http.StatusOK), &detail)
	if detail["image"] != signed {
		t.Fatalf("expected image %q got %v", signed, detail["image"])
	}
}

func TestMiddlewareChain(t *testing.T) {
	var seen i18n.Language
	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = i18n.LanguageFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}), SSLRedirect(true), WorkerLimit(1), Language(i18n.EN))

	req := httptest.NewRequest(http.MethodGet, "http://lis.example/api/v2/authors?x=1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMovedPermanently || rec.Header().Get("Location") != "https://lis.example/api/v2/authors?x=1" {
		t.Fatalf("expected https redirect, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	req = httptest.NewRequest(http.MethodGet, "http://lis.example/api/v2/authors", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	req.Header.Set("Accept-Language", "cs-CZ,cs;q=0.9,en;q=0.5")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || seen != i18n.CS {
		t.Fatalf("expected czech negotiation, got %d %q", rec.Code, seen)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestHealthReportsDependencyFailures(t *testing.T) {
	var down error
	handler, err := NewHandler(ServerOptions{Health: func(context.Context) error { return down }})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	down = errors.New("database is gone")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "database") {
		t.Fatalf("health response must not leak the cause: %s", rec.Body.String())
	}
}
