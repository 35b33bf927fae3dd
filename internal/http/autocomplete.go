package http

import (
	"net/http"
	"strconv"

	"github.com/goliatone/go-lis/internal/authors"
	"github.com/goliatone/go-lis/internal/i18n"
	"github.com/goliatone/go-lis/internal/tags"
)

const maxAutocompleteLimit = 50

// autocompleteItem is one suggestion of the admin choosers.
type autocompleteItem struct {
	ID   any    `json:"id"`
	Text string `json:"text"`
}

type autocompleteResponse struct {
	Results []autocompleteItem `json:"results"`
}

// WithAuthorSearch enables the author chooser.
func WithAuthorSearch(reader authors.ReadService) AdminOption {
	return func(api *AdminAPI) { api.authorSearch = reader }
}

func (api *AdminAPI) registerAutocomplete(mux *http.ServeMux) {
	base := api.BasePath()
	mux.Handle("GET "+joinPath(base, "autocomplete/authors"), RequireSession(http.HandlerFunc(api.handleAuthorAutocomplete)))
	mux.Handle("GET "+joinPath(base, "autocomplete/{kind}"), RequireSession(http.HandlerFunc(api.handleTagAutocomplete)))
}

func autocompleteLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		return tags.DefaultAutocompleteLimit
	}
	return min(limit, maxAutocompleteLimit)
}

func (api *AdminAPI) handleAuthorAutocomplete(w http.ResponseWriter, r *http.Request) {
	if api.authorSearch == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
		return
	}
	found, err := api.authorSearch.Autocomplete(r.Context(), r.URL.Query().Get("q"), autocompleteLimit(r))
	if err != nil {
		api.fail(w, r, err)
		return
	}
	lang := i18n.LanguageFrom(r.Context())
	results := make([]autocompleteItem, 0, len(found))
	for _, page := range found {
		results = append(results, autocompleteItem{ID: page.ID, Text: page.DisplayTitle(lang)})
	}
	writeJSON(w, http.StatusOK, autocompleteResponse{Results: results})
}

func (api *AdminAPI) handleTagAutocomplete(w http.ResponseWriter, r *http.Request) {
	kind, ok := api.tagKind(w, r)
	if !ok {
		return
	}
	found, err := api.tags.Autocomplete(r.Context(), kind, r.URL.Query().Get("q"), autocompleteLimit(r))
	if err != nil {
		api.fail(w, r, err)
		return
	}
	lang := i18n.LanguageFrom(r.Context())
	results := make([]autocompleteItem, 0, len(found))
	for _, tag := range found {
		results = append(results, autocompleteItem{ID: tag.ID, Text: tag.DisplayTitle(lang)})
	}
	writeJSON(w, http.StatusOK, autocompleteResponse{Results: results})
}
