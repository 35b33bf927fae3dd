package http

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/goliatone/go-lis/internal/authors"
	"github.com/goliatone/go-lis/internal/geo"
	"github.com/goliatone/go-lis/internal/i18n"
	"github.com/goliatone/go-lis/internal/memorials"
	"github.com/goliatone/go-lis/internal/query"
	"github.com/goliatone/go-lis/internal/tags"
	"github.com/paulmach/orb"
)

// resource is the flat JSON object of one API record. "id" and "type" are
// always present; sparse fieldsets filter the rest.
type resource map[string]any

// listDocument is one page of results.
type listDocument struct {
	Count    int            `json:"count"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
	BBox     *[2][2]float64 `json:"bbox,omitempty"`
	Results  []resource     `json:"results"`
}

func (res resource) sparse(fields []string, ok bool) resource {
	if !ok {
		return res
	}
	out := resource{"id": res["id"], "type": res["type"]}
	for _, field := range fields {
		if value, found := res[field]; found {
			out[field] = value
		}
	}
	return out
}

func newListDocument(r *http.Request, params query.Params, total int, results []resource) listDocument {
	doc := listDocument{Count: total, Results: results}
	if doc.Results == nil {
		doc.Results = []resource{}
	}
	if next := params.Offset + params.Limit; next < total {
		link := pageLink(r, params.Limit, next)
		doc.Next = &link
	}
	if params.Offset > 0 {
		link := pageLink(r, params.Limit, max(params.Offset-params.Limit, 0))
		doc.Previous = &link
	}
	return doc
}

func pageLink(r *http.Request, limit, offset int) string {
	values := url.Values{}
	for key, vals := range r.URL.Query() {
		values[key] = slices.Clone(vals)
	}
	values.Set("page[limit]", strconv.Itoa(limit))
	if offset > 0 {
		values.Set("page[offset]", strconv.Itoa(offset))
	} else {
		values.Del("page[offset]")
	}
	return r.URL.Path + "?" + values.Encode()
}

func tagRefs(list []*tags.Tag, lang i18n.Language) []resource {
	out := make([]resource, 0, len(list))
	for _, tag := range list {
		out = append(out, resource{"id": tag.ID, "title": tag.DisplayTitle(lang)})
	}
	return out
}

// tagTypes maps vocabularies to their resource type and path segment.
var tagTypes = map[tags.Kind]string{
	tags.KindLanguage:     "languages",
	tags.KindGenre:        "genres",
	tags.KindPeriod:       "periods",
	tags.KindMemorialType: "memorialTypes",
}

func tagResource(tag *tags.Tag, lang i18n.Language, base string) (resource, error) {
	description, err := tag.DescriptionHTML(lang)
	if err != nil {
		return nil, err
	}
	resourceType := tagTypes[tag.Kind]
	res := resource{
		"id":          tag.ID,
		"type":        resourceType,
		"title":       tag.DisplayTitle(lang),
		"description": description,
		"links":       resource{"self": joinPath(base, resourceType+"/"+strconv.FormatInt(tag.ID, 10))},
	}
	if tag.SortOrder != nil {
		res["sort_order"] = *tag.SortOrder
	}
	return res, nil
}

func nameResource(ctx context.Context, name *authors.Name, gender authors.Gender) resource {
	lang := i18n.LanguageFrom(ctx)
	return resource{
		"title":        i18n.WithDefault.Resolve(name.Titles(), lang),
		"first_name":   i18n.WithDefault.Resolve(name.FirstNames(), lang),
		"last_name":    i18n.WithDefault.Resolve(name.LastNames(), lang),
		"birth_name":   i18n.Plain.Resolve(name.BirthNames(), lang),
		"full_name":    name.Display(ctx),
		"display_name": name.DisplayWithBirthName(ctx, gender),
		"pseudonym":    name.IsPseudonym,
	}
}

func authorResource(ctx context.Context, rec *authors.Record, base string, detail bool) resource {
	lang := i18n.LanguageFrom(ctx)
	author := rec.Author
	res := resource{
		"id":             rec.Page.ID,
		"type":           "authors",
		"name":           i18n.WithDefault.Resolve(rec.Page.Titles(), lang),
		"gender":         author.Gender,
		"born":           author.Birth.Format(ctx),
		"died":           author.Death.Format(ctx),
		"place_of_birth": i18n.WithDefault.Resolve(author.PlacesOfBirth(), lang),
		"place_of_death": i18n.WithDefault.Resolve(author.PlacesOfDeath(), lang),
		"languages":      tagRefs(rec.Languages, lang),
		"genres":         tagRefs(rec.Genres, lang),
		"periods":        tagRefs(rec.Periods, lang),
		"created":        rec.Page.LastPublishedAt,
		"links":          resource{"self": joinPath(base, "authors/"+rec.Page.ID.String())},
	}
	if age, ok := author.Age(); ok {
		res["age"] = age
	}
	if detail {
		names := make([]resource, 0, len(rec.Names))
		for _, name := range rec.Names {
			names = append(names, nameResource(ctx, name, author.Gender))
		}
		res["names"] = names
	}
	return res
}

func memorialResource(ctx context.Context, rec *memorials.Record, base string, detail bool) resource {
	lang := i18n.LanguageFrom(ctx)
	memorial := rec.Memorial
	localized := memorial.Localize(lang)
	res := resource{
		"id":             rec.Page.ID,
		"type":           "memorials",
		"title":          i18n.WithDefault.Resolve(rec.Page.Titles(), lang),
		"memorial_types": tagRefs(rec.MemorialTypes, lang),
		"authors":        memorial.AuthorIDs,
		"address":        localized.Address,
		"introduction":   localized.Introduction,
		"created":        rec.Page.LastPublishedAt,
		"links":          resource{"self": joinPath(base, "memorials/"+rec.Page.ID.String())},
	}
	if point, ok := memorial.Point(); ok {
		res["coordinates"] = [2]float64{point.X(), point.Y()}
	}
	if detail {
		res["contact_info"] = localized.ContactInfo
		res["directions"] = localized.Directions
		res["description"] = orEmpty(localized.Description)
		res["detailed_description"] = orEmpty(localized.DetailedDescription)
	}
	return res
}

func orEmpty(list []memorials.Paragraph) []memorials.Paragraph {
	if list == nil {
		return []memorials.Paragraph{}
	}
	return list
}

func corners(b orb.Bound) *[2][2]float64 {
	c := geo.Corners(b)
	return &c
}
