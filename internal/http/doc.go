// Package http exposes the archive over net/http.
//
// Routes:
//   - Public API (API key or editor session): /api/v2/authors, /api/v2/authors/{id},
//     /api/v2/memorials, /api/v2/memorials/{id}, /api/v2/languages, /api/v2/genres,
//     /api/v2/periods, /api/v2/memorialTypes (each with /{id})
//   - Admin API (editor session): /admin/api/authors, /admin/api/memorials,
//     /admin/api/pages/{id}/revisions, /admin/api/revisions/{id}/publish,
//     /admin/api/pages/{id}/unpublish, /admin/api/tags/{kind}
//   - Autocomplete (editor session): /admin/autocomplete/{vocabulary}
//   - Signed images: /images/{signature}/{id}/{spec}/{filename}
//   - /healthz and, when enabled, /metrics
package http
