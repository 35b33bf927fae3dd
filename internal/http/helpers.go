package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-lis/internal/auth"
	"github.com/goliatone/go-lis/internal/authors"
	"github.com/goliatone/go-lis/internal/geo"
	"github.com/goliatone/go-lis/internal/i18n"
	"github.com/goliatone/go-lis/internal/media"
	"github.com/goliatone/go-lis/internal/memorials"
	"github.com/goliatone/go-lis/internal/pages"
	"github.com/goliatone/go-lis/internal/permissions"
	"github.com/goliatone/go-lis/internal/query"
	"github.com/goliatone/go-lis/internal/tags"
	"github.com/goliatone/go-lis/internal/validation"
	"github.com/google/uuid"
)

type errorResponse struct {
	Error   string             `json:"error"`
	Message string             `json:"message,omitempty"`
	Issues  []validation.Issue `json:"issues,omitempty"`
}

// joinPath joins route segments into a rooted path without doubled or
// trailing slashes.
func joinPath(base, suffix string) string {
	parts := make([]string, 0, 2)
	for _, part := range []string{base, suffix} {
		if part = strings.Trim(strings.TrimSpace(part), "/"); part != "" {
			parts = append(parts, part)
		}
	}
	return "/" + strings.Join(parts, "/")
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	writeJSON(w, status, payload)
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: message})
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	if validation.IsInvalid(err) {
		return http.StatusBadRequest, errorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
			Issues:  validation.Issues(err),
		}
	}

	if errors.Is(err, permissions.ErrPermissionDenied) || errors.Is(err, auth.ErrAPIKeyInvalid) {
		return http.StatusForbidden, errorResponse{Error: "forbidden", Message: err.Error()}
	}
	if errors.Is(err, auth.ErrNotAuthenticated) || errors.Is(err, auth.ErrInvalidCredentials) {
		return http.StatusUnauthorized, errorResponse{Error: "unauthorized", Message: err.Error()}
	}
	if errors.Is(err, auth.ErrThrottled) {
		return http.StatusTooManyRequests, errorResponse{Error: "throttled", Message: err.Error()}
	}

	if pages.IsNotFound(err) || authors.IsNotFound(err) || memorials.IsNotFound(err) ||
		tags.IsNotFound(err) || media.IsNotFound(err) ||
		errors.Is(err, media.ErrInvalidSignature) || errors.Is(err, media.ErrRenditionMissing) {
		return http.StatusNotFound, errorResponse{Error: "not_found", Message: err.Error()}
	}

	if errors.Is(err, auth.ErrEditorExists) || errors.Is(err, auth.ErrAPIKeyNameExists) {
		return http.StatusConflict, errorResponse{Error: "conflict", Message: err.Error()}
	}

	if errors.Is(err, query.ErrInvalidParam) ||
		errors.Is(err, geo.ErrInvalidBBox) ||
		errors.Is(err, geo.ErrInvalidPoint) ||
		errors.Is(err, geo.ErrInvalidDistance) ||
		errors.Is(err, i18n.ErrUnsupportedLanguage) ||
		errors.Is(err, tags.ErrKindUnknown) ||
		errors.Is(err, tags.ErrKindMismatch) ||
		errors.Is(err, authors.ErrGenderInvalid) ||
		errors.Is(err, authors.ErrPayloadInvalid) ||
		errors.Is(err, memorials.ErrPayloadInvalid) ||
		errors.Is(err, pages.ErrRevisionMismatch) ||
		errors.Is(err, pages.ErrKindMismatch) ||
		errors.Is(err, media.ErrFilterSpec) {
		return http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()}
	}

	return http.StatusInternalServerError, errorResponse{Error: "internal_error"}
}

func parseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, errors.New("uuid required")
	}
	return uuid.Parse(trimmed)
}

func parseID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func requirePermission(w http.ResponseWriter, r *http.Request, permission string) bool {
	if err := permissions.Require(r.Context(), permission); err != nil {
		writeError(w, err)
		return false
	}
	return true
}

// actorFrom builds the lifecycle actor of the editor on the request.
func actorFrom(r *http.Request) pages.Actor {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok || !principal.IsEditor() {
		return pages.Actor{}
	}
	return pages.Actor{ID: principal.EditorID, Groups: principal.Groups}
}
