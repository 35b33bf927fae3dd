package http

import (
	"net/http"
	"strconv"

	"github.com/goliatone/go-lis/internal/logging"
	"github.com/goliatone/go-lis/internal/media"
	"github.com/goliatone/go-lis/pkg/interfaces"
)

// ImageHandler redirects signed image URLs to their rendition file.
type ImageHandler struct {
	basePath string
	service  media.Service
	logger   interfaces.Logger
}

func NewImageHandler(basePath string, service media.Service, logger interfaces.Logger) *ImageHandler {
	if basePath == "" {
		basePath = "/images"
	}
	return &ImageHandler{basePath: basePath, service: service, logger: logging.Ensure(logger)}
}

func (h *ImageHandler) Register(mux *http.ServeMux) {
	mux.Handle("GET "+joinPath(h.basePath, "{signature}/{id}/{spec}/{filename...}"), h)
}

// ServeHTTP answers 404 for any request that does not resolve, including
// bad signatures. The filename segment is informational.
func (h *ImageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return
	}
	target, err := h.service.Resolve(r.Context(), r.PathValue("signature"), id, r.PathValue("spec"))
	if err != nil {
		if status, _ := mapError(err); status >= http.StatusInternalServerError {
			h.logger.Error("http.image.failed", "image_id", id, "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
