package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/goliatone/go-lis/internal/auth"
	"github.com/goliatone/go-lis/internal/i18n"
	"github.com/goliatone/go-lis/internal/logging"
	"github.com/goliatone/go-lis/internal/metrics"
	"github.com/goliatone/go-lis/pkg/interfaces"
)

// ServerOptions collects the surfaces served by NewHandler. Nil surfaces are
// not mounted.
type ServerOptions struct {
	Public   *PublicAPI
	Admin    *AdminAPI
	Images   *ImageHandler
	Sessions *auth.Sessions
	Access   APIAccess
	Metrics  *metrics.Collectors
	// Health reports readiness for /healthz; nil always reports ok.
	Health func(context.Context) error

	DefaultLanguage i18n.Language
	SSLRedirect     bool
	Workers         int
	Logger          interfaces.Logger
}

// NewHandler assembles the application handler.
func NewHandler(opts ServerOptions) (http.Handler, error) {
	logger := logging.Ensure(opts.Logger)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if opts.Health != nil {
			if err := opts.Health(r.Context()); err != nil {
				logger.Error("http.health.failed", "error", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics.Handler())
	}

	if opts.Public != nil {
		public := http.NewServeMux()
		if err := opts.Public.Register(public); err != nil {
			return nil, fmt.Errorf("http: register public api: %w", err)
		}
		access := opts.Access
		access.Metrics = opts.Metrics
		if access.Logger == nil {
			access.Logger = logger
		}
		mux.Handle(joinPath(opts.Public.BasePath(), "")+"/", access.Middleware(public))
	}
	if opts.Admin != nil {
		if err := opts.Admin.Register(mux); err != nil {
			return nil, fmt.Errorf("http: register admin api: %w", err)
		}
	}
	if opts.Images != nil {
		opts.Images.Register(mux)
	}

	lang := opts.DefaultLanguage
	if lang == "" {
		lang = i18n.Base
	}
	var sessions Middleware
	if opts.Sessions != nil {
		sessions = opts.Sessions.Middleware
	}
	return Chain(instrument(opts.Metrics, mux),
		SSLRedirect(opts.SSLRedirect),
		WorkerLimit(opts.Workers),
		sessions,
		Language(lang),
	), nil
}

// instrument labels requests with the mux pattern that serves them.
func instrument(collectors *metrics.Collectors, mux *http.ServeMux) http.Handler {
	if collectors == nil {
		return mux
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, pattern := mux.Handler(r)
		if pattern == "" {
			pattern = "unmatched"
		}
		collectors.Instrument(pattern, mux).ServeHTTP(w, r)
	})
}
