package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-lis/internal/auth"
	"github.com/goliatone/go-lis/internal/i18n"
	"github.com/goliatone/go-lis/internal/metrics"
	"github.com/goliatone/go-lis/pkg/interfaces"
)

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so the first one listed runs first.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] != nil {
			h = middlewares[i](h)
		}
	}
	return h
}

// Language negotiates the response language from the lang query parameter
// and Accept-Language. An unsupported explicit lang is a 400.
func Language(fallback i18n.Language) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang, err := i18n.Negotiate(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"), fallback)
			if err != nil {
				writeError(w, err)
				return
			}
			w.Header().Set("Content-Language", lang.String())
			next.ServeHTTP(w, r.WithContext(i18n.WithLanguage(r.Context(), lang)))
		})
	}
}

// SSLRedirect sends plain HTTP requests to their https URL.
func SSLRedirect(enabled bool) Middleware {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
				next.ServeHTTP(w, r)
				return
			}
			target := "https://" + r.Host + r.URL.RequestURI()
			http.Redirect(w, r, target, http.StatusMovedPermanently)
		})
	}
}

// WorkerLimit bounds the number of requests served at once. Excess requests
// wait for a slot or their context.
func WorkerLimit(n int) Middleware {
	return func(next http.Handler) http.Handler {
		if n <= 0 {
			return next
		}
		slots := make(chan struct{}, n)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case slots <- struct{}{}:
			case <-r.Context().Done():
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				return
			}
			defer func() { <-slots }()
			next.ServeHTTP(w, r)
		})
	}
}

// APIAccess guards the public API. Editors with a session pass, other
// callers need a valid Api-Key header when required is set. Keyed requests
// are throttled per key.
type APIAccess struct {
	Keys     *auth.APIKeys
	Throttle *auth.Throttle
	Required bool
	Metrics  *metrics.Collectors
	Logger   interfaces.Logger
}

func (a APIAccess) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if principal, ok := auth.PrincipalFrom(r.Context()); ok && principal.IsEditor() {
			next.ServeHTTP(w, r)
			return
		}
		raw := strings.TrimSpace(r.Header.Get(auth.APIKeyHeader))
		if raw == "" {
			if a.Required {
				a.Metrics.Rejected("missing_key")
				writeError(w, auth.ErrNotAuthenticated)
				return
			}
			next.ServeHTTP(w, r)
			return
		}
		if a.Keys == nil {
			next.ServeHTTP(w, r)
			return
		}
		key, err := a.Keys.Check(r.Context(), raw)
		if err != nil {
			if status, _ := mapError(err); status >= http.StatusInternalServerError && a.Logger != nil {
				a.Logger.Error("http.api_key.failed", "error", err)
			}
			a.Metrics.Rejected("invalid_key")
			writeError(w, err)
			return
		}
		if a.Throttle != nil {
			if err := a.Throttle.Allow(r.Context(), key.KeyHash); err != nil {
				if status, _ := mapError(err); status >= http.StatusInternalServerError && a.Logger != nil {
					a.Logger.Error("http.throttle.failed", "error", err)
				}
				var throttled *auth.ThrottledError
				if errors.As(err, &throttled) {
					w.Header().Set("Retry-After", strconv.Itoa(int(throttled.Window.Seconds())))
				}
				a.Metrics.Rejected("throttled")
				writeError(w, err)
				return
			}
		}
		ctx := auth.WithPrincipal(r.Context(), &auth.Principal{APIKeyID: key.ID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
