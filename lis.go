package lis

import (
	"context"
	"net/http"

	"github.com/goliatone/go-lis/internal/authors"
	"github.com/goliatone/go-lis/internal/di"
	"github.com/goliatone/go-lis/internal/logging"
	"github.com/goliatone/go-lis/internal/media"
	"github.com/goliatone/go-lis/internal/memorials"
	"github.com/goliatone/go-lis/internal/migrations"
	"github.com/goliatone/go-lis/internal/pages"
	"github.com/goliatone/go-lis/internal/tags"
	"github.com/goliatone/go-lis/pkg/interfaces"
)

// PageService exports the page lifecycle contract.
type PageService = pages.Service

// AuthorService exports the author profile contract.
type AuthorService = authors.Service

// MemorialService exports the memorial contract.
type MemorialService = memorials.Service

// TagService exports the tag vocabulary contract.
type TagService = tags.Service

// MediaService exports the signed image contract.
type MediaService = media.Service

// Module is the top level archive runtime.
type Module struct {
	container *di.Container
}

// New builds a module from cfg, opening the configured database unless a
// di.WithBunDB option supplies one.
func New(ctx context.Context, cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Migrate applies pending schema migrations and returns their names.
func (m *Module) Migrate(ctx context.Context) ([]string, error) {
	runner := migrations.NewRunner(m.container.DB(), m.Logger("lis.migrations"))
	return runner.Up(ctx)
}

// Handler returns the HTTP handler serving the public API, the admin API
// and signed images.
func (m *Module) Handler() (http.Handler, error) {
	return m.container.Handler()
}

// Logger returns a named module logger, a no-op one when logging is off.
func (m *Module) Logger(name string) interfaces.Logger {
	return logging.ModuleLogger(m.container.LoggerProvider(), name)
}

func (m *Module) Pages() PageService         { return m.container.PageService() }
func (m *Module) Authors() AuthorService     { return m.container.AuthorService() }
func (m *Module) Memorials() MemorialService { return m.container.MemorialService() }
func (m *Module) Tags() TagService           { return m.container.TagService() }
func (m *Module) Media() MediaService        { return m.container.MediaService() }

// Close releases database and redis connections owned by the module.
func (m *Module) Close() error {
	return m.container.Close()
}
