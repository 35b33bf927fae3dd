package di

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-lis/internal/auth"
	"github.com/goliatone/go-lis/internal/authors"
	lishttp "github.com/goliatone/go-lis/internal/http"
	"github.com/goliatone/go-lis/internal/i18n"
	"github.com/goliatone/go-lis/internal/logging"
	"github.com/goliatone/go-lis/internal/media"
	"github.com/goliatone/go-lis/internal/memorials"
	"github.com/goliatone/go-lis/internal/metrics"
	"github.com/goliatone/go-lis/internal/pages"
	"github.com/goliatone/go-lis/internal/runtimeconfig"
	"github.com/goliatone/go-lis/internal/storage"
	"github.com/goliatone/go-lis/internal/tags"
	"github.com/goliatone/go-lis/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
)

// Container wires repositories, services and HTTP surfaces from a runtime
// configuration. Collaborators supplied through options take precedence over
// the ones built from the config.
type Container struct {
	Config runtimeconfig.Config

	db             *bun.DB
	ownsDB         bool
	loggerProvider interfaces.LoggerProvider
	collectors     *metrics.Collectors
	cacheTTL       time.Duration
	cacheService   repocache.CacheService
	keySerializer  repocache.KeySerializer
	files          media.FileStore
	counter        auth.Counter
	redis          *redis.Client
	clock          func() time.Time

	pageRepo     pages.PageRepository
	authorRepo   authors.Repository
	memorialRepo memorials.Repository
	tagRepo      tags.Repository
	mediaRepo    media.Repository
	editorRepo   auth.EditorRepository
	apiKeyRepo   auth.APIKeyRepository

	tagSvc         tags.Service
	pageSvc        pages.Service
	authorSvc      authors.Service
	memorialSvc    memorials.Service
	mediaSvc       media.Service
	authorReader   authors.ReadService
	memorialReader memorials.ReadService

	editors  *auth.Editors
	apiKeys  *auth.APIKeys
	sessions *auth.Sessions
	throttle *auth.Throttle
}

// Option mutates the container before services are built.
type Option func(*Container)

// WithBunDB uses db instead of opening Config.Database.URL. The caller keeps
// ownership and closes it.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.db = db
	}
}

func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithMetrics overrides the collectors created when Features.Metrics is on.
func WithMetrics(collectors *metrics.Collectors) Option {
	return func(c *Container) {
		c.collectors = collectors
	}
}

// WithCache overrides the repository cache built from Config.Cache.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithFileStore replaces the local media directory.
func WithFileStore(files media.FileStore) Option {
	return func(c *Container) {
		c.files = files
	}
}

// WithThrottleCounter replaces the redis or in-memory throttle counter.
func WithThrottleCounter(counter auth.Counter) Option {
	return func(c *Container) {
		c.counter = counter
	}
}

func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// NewContainer validates cfg and builds every service.
func NewContainer(ctx context.Context, cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config:   cfg,
		cacheTTL: cfg.Cache.DefaultTTL,
		clock:    time.Now,
	}
	if c.cacheTTL <= 0 {
		c.cacheTTL = time.Minute
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	if c.collectors == nil && cfg.Features.Metrics {
		c.collectors = metrics.New()
	}
	if err := c.configureStorage(ctx); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()
	c.configureServices()
	if err := c.configureAuth(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}
	provider, err := newLoggerProvider(c.Config.Logging)
	if err != nil {
		return err
	}
	c.loggerProvider = provider
	return nil
}

func (c *Container) configureStorage(ctx context.Context) error {
	if c.db != nil {
		return nil
	}
	db, err := storage.Open(ctx, c.Config.Database, logging.ModuleLogger(c.loggerProvider, "lis.storage"))
	if err != nil {
		return err
	}
	c.db = db
	c.ownsDB = true
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		cfg.TTL = c.cacheTTL
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			logging.ModuleLogger(c.loggerProvider, "lis.storage").Warn("storage.cache.disabled", "error", err)
			return
		}
		c.cacheService = service
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	c.pageRepo = pages.NewBunPageRepositoryWithCache(c.db, c.cacheService, c.keySerializer)
	c.authorRepo = authors.NewBunRepository(c.db)
	c.memorialRepo = memorials.NewBunRepository(c.db)
	c.tagRepo = tags.NewBunRepository(c.db)
	c.mediaRepo = media.NewBunRepository(c.db)
	c.editorRepo = auth.NewBunEditorRepository(c.db)
	c.apiKeyRepo = auth.NewBunAPIKeyRepository(c.db)
	if c.files == nil {
		c.files = media.NewLocalStore(c.Config.Media.Root, c.Config.Media.URL)
	}
}

func (c *Container) configureServices() {
	provider := c.loggerProvider

	c.tagSvc = tags.NewService(c.tagRepo, tags.WithLogger(logging.TagsLogger(provider)))
	c.pageSvc = pages.NewService(c.pageRepo,
		pages.WithLogger(logging.PagesLogger(provider)),
		pages.WithClock(c.clock),
		pages.WithVariant(authors.NewVariant(c.authorRepo, c.tagSvc)),
		pages.WithVariant(memorials.NewVariant(c.memorialRepo, c.tagSvc, c.authorRepo)),
	)
	c.authorSvc = authors.NewService(c.pageSvc, c.authorRepo, authors.WithLogger(logging.AuthorsLogger(provider)))
	c.memorialSvc = memorials.NewService(c.pageSvc, c.memorialRepo, memorials.WithLogger(logging.MemorialsLogger(provider)))
	c.authorReader = authors.NewDBReadService(c.db, c.authorRepo, c.tagSvc)
	c.memorialReader = memorials.NewDBReadService(c.db, c.memorialRepo, c.tagSvc)
	c.mediaSvc = media.NewService(c.mediaRepo, c.files, []byte(c.Config.Security.SecretKey),
		media.WithLogger(logging.MediaLogger(provider)),
		media.WithRenditionsDir(c.Config.Media.RenditionsDir),
	)
}

func (c *Container) configureAuth(ctx context.Context) error {
	c.editors = auth.NewEditors(c.editorRepo, logging.ModuleLogger(c.loggerProvider, "lis.auth"))
	c.apiKeys = auth.NewAPIKeys(c.apiKeyRepo)

	sessions, err := auth.NewSessions(c.sessionKey())
	if err != nil {
		return err
	}
	c.sessions = sessions

	if !c.Config.Throttle.Enabled {
		return nil
	}
	if c.counter == nil {
		if url := strings.TrimSpace(c.Config.Throttle.RedisURL); url != "" {
			client, err := auth.NewRedisClient(ctx, url)
			if err != nil {
				return err
			}
			c.redis = client
			c.counter = auth.NewRedisCounter(client)
		} else {
			c.counter = auth.NewMemoryCounter(c.clock)
		}
	}
	buckets := make([]auth.Bucket, 0, len(c.Config.Throttle.Buckets))
	for _, bucket := range c.Config.Throttle.Buckets {
		buckets = append(buckets, auth.Bucket{Window: bucket.Window, Limit: bucket.Limit})
	}
	c.throttle = auth.NewThrottle(c.counter, buckets)
	return nil
}

// sessionKey falls back to a key derived from the secret key so a single
// secret is enough for development setups.
func (c *Container) sessionKey() string {
	if key := c.Config.Security.SessionKey; key != "" {
		return key
	}
	sum := sha256.Sum256([]byte("lis-session:" + c.Config.Security.SecretKey))
	return hex.EncodeToString(sum[:])
}

// Handler assembles the HTTP surfaces.
func (c *Container) Handler() (http.Handler, error) {
	httpLogger := logging.HTTPLogger(c.loggerProvider)
	lang, err := i18n.ParseLanguage(c.Config.I18N.DefaultLanguage)
	if err != nil {
		return nil, err
	}

	public := lishttp.NewPublicAPI(
		lishttp.WithPublicBasePath(c.Config.API.BasePath),
		lishttp.WithLimits(c.Config.API.DefaultLimit, c.Config.API.MaxLimit),
		lishttp.WithAuthorReader(c.authorReader),
		lishttp.WithMemorialReader(c.memorialReader),
		lishttp.WithTags(c.tagSvc),
		lishttp.WithImages(c.mediaSvc, c.Config.API.RenditionSpec),
		lishttp.WithPublicLogger(httpLogger),
	)
	admin := lishttp.NewAdminAPI(
		lishttp.WithPages(c.pageSvc),
		lishttp.WithAuthors(c.authorSvc),
		lishttp.WithAuthorSearch(c.authorReader),
		lishttp.WithMemorials(c.memorialSvc),
		lishttp.WithAdminTags(c.tagSvc),
		lishttp.WithEditors(c.editors, c.sessions),
		lishttp.WithAdminMetrics(c.collectors),
		lishttp.WithAdminLogger(httpLogger),
	)

	return lishttp.NewHandler(lishttp.ServerOptions{
		Public:   public,
		Admin:    admin,
		Images:   lishttp.NewImageHandler(c.Config.Media.ImagesPath, c.mediaSvc, httpLogger),
		Sessions: c.sessions,
		Access: lishttp.APIAccess{
			Keys:     c.apiKeys,
			Throttle: c.throttle,
			Required: c.Config.API.RequireAPIKey,
			Logger:   httpLogger,
		},
		Metrics:         c.collectors,
		Health:          c.Ping,
		DefaultLanguage: lang,
		SSLRedirect:     c.Config.Security.SSLRedirect,
		Workers:         c.Config.Server.Workers(),
		Logger:          httpLogger,
	})
}

// Ping checks the database and, when configured, redis.
func (c *Container) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if c.redis != nil {
		if err := c.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Close releases the connections the container opened itself.
func (c *Container) Close() error {
	var errs error
	if c.redis != nil {
		errs = errors.Join(errs, c.redis.Close())
	}
	if c.ownsDB && c.db != nil {
		errs = errors.Join(errs, c.db.Close())
	}
	return errs
}

func (c *Container) DB() *bun.DB                               { return c.db }
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.loggerProvider }
func (c *Container) Metrics() *metrics.Collectors              { return c.collectors }
func (c *Container) PageService() pages.Service                { return c.pageSvc }
func (c *Container) AuthorService() authors.Service            { return c.authorSvc }
func (c *Container) MemorialService() memorials.Service        { return c.memorialSvc }
func (c *Container) TagService() tags.Service                  { return c.tagSvc }
func (c *Container) MediaService() media.Service               { return c.mediaSvc }
func (c *Container) AuthorReader() authors.ReadService         { return c.authorReader }
func (c *Container) MemorialReader() memorials.ReadService     { return c.memorialReader }
func (c *Container) Editors() *auth.Editors                    { return c.editors }
func (c *Container) APIKeys() *auth.APIKeys                    { return c.apiKeys }
func (c *Container) Sessions() *auth.Sessions                  { return c.sessions }
func (c *Container) Throttle() *auth.Throttle                  { return c.throttle }
