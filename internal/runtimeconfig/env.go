package runtimeconfig

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LookupFunc resolves an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// FromEnv overlays LIS_* environment variables on top of DefaultConfig.
// Malformed values are reported rather than silently ignored.
func FromEnv(lookup LookupFunc) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := envReader{lookup: lookup}
	cfg := DefaultConfig()

	cfg.Server.Addr = env.str("LIS_ADDR", cfg.Server.Addr)
	cfg.Server.ReadTimeout = env.duration("LIS_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = env.duration("LIS_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.ShutdownTimeout = env.duration("LIS_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)
	cfg.Server.MaxWorkers = env.int("LIS_MAX_WORKERS", cfg.Server.MaxWorkers)

	cfg.Database.URL = env.str("LIS_DATABASE_URL", cfg.Database.URL)
	cfg.Database.MaxOpenConns = env.int("LIS_DATABASE_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.Debug = env.bool("LIS_DATABASE_DEBUG", cfg.Database.Debug)

	cfg.Security.SecretKey = env.str("LIS_SECRET_KEY", cfg.Security.SecretKey)
	cfg.Security.SessionKey = env.str("LIS_SESSION_KEY", cfg.Security.SessionKey)
	cfg.Security.SSLRedirect = env.bool("LIS_SSL_REDIRECT", cfg.Security.SSLRedirect)
	cfg.Security.Debug = env.bool("LIS_DEBUG", cfg.Security.Debug)

	cfg.I18N.DefaultLanguage = env.str("LIS_DEFAULT_LANGUAGE", cfg.I18N.DefaultLanguage)

	cfg.API.BasePath = env.str("LIS_API_BASE_PATH", cfg.API.BasePath)
	cfg.API.DefaultLimit = env.int("LIS_API_DEFAULT_LIMIT", cfg.API.DefaultLimit)
	cfg.API.MaxLimit = env.int("LIS_API_MAX_LIMIT", cfg.API.MaxLimit)
	cfg.API.RequireAPIKey = env.bool("LIS_API_REQUIRE_KEY", cfg.API.RequireAPIKey)
	cfg.API.RenditionSpec = env.str("LIS_API_RENDITION_SPEC", cfg.API.RenditionSpec)

	cfg.Media.Root = env.str("LIS_MEDIA_ROOT", cfg.Media.Root)
	cfg.Media.URL = env.str("LIS_MEDIA_URL", cfg.Media.URL)
	cfg.Media.RenditionsDir = env.str("LIS_MEDIA_RENDITIONS_DIR", cfg.Media.RenditionsDir)
	cfg.Media.ImagesPath = env.str("LIS_MEDIA_IMAGES_PATH", cfg.Media.ImagesPath)

	cfg.Cache.Enabled = env.bool("LIS_CACHE_ENABLED", cfg.Cache.Enabled)
	cfg.Cache.DefaultTTL = env.duration("LIS_CACHE_TTL", cfg.Cache.DefaultTTL)

	cfg.Throttle.Enabled = env.bool("LIS_THROTTLE_ENABLED", cfg.Throttle.Enabled)
	cfg.Throttle.RedisURL = env.str("LIS_REDIS_URL", cfg.Throttle.RedisURL)
	if raw, ok := env.raw("LIS_THROTTLE_BUCKETS"); ok {
		buckets, err := ParseBuckets(raw)
		if err != nil {
			env.fail("LIS_THROTTLE_BUCKETS", err)
		} else {
			cfg.Throttle.Buckets = buckets
		}
	}

	cfg.Logging.Provider = env.str("LIS_LOG_PROVIDER", cfg.Logging.Provider)
	cfg.Logging.Level = env.str("LIS_LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = env.str("LIS_LOG_FORMAT", cfg.Logging.Format)
	cfg.Logging.AddSource = env.bool("LIS_LOG_ADD_SOURCE", cfg.Logging.AddSource)
	cfg.Logging.File = env.str("LIS_LOG_FILE", cfg.Logging.File)
	cfg.Logging.MaxSizeMB = env.int("LIS_LOG_MAX_SIZE_MB", cfg.Logging.MaxSizeMB)
	cfg.Logging.MaxBackups = env.int("LIS_LOG_MAX_BACKUPS", cfg.Logging.MaxBackups)
	cfg.Logging.MaxAgeDays = env.int("LIS_LOG_MAX_AGE_DAYS", cfg.Logging.MaxAgeDays)
	if raw, ok := env.raw("LIS_LOG_FOCUS"); ok {
		cfg.Logging.Focus = splitList(raw)
	}

	cfg.Schedule.Expression = env.str("LIS_SCHEDULE", cfg.Schedule.Expression)

	cfg.Features.Logger = env.bool("LIS_LOGGER", cfg.Features.Logger)
	cfg.Features.Metrics = env.bool("LIS_METRICS", cfg.Features.Metrics)
	cfg.Features.Scheduling = env.bool("LIS_SCHEDULING", cfg.Features.Scheduling)

	if env.err != nil {
		return Config{}, env.err
	}
	return cfg, nil
}

// ParseBuckets parses "60s:100,1h:10000,24h:0" into throttle buckets.
func ParseBuckets(raw string) ([]ThrottleBucket, error) {
	var buckets []ThrottleBucket
	for part := range strings.SplitSeq(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		window, limit, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("bucket %q must be window:limit", part)
		}
		d, err := time.ParseDuration(strings.TrimSpace(window))
		if err != nil {
			return nil, fmt.Errorf("bucket %q: %w", part, err)
		}
		n, err := strconv.Atoi(strings.TrimSpace(limit))
		if err != nil {
			return nil, fmt.Errorf("bucket %q: %w", part, err)
		}
		buckets = append(buckets, ThrottleBucket{Window: d, Limit: n})
	}
	return buckets, nil
}

type envReader struct {
	lookup LookupFunc
	err    error
}

func (e *envReader) raw(key string) (string, bool) {
	value, ok := e.lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func (e *envReader) fail(key string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("lis config: %s: %w", key, err)
	}
}

func (e *envReader) str(key, fallback string) string {
	if value, ok := e.raw(key); ok {
		return value
	}
	return fallback
}

func (e *envReader) int(key string, fallback int) int {
	value, ok := e.raw(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		e.fail(key, err)
		return fallback
	}
	return parsed
}

func (e *envReader) bool(key string, fallback bool) bool {
	value, ok := e.raw(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		e.fail(key, err)
		return fallback
	}
	return parsed
}

func (e *envReader) duration(key string, fallback time.Duration) time.Duration {
	value, ok := e.raw(key)
	if !ok {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		e.fail(key, err)
		return fallback
	}
	return parsed
}

func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
