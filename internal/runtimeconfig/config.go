package runtimeconfig

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

var (
	ErrSecretKeyRequired      = errors.New("lis config: secret key is required")
	ErrDatabaseURLRequired    = errors.New("lis config: database url is required")
	ErrDatabaseDriverUnknown  = errors.New("lis config: database url scheme must be sqlite or postgres")
	ErrDefaultLanguageInvalid = errors.New("lis config: default language must be one of en, de, cs")
	ErrSessionKeyTooShort     = errors.New("lis config: session key must be at least 32 characters")
	ErrAPILimitInvalid        = errors.New("lis config: api default limit must be positive and not exceed max limit")
	ErrThrottleBucketInvalid  = errors.New("lis config: throttle bucket window must be positive and limit zero or positive")
	ErrMediaRootRequired      = errors.New("lis config: media root is required")
	ErrScheduleRequired       = errors.New("lis config: schedule expression is required when scheduling is enabled")
	ErrLoggingProviderUnknown = errors.New("lis config: logging provider is invalid")
	ErrLoggingLevelInvalid    = errors.New("lis config: logging level is invalid")
	ErrLoggingFormatInvalid   = errors.New("lis config: logging format is invalid")
)

// Config aggregates every runtime setting of the archive.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Security SecurityConfig
	I18N     I18NConfig
	API      APIConfig
	Media    MediaConfig
	Cache    CacheConfig
	Throttle ThrottleConfig
	Schedule ScheduleConfig
	Logging  LoggingConfig
	Features Features
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	// MaxWorkers bounds concurrently served requests. The effective limit is
	// min(2*NumCPU+1, MaxWorkers).
	MaxWorkers int
}

// DatabaseConfig selects the storage backend. URL schemes sqlite:// and
// postgres:// are supported.
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	Debug        bool
}

type SecurityConfig struct {
	SecretKey   string
	SessionKey  string
	SSLRedirect bool
	Debug       bool
}

type I18NConfig struct {
	DefaultLanguage string
}

// APIConfig configures the public read API.
type APIConfig struct {
	BasePath      string
	DefaultLimit  int
	MaxLimit      int
	RequireAPIKey bool
	RenditionSpec string
}

type MediaConfig struct {
	Root          string
	URL           string
	RenditionsDir string
	ImagesPath    string
}

type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// ThrottleBucket allows Limit requests per Window; a zero Limit never throttles.
type ThrottleBucket struct {
	Window time.Duration
	Limit  int
}

type ThrottleConfig struct {
	Enabled  bool
	RedisURL string
	Buckets  []ThrottleBucket
}

// ScheduleConfig drives the scheduled publishing sweep run by serve.
type ScheduleConfig struct {
	Expression string
}

type LoggingConfig struct {
	Provider   string
	Level      string
	Format     string
	AddSource  bool
	Focus      []string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Features toggles optional subsystems.
type Features struct {
	Logger     bool
	Metrics    bool
	Scheduling bool
}

// DefaultConfig returns development defaults backed by a local sqlite file.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8000",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxWorkers:      8,
		},
		Database: DatabaseConfig{
			URL:          "sqlite://lis.db",
			MaxOpenConns: 10,
		},
		I18N: I18NConfig{
			DefaultLanguage: "en",
		},
		API: APIConfig{
			BasePath:      "/api/v2",
			DefaultLimit:  20,
			MaxLimit:      100,
			RenditionSpec: "fill-100x100|jpegquality-60",
		},
		Media: MediaConfig{
			Root:          "media",
			URL:           "/media/",
			RenditionsDir: "images",
			ImagesPath:    "/images",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Throttle: ThrottleConfig{
			Enabled: true,
			Buckets: []ThrottleBucket{
				{Window: time.Minute, Limit: 100},
				{Window: time.Hour, Limit: 10000},
				{Window: 24 * time.Hour, Limit: 0},
			},
		},
		Schedule: ScheduleConfig{
			Expression: "@every 1m",
		},
		Logging: LoggingConfig{
			Provider:   "console",
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		Features: Features{
			Logger:     true,
			Scheduling: true,
		},
	}
}

// Validate performs consistency checks across sections.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Security.SecretKey) == "" {
		return ErrSecretKeyRequired
	}
	if key := cfg.Security.SessionKey; key != "" && len(key) < 32 {
		return ErrSessionKeyTooShort
	}
	if strings.TrimSpace(cfg.Database.URL) == "" {
		return ErrDatabaseURLRequired
	}
	if _, err := cfg.Database.Driver(); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(cfg.I18N.DefaultLanguage)) {
	case "en", "de", "cs":
	default:
		return fmt.Errorf("%w: %q", ErrDefaultLanguageInvalid, cfg.I18N.DefaultLanguage)
	}
	if cfg.API.DefaultLimit <= 0 || cfg.API.MaxLimit < cfg.API.DefaultLimit {
		return ErrAPILimitInvalid
	}
	if strings.TrimSpace(cfg.Media.Root) == "" {
		return ErrMediaRootRequired
	}
	for _, bucket := range cfg.Throttle.Buckets {
		if bucket.Window <= 0 || bucket.Limit < 0 {
			return fmt.Errorf("%w: %s/%d", ErrThrottleBucketInvalid, bucket.Window, bucket.Limit)
		}
	}
	if cfg.Features.Scheduling && strings.TrimSpace(cfg.Schedule.Expression) == "" {
		return ErrScheduleRequired
	}
	if cfg.Features.Logger {
		provider := strings.ToLower(strings.TrimSpace(cfg.Logging.Provider))
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %q", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

// Driver reports the storage backend selected by the database URL.
func (d DatabaseConfig) Driver() (string, error) {
	url := strings.TrimSpace(d.URL)
	switch {
	case strings.HasPrefix(url, "sqlite://"), strings.HasPrefix(url, "file:"):
		return "sqlite", nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return "postgres", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrDatabaseDriverUnknown, url)
	}
}

// Workers returns the effective request concurrency limit.
func (s ServerConfig) Workers() int {
	limit := 2*runtime.NumCPU() + 1
	if s.MaxWorkers > 0 && s.MaxWorkers < limit {
		return s.MaxWorkers
	}
	return limit
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
