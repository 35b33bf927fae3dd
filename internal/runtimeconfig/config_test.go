package runtimeconfig

import (
	"errors"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Security.SecretKey = "secret"
	return cfg
}

func TestDefaultConfigRequiresSecretKey(t *testing.T) {
	if err := DefaultConfig().Validate(); !errors.Is(err, ErrSecretKeyRequired) {
		t.Fatalf("expected ErrSecretKeyRequired, got %v", err)
	}
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected defaults with a secret to validate, got %v", err)
	}
}

func TestValidateRejectsInconsistentSettings(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"unknown driver", func(c *Config) { c.Database.URL = "mysql://db" }, ErrDatabaseDriverUnknown},
		{"language", func(c *Config) { c.I18N.DefaultLanguage = "fr" }, ErrDefaultLanguageInvalid},
		{"short session key", func(c *Config) { c.Security.SessionKey = "short" }, ErrSessionKeyTooShort},
		{"limits", func(c *Config) { c.API.MaxLimit = 5 }, ErrAPILimitInvalid},
		{"bucket", func(c *Config) { c.Throttle.Buckets = []ThrottleBucket{{Window: 0, Limit: 1}} }, ErrThrottleBucketInvalid},
		{"provider", func(c *Config) { c.Logging.Provider = "syslog" }, ErrLoggingProviderUnknown},
		{"format", func(c *Config) { c.Logging.Provider = "gologger"; c.Logging.Format = "xml" }, ErrLoggingFormatInvalid},
		{"schedule", func(c *Config) { c.Schedule.Expression = " " }, ErrScheduleRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestDatabaseDriver(t *testing.T) {
	cases := map[string]string{
		"sqlite://lis.db":             "sqlite",
		"file::memory:?cache=shared":  "sqlite",
		"postgres://u:p@localhost/db": "postgres",
	}
	for url, want := range cases {
		got, err := DatabaseConfig{URL: url}.Driver()
		if err != nil || got != want {
			t.Fatalf("Driver(%q) = %q, %v", url, got, err)
		}
	}
}

func TestFromEnvOverlaysDefaults(t *testing.T) {
	env := map[string]string{
		"LIS_SECRET_KEY":       "s3cret",
		"LIS_DATABASE_URL":     "postgres://lis@localhost/lis",
		"LIS_SSL_REDIRECT":     "true",
		"LIS_MAX_WORKERS":      "3",
		"LIS_THROTTLE_BUCKETS": "30s:10, 1h:0",
		"LIS_LOG_FOCUS":        "lis.pages, ,lis.http",
		"LIS_SCHEDULE":         "@every 10m",
	}
	cfg, err := FromEnv(func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	})
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Security.SecretKey != "s3cret" || !cfg.Security.SSLRedirect {
		t.Fatalf("security not applied: %+v", cfg.Security)
	}
	if cfg.Server.MaxWorkers != 3 || cfg.Server.Workers() > 3 {
		t.Fatalf("expected worker cap of 3, got %d", cfg.Server.Workers())
	}
	if len(cfg.Throttle.Buckets) != 2 || cfg.Throttle.Buckets[0].Window != 30*time.Second || cfg.Throttle.Buckets[1].Limit != 0 {
		t.Fatalf("unexpected buckets %+v", cfg.Throttle.Buckets)
	}
	if len(cfg.Logging.Focus) != 2 || cfg.Logging.Focus[1] != "lis.http" {
		t.Fatalf("unexpected focus %v", cfg.Logging.Focus)
	}
	if cfg.Schedule.Expression != "@every 10m" {
		t.Fatalf("expected schedule override, got %q", cfg.Schedule.Expression)
	}
	if cfg.API.BasePath != "/api/v2" {
		t.Fatalf("expected default base path, got %q", cfg.API.BasePath)
	}
}

func TestFromEnvReportsMalformedValues(t *testing.T) {
	_, err := FromEnv(func(key string) (string, bool) {
		if key == "LIS_DEBUG" {
			return "maybe", true
		}
		return "", false
	})
	if err == nil {
		t.Fatalf("expected malformed bool to be reported")
	}
}
