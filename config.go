package lis

import "github.com/goliatone/go-lis/internal/runtimeconfig"

var (
	ErrSecretKeyRequired      = runtimeconfig.ErrSecretKeyRequired
	ErrDatabaseURLRequired    = runtimeconfig.ErrDatabaseURLRequired
	ErrDatabaseDriverUnknown  = runtimeconfig.ErrDatabaseDriverUnknown
	ErrDefaultLanguageInvalid = runtimeconfig.ErrDefaultLanguageInvalid
	ErrSessionKeyTooShort     = runtimeconfig.ErrSessionKeyTooShort
	ErrAPILimitInvalid        = runtimeconfig.ErrAPILimitInvalid
	ErrThrottleBucketInvalid  = runtimeconfig.ErrThrottleBucketInvalid
	ErrMediaRootRequired      = runtimeconfig.ErrMediaRootRequired
	ErrScheduleRequired       = runtimeconfig.ErrScheduleRequired
	ErrLoggingProviderUnknown = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid    = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid   = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config         = runtimeconfig.Config
	ServerConfig   = runtimeconfig.ServerConfig
	DatabaseConfig = runtimeconfig.DatabaseConfig
	SecurityConfig = runtimeconfig.SecurityConfig
	I18NConfig     = runtimeconfig.I18NConfig
	APIConfig      = runtimeconfig.APIConfig
	MediaConfig    = runtimeconfig.MediaConfig
	CacheConfig    = runtimeconfig.CacheConfig
	ThrottleConfig = runtimeconfig.ThrottleConfig
	ThrottleBucket = runtimeconfig.ThrottleBucket
	ScheduleConfig = runtimeconfig.ScheduleConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
	Features       = runtimeconfig.Features
)

// DefaultConfig returns development defaults. A secret key must still be set.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// ConfigFromEnv overlays LIS_* environment variables on the defaults.
func ConfigFromEnv() (Config, error) {
	return runtimeconfig.FromEnv(nil)
}
