package di

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-lis/internal/logging"
	"github.com/goliatone/go-lis/internal/logging/console"
	"github.com/goliatone/go-lis/internal/logging/gologger"
	"github.com/goliatone/go-lis/internal/runtimeconfig"
	"github.com/goliatone/go-lis/pkg/interfaces"
)

// newLoggerProvider builds the provider selected by cfg.Provider. The
// console provider writes through the rotating file sink when cfg.File is
// set.
func newLoggerProvider(cfg runtimeconfig.LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "console":
		opts := console.Options{
			Writer: logging.Output(logging.FileConfig{
				Path:       cfg.File,
				MaxSizeMB:  cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
				MaxAgeDays: cfg.MaxAgeDays,
			}, false),
		}
		if level, ok := console.ParseLevel(cfg.Level); ok {
			opts.MinLevel = &level
		}
		return console.NewProvider(opts), nil
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("%w: %q", runtimeconfig.ErrLoggingProviderUnknown, cfg.Provider)
	}
}
