package main

import (
	"context"
	"fmt"
	"os"

	lis "github.com/goliatone/go-lis"
	"github.com/goliatone/go-lis/internal/runtimeconfig"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.LookupEnv).Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the state shared by every subcommand.
type app struct {
	lookup   runtimeconfig.LookupFunc
	dbURL    string
	logLevel string
}

func newRootCmd(lookup runtimeconfig.LookupFunc) *cobra.Command {
	a := &app{lookup: lookup}

	rootCmd := &cobra.Command{
		Use:          "lis",
		Short:        "Literary memorials archive",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.dbURL, "db", "", "database URL, overrides LIS_DATABASE_URL")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level, overrides LIS_LOG_LEVEL")

	rootCmd.AddCommand(a.serveCmd())
	rootCmd.AddCommand(a.migrateCmd())
	rootCmd.AddCommand(a.publishScheduledCmd())
	rootCmd.AddCommand(a.pruneRenditionsCmd())
	rootCmd.AddCommand(a.signImageCmd())
	rootCmd.AddCommand(a.createEditorCmd())
	rootCmd.AddCommand(a.createAPIKeyCmd())

	return rootCmd
}

func (a *app) config() (lis.Config, error) {
	cfg, err := runtimeconfig.FromEnv(a.lookup)
	if err != nil {
		return lis.Config{}, err
	}
	if a.dbURL != "" {
		cfg.Database.URL = a.dbURL
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	return cfg, nil
}

// open builds the module from the environment. Callers close it.
func (a *app) open(ctx context.Context) (*lis.Module, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	module, err := lis.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return module, nil
}
