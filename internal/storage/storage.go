package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-lis/internal/logging"
	"github.com/goliatone/go-lis/internal/runtimeconfig"
	"github.com/goliatone/go-lis/pkg/interfaces"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

const pingTimeout = 5 * time.Second

// Open connects to the database selected by cfg.URL and verifies the
// connection.
func Open(ctx context.Context, cfg runtimeconfig.DatabaseConfig, logger interfaces.Logger) (*bun.DB, error) {
	driver, err := cfg.Driver()
	if err != nil {
		return nil, err
	}

	var db *bun.DB
	switch driver {
	case "sqlite":
		sqlDB, err := sql.Open("sqlite3", SQLiteDSN(cfg.URL))
		if err != nil {
			return nil, fmt.Errorf("storage: open sqlite: %w", err)
		}
		// sqlite serialises writers, a single connection avoids busy errors
		sqlDB.SetMaxOpenConns(1)
		db = bun.NewDB(sqlDB, sqlitedialect.New())
	case "postgres":
		sqlDB, err := sql.Open("postgres", strings.TrimSpace(cfg.URL))
		if err != nil {
			return nil, fmt.Errorf("storage: open postgres: %w", err)
		}
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
			sqlDB.SetMaxIdleConns(cfg.MaxOpenConns)
		}
		db = bun.NewDB(sqlDB, pgdialect.New())
	}

	logger = logging.Ensure(logger)
	if cfg.Debug {
		db.AddQueryHook(&queryLogger{logger: logger})
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: ping %s: %w", driver, err)
	}

	logger.Info("storage.opened", "driver", driver)
	return db, nil
}

// SQLiteDSN turns a sqlite:// URL into a go-sqlite3 data source with foreign
// keys enabled. file: DSNs are passed through untouched.
func SQLiteDSN(url string) string {
	url = strings.TrimSpace(url)
	if strings.HasPrefix(url, "file:") {
		return url
	}
	path := strings.TrimPrefix(url, "sqlite://")
	if path == "" || path == ":memory:" {
		return "file::memory:?cache=shared&_foreign_keys=1"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return "file:" + path + sep + "_foreign_keys=1"
}

// queryLogger logs every statement at debug level.
type queryLogger struct {
	logger interfaces.Logger
}

func (h *queryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *queryLogger) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	args := []any{
		"operation", event.Operation(),
		"duration", time.Since(event.StartTime),
		"query", event.Query,
	}
	if event.Err != nil && event.Err != sql.ErrNoRows {
		h.logger.Warn("storage.query.failed", append(args, "error", event.Err)...)
		return
	}
	h.logger.Debug("storage.query", args...)
}
