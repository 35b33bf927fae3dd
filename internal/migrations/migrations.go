package migrations

import (
	"context"
	"fmt"

	"github.com/goliatone/go-lis/internal/logging"
	"github.com/goliatone/go-lis/pkg/interfaces"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migrations holds every schema migration of the archive. Files register
// themselves from init so the name is taken from the file name.
var Migrations = migrate.NewMigrations()

// Runner applies and rolls back schema migrations.
type Runner struct {
	migrator *migrate.Migrator
	logger   interfaces.Logger
}

// NewRunner binds the registered migrations to db.
func NewRunner(db *bun.DB, logger interfaces.Logger) *Runner {
	return &Runner{
		migrator: migrate.NewMigrator(db, Migrations,
			migrate.WithTableName("lis_migrations"),
			migrate.WithLocksTableName("lis_migration_locks"),
		),
		logger: logging.Ensure(logger),
	}
}

// Up applies every pending migration and returns the names applied.
func (r *Runner) Up(ctx context.Context) ([]string, error) {
	if err := r.migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("migrations: init: %w", err)
	}
	if err := r.migrator.Lock(ctx); err != nil {
		return nil, fmt.Errorf("migrations: lock: %w", err)
	}
	defer func() {
		if err := r.migrator.Unlock(ctx); err != nil {
			r.logger.Warn("migrations.unlock.failed", "error", err)
		}
	}()

	group, err := r.migrator.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrations: migrate: %w", err)
	}
	if group.IsZero() {
		r.logger.Info("migrations.up.current")
		return nil, nil
	}
	names := migrationNames(group.Migrations)
	r.logger.Info("migrations.up.applied", "group", group.ID, "migrations", names)
	return names, nil
}

// Down rolls back the last applied group.
func (r *Runner) Down(ctx context.Context) ([]string, error) {
	if err := r.migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("migrations: init: %w", err)
	}
	if err := r.migrator.Lock(ctx); err != nil {
		return nil, fmt.Errorf("migrations: lock: %w", err)
	}
	defer func() {
		if err := r.migrator.Unlock(ctx); err != nil {
			r.logger.Warn("migrations.unlock.failed", "error", err)
		}
	}()

	group, err := r.migrator.Rollback(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrations: rollback: %w", err)
	}
	if group.IsZero() {
		return nil, nil
	}
	names := migrationNames(group.Migrations)
	r.logger.Info("migrations.down.rolled_back", "group", group.ID, "migrations", names)
	return names, nil
}

// Pending lists migrations that have not been applied yet.
func (r *Runner) Pending(ctx context.Context) ([]string, error) {
	if err := r.migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("migrations: init: %w", err)
	}
	all, err := r.migrator.MigrationsWithStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrations: status: %w", err)
	}
	return migrationNames(all.Unapplied()), nil
}

func migrationNames(list migrate.MigrationSlice) []string {
	names := make([]string, 0, len(list))
	for _, m := range list {
		names = append(names, m.Name)
	}
	return names
}
