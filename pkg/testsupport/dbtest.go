package testsupport

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var dbCounter atomic.Int64

// NewSQLiteMemoryDB opens a private in-memory sqlite database. Connections
// opened through the returned handle share the same data.
func NewSQLiteMemoryDB(name string) (*sql.DB, error) {
	name = strings.NewReplacer("/", "_", " ", "_").Replace(name)
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=1", name, dbCounter.Add(1))
	return sql.Open("sqlite3", dsn)
}

// NewBunDB returns a bun handle over a fresh in-memory database with a table
// created for every model. The database is closed when the test ends.
func NewBunDB(t testing.TB, models ...any) *bun.DB {
	t.Helper()
	sqlDB, err := NewSQLiteMemoryDB(t.Name())
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})

	ctx := context.Background()
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			t.Fatalf("create table %T: %v", model, err)
		}
	}
	return db
}
