package storage

import (
	"context"
	"testing"

	"github.com/goliatone/go-lis/internal/runtimeconfig"
)

func TestSQLiteDSN(t *testing.T) {
	cases := map[string]string{
		"sqlite://lis.db":              "file:lis.db?_foreign_keys=1",
		"sqlite://data/lis.db?mode=rw": "file:data/lis.db?mode=rw&_foreign_keys=1",
		"sqlite://":                    "file::memory:?cache=shared&_foreign_keys=1",
		"file:custom.db?cache=shared":  "file:custom.db?cache=shared",
	}
	for input, want := range cases {
		if got := SQLiteDSN(input); got != want {
			t.Fatalf("SQLiteDSN(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestOpenSQLite(t *testing.T) {
	cfg := runtimeconfig.DatabaseConfig{URL: "file:storage_open_test?mode=memory&cache=shared", Debug: true}
	db, err := Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	var one int
	if err := db.NewSelect().ColumnExpr("1").Scan(context.Background(), &one); err != nil {
		t.Fatalf("select: %v", err)
	}
	if one != 1 {
		t.Fatalf("expected 1, got %d", one)
	}
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	if _, err := Open(context.Background(), runtimeconfig.DatabaseConfig{URL: "mysql://x"}, nil); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
}
