package di

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-lis/internal/authors"
	"github.com/goliatone/go-lis/internal/migrations"
	"github.com/goliatone/go-lis/internal/pages"
	"github.com/goliatone/go-lis/internal/runtimeconfig"
	"github.com/goliatone/go-lis/pkg/testsupport"
)

func testConfig(t *testing.T) runtimeconfig.Config {
	t.Helper()
	cfg := runtimeconfig.DefaultConfig()
	cfg.Security.SecretKey = "container-secret"
	cfg.Media.Root = t.TempDir()
	cfg.Features.Logger = false
	cfg.Features.Metrics = true
	return cfg
}

func newTestContainer(t *testing.T, cfg runtimeconfig.Config) *Container {
	t.Helper()
	ctx := context.Background()
	db := testsupport.NewBunDB(t)
	if _, err := migrations.NewRunner(db, nil).Up(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	container, err := NewContainer(ctx, cfg, WithBunDB(db))
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	return container
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if _, err := NewContainer(context.Background(), cfg); err == nil {
		t.Fatalf("expected missing secret key to fail")
	}
}

func TestContainerServesPublicAPI(t *testing.T) {
	container := newTestContainer(t, testConfig(t))
	ctx := context.Background()

	_, rev, err := container.AuthorService().Create(ctx, authors.CreateRequest{
		Author: &authors.Author{},
		Names:  []*authors.Name{{FirstName: "Franz", LastName: "Kafka"}},
	})
	if err != nil {
		t.Fatalf("create author: %v", err)
	}
	if _, err := container.PageService().Publish(ctx, pages.PublishRequest{RevisionID: rev.ID}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	handler, err := container.Handler()
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v2/authors?lang=de", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Count   int              `json:"count"`
		Results []map[string]any `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 1 || len(body.Results) != 1 {
		t.Fatalf("expected one published author, got %+v", body)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected healthy container, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "lis_http_requests_total") {
		t.Fatalf("expected request metrics to be exposed")
	}
}

func TestContainerThrottleAndSessions(t *testing.T) {
	cfg := testConfig(t)
	cfg.Throttle.Enabled = false
	container := newTestContainer(t, cfg)
	if container.Throttle() != nil {
		t.Fatalf("expected no throttle when disabled")
	}
	if container.Sessions() == nil {
		t.Fatalf("expected sessions derived from the secret key")
	}

	cfg = testConfig(t)
	container = newTestContainer(t, cfg)
	if container.Throttle() == nil {
		t.Fatalf("expected in-memory throttle without redis url")
	}
	if container.Metrics() == nil {
		t.Fatalf("expected metrics collectors")
	}
}

func TestContainerKeepsBorrowedDatabaseOpen(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewBunDB(t)
	container, err := NewContainer(ctx, testConfig(t), WithBunDB(db))
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	if err := container.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("borrowed database was closed: %v", err)
	}
}

func TestLoggerProviderWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lis.log")
	provider, err := newLoggerProvider(runtimeconfig.LoggingConfig{
		Provider:  "console",
		Level:     "warn",
		File:      path,
		MaxSizeMB: 1,
	})
	if err != nil {
		t.Fatalf("provider: %v", err)
	}
	logger := provider.GetLogger("lis.test")
	logger.Info("ignored.entry")
	logger.Warn("written.entry", "key", "value")

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(raw), "ignored.entry") || !strings.Contains(string(raw), "written.entry") {
		t.Fatalf("unexpected log contents %q", raw)
	}

	if _, err := newLoggerProvider(runtimeconfig.LoggingConfig{Provider: "syslog"}); err == nil {
		t.Fatalf("expected unknown provider to fail")
	}
}
