package console_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-lis/internal/logging"
	"github.com/goliatone/go-lis/internal/logging/console"
)

func TestConsoleLoggerWritesSortedFields(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC)
	level := console.LevelDebug

	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
		MinLevel: &level,
	})

	ctx := logging.ContextWithFields(context.Background(), map[string]any{"request_id": "req-1"})
	logger := logging.PagesLogger(provider).WithContext(ctx)
	logger.Info("page.published", "page_id", "p1", "title", "Johann Wolfgang Goethe")

	got := strings.TrimSpace(buf.String())
	want := `2024-03-14T15:09:26Z INFO page.published logger=lis.pages module=lis.pages page_id=p1 request_id=req-1 title="Johann Wolfgang Goethe"`
	if got != want {
		t.Fatalf("unexpected entry\nwant %s\ngot  %s", want, got)
	}
}

func TestConsoleLoggerRespectsMinLevel(t *testing.T) {
	var buf bytes.Buffer
	level := console.LevelWarn
	provider := console.NewProvider(console.Options{Writer: &buf, MinLevel: &level})

	logger := provider.GetLogger("lis.http")
	logger.Info("ignored")
	logger.Error("api.request.failed")

	out := buf.String()
	if strings.Contains(out, "ignored") {
		t.Fatalf("info entry should be filtered: %q", out)
	}
	if !strings.Contains(out, "ERROR api.request.failed") {
		t.Fatalf("expected error entry, got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]console.Level{
		"trace":   console.LevelTrace,
		"WARNING": console.LevelWarn,
		"":        console.LevelInfo,
	}
	for input, want := range cases {
		got, ok := console.ParseLevel(input)
		if !ok || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", input, got, ok)
		}
	}
	if _, ok := console.ParseLevel("verbose"); ok {
		t.Fatalf("expected unknown level to be rejected")
	}
}
