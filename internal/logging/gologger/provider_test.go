package gologger

import (
	"context"
	"testing"

	glog "github.com/goliatone/go-logger/glog"
)

func TestNewProviderFormats(t *testing.T) {
	for _, format := range []string{"", "json", "console", " Pretty "} {
		p, err := NewProvider(Config{Level: "warn", Format: format, Focus: []string{" ", "lis.pages"}})
		if err != nil {
			t.Fatalf("format %q: %v", format, err)
		}
		if p.GetLogger("lis.pages") == nil || p.GetLogger("") == nil {
			t.Fatalf("format %q: expected loggers", format)
		}
	}
	if _, err := NewProvider(Config{Format: "xml"}); err == nil {
		t.Fatal("expected unknown format to be rejected")
	}
}

func TestNormalizeLevel(t *testing.T) {
	cases := map[string]string{
		"TRACE":   glog.Trace,
		"warning": glog.Warn,
		" info ":  glog.Info,
		"verbose": "",
		"":        "",
	}
	for in, want := range cases {
		if got := normalizeLevel(in); got != want {
			t.Fatalf("normalizeLevel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAdapterCopiesFieldsAndForwardsContext(t *testing.T) {
	inner := &recordingLogger{}
	logger := wrap(inner).(*adapter)

	fields := map[string]any{"page_id": "p-1"}
	logger.WithFields(fields).Info("page.published")
	fields["page_id"] = "p-2"

	if len(inner.fields) != 1 || inner.fields[0]["page_id"] != "p-1" {
		t.Fatalf("expected a private copy of the fields, got %v", inner.fields)
	}
	if len(inner.messages) != 1 || inner.messages[0] != "page.published" {
		t.Fatalf("expected message forwarded, got %v", inner.messages)
	}

	ctx := context.WithValue(context.Background(), struct{}{}, "request")
	logger.WithContext(ctx)
	if inner.ctx != ctx {
		t.Fatal("expected context forwarded")
	}
	if logger.WithFields(nil) != logger {
		t.Fatal("expected empty fields to return the same logger")
	}
}

type recordingLogger struct {
	messages []string
	fields   []map[string]any
	ctx      context.Context
}

func (r *recordingLogger) Trace(msg string, _ ...any) { r.messages = append(r.messages, msg) }
func (r *recordingLogger) Debug(msg string, _ ...any) { r.messages = append(r.messages, msg) }
func (r *recordingLogger) Info(msg string, _ ...any)  { r.messages = append(r.messages, msg) }
func (r *recordingLogger) Warn(msg string, _ ...any)  { r.messages = append(r.messages, msg) }
func (r *recordingLogger) Error(msg string, _ ...any) { r.messages = append(r.messages, msg) }
func (r *recordingLogger) Fatal(msg string, _ ...any) { r.messages = append(r.messages, msg) }

func (r *recordingLogger) WithContext(ctx context.Context) glog.Logger {
	r.ctx = ctx
	return r
}

func (r *recordingLogger) WithFields(fields map[string]any) glog.Logger {
	r.fields = append(r.fields, fields)
	return r
}
