package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-lis/pkg/interfaces"
)

type recordingLogger struct {
	fields []map[string]any
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	r.fields = append(r.fields, fields)
	return r
}

func (r *recordingLogger) WithContext(context.Context) interfaces.Logger {
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "lis.test")
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	logger.WithContext(context.Background()).Info("dropped")
}

func TestModuleLoggerAttachesModuleField(t *testing.T) {
	recorder := &recordingLogger{}
	provider := &stubProvider{logger: recorder}

	PagesLogger(provider)

	if len(provider.requested) != 1 || provider.requested[0] != "lis.pages" {
		t.Fatalf("expected lis.pages to be requested, got %v", provider.requested)
	}
	if len(recorder.fields) != 1 || recorder.fields[0]["module"] != "lis.pages" {
		t.Fatalf("expected module field, got %v", recorder.fields)
	}
}

func TestWithPageContextSkipsBlankValues(t *testing.T) {
	recorder := &recordingLogger{}

	WithPageContext(recorder, "abc", " ", "")

	if len(recorder.fields) != 1 {
		t.Fatalf("expected a single WithFields call, got %d", len(recorder.fields))
	}
	got := recorder.fields[0]
	if got[fieldPageID] != "abc" {
		t.Fatalf("expected page id field, got %v", got)
	}
	if _, ok := got[fieldPageKind]; ok {
		t.Fatalf("blank kind must be skipped, got %v", got)
	}
}

func TestContextWithFieldsMerges(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"request_id": "r1"})
	ctx = ContextWithFields(ctx, map[string]any{"lang": "de"})

	fields := ContextFields(ctx)
	if fields["request_id"] != "r1" || fields["lang"] != "de" {
		t.Fatalf("expected merged fields, got %v", fields)
	}

	fields["request_id"] = "mutated"
	if ContextFields(ctx)["request_id"] != "r1" {
		t.Fatalf("ContextFields must return a copy")
	}
}
