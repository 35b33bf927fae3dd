package commands

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	"github.com/goliatone/go-lis/internal/metrics"
)

type flakyCommand struct{}

func (flakyCommand) Type() string { return "lis.test.flaky" }

func (flakyCommand) Validate() error { return nil }

type brokenCommand struct{}

func (brokenCommand) Type() string { return "lis.test.broken" }

func (brokenCommand) Validate() error { return nil }

func TestDispatchRetriesFlakyCommand(t *testing.T) {
	collectors := metrics.New()
	attempts := 0
	handler := NewHandler(func(context.Context, flakyCommand) error {
		attempts++
		if attempts == 1 {
			return errors.New("database is locked")
		}
		return nil
	}, WithMetrics[flakyCommand](collectors))

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(1))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), flakyCommand{}); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}

	body := scrapeMetrics(t, collectors)
	for _, want := range []string{
		`lis_commands_total{command="lis.test.flaky",result="LIS_COMMAND_FAILED"} 1`,
		`lis_commands_total{command="lis.test.flaky",result="ok"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in metrics:\n%s", want, body)
		}
	}
}

func TestDispatchGivesUpAfterRetries(t *testing.T) {
	attempts := 0
	handler := NewHandler(func(context.Context, brokenCommand) error {
		attempts++
		return errors.New("media root not writable")
	})

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(2))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), brokenCommand{}); err == nil {
		t.Fatal("expected error after retries are exhausted")
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func scrapeMetrics(t *testing.T, collectors *metrics.Collectors) string {
	t.Helper()
	rec := httptest.NewRecorder()
	collectors.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	return rec.Body.String()
}
