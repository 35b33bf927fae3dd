package commands

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-lis/internal/pages"
	"github.com/goliatone/go-lis/internal/permissions"
)

type noteMessage struct {
	Text string
}

func (noteMessage) Type() string { return "lis.test.note" }

func (m noteMessage) Validate() error {
	return validation.ValidateStruct(&m, validation.Field(&m.Text, validation.Required))
}

func TestHandlerErrorCodes(t *testing.T) {
	cases := map[string]struct {
		msg      noteMessage
		exec     error
		code     string
		category goerrors.Category
		opaque   bool
	}{
		"invalid message": {
			msg:      noteMessage{},
			code:     CodeInvalid,
			category: goerrors.CategoryValidation,
		},
		"permission refused": {
			msg:      noteMessage{Text: "x"},
			exec:     permissions.Error{Permission: "pages:publish"},
			code:     CodeForbidden,
			category: goerrors.CategoryAuthz,
		},
		"missing revision": {
			msg:      noteMessage{Text: "x"},
			exec:     fmt.Errorf("publish: %w", &pages.NotFoundError{Resource: "revision", Key: "7"}),
			code:     CodeNotFound,
			category: goerrors.CategoryNotFound,
		},
		"field errors from the service": {
			msg:      noteMessage{Text: "x"},
			exec:     validation.Errors{"slug": errors.New("taken")},
			code:     CodeInvalid,
			category: goerrors.CategoryValidation,
			opaque:   true,
		},
		"anything else": {
			msg:      noteMessage{Text: "x"},
			exec:     errors.New("disk full"),
			code:     CodeFailed,
			category: goerrors.CategoryCommand,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := NewHandler(func(context.Context, noteMessage) error { return tc.exec })
			err := h.Execute(context.Background(), tc.msg)
			if got := ErrorCode(err); got != tc.code {
				t.Fatalf("expected code %s, got %q (%v)", tc.code, got, err)
			}
			if !goerrors.IsCategory(err, tc.category) {
				t.Fatalf("expected category %s, got %v", tc.category, err)
			}
			if tc.exec != nil && !tc.opaque && !errors.Is(err, tc.exec) {
				t.Fatalf("expected source error to stay reachable, got %v", err)
			}
		})
	}
}

func TestHandlerSkipsExecutionForInvalidMessage(t *testing.T) {
	called := false
	h := NewHandler(func(context.Context, noteMessage) error {
		called = true
		return nil
	})
	if err := h.Execute(context.Background(), noteMessage{}); err == nil {
		t.Fatal("expected validation error")
	}
	if called {
		t.Fatal("handler ran for an invalid message")
	}
}

func TestHandlerCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	h := NewHandler(func(context.Context, noteMessage) error {
		called = true
		return nil
	})
	err := h.Execute(ctx, noteMessage{Text: "x"})
	if ErrorCode(err) != CodeCanceled || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled code, got %v", err)
	}
	if called {
		t.Fatal("handler ran on a canceled context")
	}
}

func TestHandlerTimeout(t *testing.T) {
	h := NewHandler(func(ctx context.Context, _ noteMessage) error {
		<-ctx.Done()
		return ctx.Err()
	}, WithTimeout[noteMessage](10*time.Millisecond))

	err := h.Execute(context.Background(), noteMessage{Text: "x"})
	if ErrorCode(err) != CodeTimeout {
		t.Fatalf("expected timeout code, got %v", err)
	}
}

func TestHandlerObserverSeesOutcome(t *testing.T) {
	var outcomes []Outcome
	h := NewHandler(func(_ context.Context, msg noteMessage) error {
		if msg.Text == "fail" {
			return errors.New("boom")
		}
		return nil
	},
		WithOperation[noteMessage]("notes.write"),
		WithMessageFields(func(msg noteMessage) map[string]any { return map[string]any{"text": msg.Text} }),
		WithObserver[noteMessage](func(_ context.Context, o Outcome) { outcomes = append(outcomes, o) }),
	)

	_ = h.Execute(context.Background(), noteMessage{Text: "ok"})
	_ = h.Execute(context.Background(), noteMessage{Text: "fail"})

	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	if outcomes[0].Code != "" || outcomes[0].Err != nil {
		t.Fatalf("expected success outcome, got %+v", outcomes[0])
	}
	failed := outcomes[1]
	if failed.Code != CodeFailed || failed.Operation != "notes.write" || failed.Command != "lis.test.note" {
		t.Fatalf("unexpected outcome %+v", failed)
	}
	if failed.Fields["text"] != "fail" || failed.Fields["operation"] != "notes.write" {
		t.Fatalf("expected message fields, got %+v", failed.Fields)
	}
}

func TestErrorCodeIgnoresPlainErrors(t *testing.T) {
	if got := ErrorCode(errors.New("plain")); got != "" {
		t.Fatalf("expected empty code, got %q", got)
	}
	if got := ErrorCode(nil); got != "" {
		t.Fatalf("expected empty code for nil, got %q", got)
	}
}
