package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-lis/internal/auth"
	"github.com/goliatone/go-lis/pkg/testsupport"
)

func TestBunRepositories(t *testing.T) {
	ctx := context.Background()
	db := testsupport.NewBunDB(t, (*auth.Editor)(nil), (*auth.APIKey)(nil))

	editors := auth.NewEditors(auth.NewBunEditorRepository(db), nil)
	if _, err := editors.Create(ctx, "jana", "pass-word", "admin"); err != nil {
		t.Fatalf("create editor: %v", err)
	}
	if _, err := editors.Create(ctx, "jana", "pass-word"); !errors.Is(err, auth.ErrEditorExists) {
		t.Fatalf("expected ErrEditorExists, got %v", err)
	}
	editor, err := editors.Authenticate(ctx, "jana", "pass-word")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if len(editor.Groups) != 1 || editor.Groups[0] != "ADMIN" {
		t.Fatalf("unexpected groups %v", editor.Groups)
	}

	keys := auth.NewAPIKeys(auth.NewBunAPIKeyRepository(db))
	raw, _, err := keys.Issue(ctx, "partner")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := keys.Check(ctx, raw); err != nil {
		t.Fatalf("check: %v", err)
	}
	checked, err := keys.Check(ctx, raw)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if checked.Requests != 2 {
		t.Fatalf("expected 2 counted requests, got %d", checked.Requests)
	}
}
