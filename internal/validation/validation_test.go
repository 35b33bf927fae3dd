package validation

import (
	"errors"
	"testing"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

func TestWrapFlattensNestedFields(t *testing.T) {
	err := Wrap(ozzo.Errors{
		"title": ozzo.ErrRequired,
		"names.0": ozzo.Errors{
			"last_name":  ozzo.ErrRequired,
			"first_name": nil,
		},
		"slug": nil,
	}, "author validation failed", "AUTHOR_INVALID")

	if !IsInvalid(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	issues := Issues(err)
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %+v", issues)
	}
	if issues[0].Field != "names.0.last_name" || issues[1].Field != "title" {
		t.Fatalf("unexpected fields %+v", issues)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category")
	}
}

func TestWrapIgnoresPassingFields(t *testing.T) {
	if err := Wrap(ozzo.Errors{"title": nil}, "x", "X"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if err := Wrap(nil, "x", "X"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestPlainErrorsBecomeSingleIssue(t *testing.T) {
	err := Wrap(errors.New("bad input"), "x", "X")
	issues := Issues(err)
	if len(issues) != 1 || issues[0].Message != "bad input" || issues[0].Field != "" {
		t.Fatalf("unexpected issues %+v", issues)
	}
	if IsInvalid(errors.New("other")) {
		t.Fatalf("plain errors are not validation failures")
	}
}
