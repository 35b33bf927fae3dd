package authors

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-lis/internal/i18n"
)

var errNameRequired = validation.NewError("validation_name_required", "either a first name or a last name is required")

// Validate rejects names without a base first or last name.
func (n *Name) Validate() error {
	if i18n.IsBlank(n.FirstName) && i18n.IsBlank(n.LastName) {
		return validation.Errors{"last_name": errNameRequired}
	}
	return validation.Errors{
		"title":      validation.Validate(n.Title, validation.Length(0, 255)),
		"first_name": validation.Validate(n.FirstName, validation.Length(0, 255)),
		"last_name":  validation.Validate(n.LastName, validation.Length(0, 255)),
		"birth_name": validation.Validate(n.BirthName, validation.Length(0, 255)),
	}.Filter()
}

// FullName joins title, first and last name in lang. English uses the base
// columns, the other languages fall back to them per component.
func (n *Name) FullName(lang i18n.Language) string {
	if lang == i18n.Base {
		return joinName(n.Title, n.FirstName, n.LastName)
	}
	return joinName(
		i18n.WithDefault.Resolve(n.Titles(), lang),
		i18n.WithDefault.Resolve(n.FirstNames(), lang),
		i18n.WithDefault.Resolve(n.LastNames(), lang),
	)
}

// FullNames derives the page titles.
func (n *Name) FullNames() i18n.Text {
	return i18n.Text{EN: n.FullName(i18n.EN), DE: n.FullName(i18n.DE), CS: n.FullName(i18n.CS)}
}

// Display renders the name in the language of ctx.
func (n *Name) Display(ctx context.Context) string {
	return joinName(
		i18n.WithDefault.From(ctx, n.Titles()),
		i18n.WithDefault.From(ctx, n.FirstNames()),
		i18n.WithDefault.From(ctx, n.LastNames()),
	)
}

// DisplayWithBirthName appends "(born X)" when the birth name resolves in
// the language of ctx. The wording follows gender.
func (n *Name) DisplayWithBirthName(ctx context.Context, gender Gender) string {
	name := n.Display(ctx)
	birth := strings.TrimSpace(i18n.WithDefault.From(ctx, n.BirthNames()))
	if birth == "" {
		return name
	}
	key := "born.male"
	if gender == GenderFemale {
		key = "born.female"
	}
	born := i18n.DefaultCatalog().Translate(i18n.LanguageFrom(ctx), key)
	return name + " (" + born + " " + birth + ")"
}

func joinName(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, " ")
}
