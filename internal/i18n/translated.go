package i18n

import (
	"context"
	"strings"
)

// Translated holds one value per supported language.
type Translated[T any] struct {
	EN T `json:"en"`
	DE T `json:"de"`
	CS T `json:"cs"`
}

// Text is a translated plain or rich text value.
type Text = Translated[string]

// In returns the raw stored value for lang without any fallback.
func (t Translated[T]) In(lang Language) T {
	switch lang {
	case DE:
		return t.DE
	case CS:
		return t.CS
	default:
		return t.EN
	}
}

// Set stores value for lang.
func (t *Translated[T]) Set(lang Language, value T) {
	switch lang {
	case DE:
		t.DE = value
	case CS:
		t.CS = value
	default:
		t.EN = value
	}
}

// Resolve returns the value for lang. An empty value falls back to the base
// language when defaultsToBase is set, otherwise the zero value is returned.
func (t Translated[T]) Resolve(lang Language, defaultsToBase bool, isEmpty func(T) bool) T {
	value := t.In(lang)
	if !isEmpty(value) {
		return value
	}
	if defaultsToBase && lang != Base {
		if base := t.In(Base); !isEmpty(base) {
			return base
		}
	}
	var zero T
	return zero
}

// Field declares how a logical translated field resolves.
type Field struct {
	DefaultsToBase bool
	RichText       bool
}

var (
	// Plain resolves strictly to the requested language.
	Plain = Field{}
	// WithDefault falls back to the base language.
	WithDefault = Field{DefaultsToBase: true}
	// Rich falls back to the base language and treats markup without text as empty.
	Rich = Field{DefaultsToBase: true, RichText: true}
)

// Resolve resolves a text value for lang.
func (f Field) Resolve(t Text, lang Language) string {
	isEmpty := IsBlank
	if f.RichText {
		isEmpty = IsEmptyRichText
	}
	return t.Resolve(lang, f.DefaultsToBase, isEmpty)
}

// From resolves a text value for the language active on ctx.
func (f Field) From(ctx context.Context, t Text) string {
	return f.Resolve(t, LanguageFrom(ctx))
}

// ResolveList resolves a translated list; a nil or empty list is empty.
func ResolveList[E any](t Translated[[]E], lang Language, defaultsToBase bool) []E {
	return t.Resolve(lang, defaultsToBase, func(v []E) bool { return len(v) == 0 })
}

// IsBlank reports whether s has no non-whitespace characters.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
