// Package i18n implements the three language model of the archive: English
// is stored in the unsuffixed base column, German and Czech in _de and _cs
// columns. Values are resolved against the language carried on the request
// context, never against a cached setting.
package i18n

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Language is one of the supported content languages.
type Language string

const (
	EN Language = "en"
	DE Language = "de"
	CS Language = "cs"
)

// Base is the language stored in unsuffixed columns.
const Base = EN

// Languages lists the supported languages, base first.
var Languages = []Language{EN, DE, CS}

var ErrUnsupportedLanguage = errors.New("i18n: unsupported language")

// ParseLanguage accepts a bare code or a region qualified tag ("de-AT").
func ParseLanguage(code string) (Language, error) {
	normalized := strings.ToLower(strings.TrimSpace(code))
	if primary, _, ok := strings.Cut(strings.ReplaceAll(normalized, "_", "-"), "-"); ok {
		normalized = primary
	}
	switch Language(normalized) {
	case EN, DE, CS:
		return Language(normalized), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
	}
}

func (l Language) String() string { return string(l) }

// Suffix returns the column suffix for l, empty for the base language.
func (l Language) Suffix() string {
	if l == Base || l == "" {
		return ""
	}
	return "_" + string(l)
}

// Column returns the storage column of field for l.
func (l Language) Column(field string) string {
	return field + l.Suffix()
}

// ColumnExpr is the SQL expression reading field of alias in l, falling back
// to the base column when the translated one is empty.
func (l Language) ColumnExpr(alias, field string) string {
	base := alias + "." + field
	if l.Suffix() == "" {
		return base
	}
	return fmt.Sprintf("COALESCE(NULLIF(%s.%s, ''), %s)", alias, l.Column(field), base)
}

type contextKey struct{}

// WithLanguage returns a context carrying lang as the active language.
func WithLanguage(ctx context.Context, lang Language) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, contextKey{}, lang)
}

// LanguageFrom returns the active language, EN when none is set.
func LanguageFrom(ctx context.Context) Language {
	if ctx == nil {
		return Base
	}
	if lang, ok := ctx.Value(contextKey{}).(Language); ok && lang != "" {
		return lang
	}
	return Base
}
