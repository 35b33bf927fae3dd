package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.German,
	language.Czech,
})

// Negotiate picks the request language. An explicit code (the lang query
// parameter) must name a supported language; otherwise the Accept-Language
// header is matched, defaulting to fallback.
func Negotiate(explicit, acceptLanguage string, fallback Language) (Language, error) {
	if strings.TrimSpace(explicit) != "" {
		return ParseLanguage(explicit)
	}
	if fallback == "" {
		fallback = Base
	}
	if strings.TrimSpace(acceptLanguage) == "" {
		return fallback, nil
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback, nil
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return fallback, nil
	}
	return Languages[index], nil
}
