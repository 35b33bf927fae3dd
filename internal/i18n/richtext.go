package i18n

import (
	"strings"

	"golang.org/x/net/html"
)

// IsEmptyRichText reports whether markup renders no visible text, so
// "<p></p>" and "<p> &nbsp;</p>" are empty.
func IsEmptyRichText(markup string) bool {
	if IsBlank(markup) {
		return true
	}
	return IsBlank(PlainText(markup))
}

// PlainText strips tags from markup and joins the text nodes with spaces.
// Script and style content is dropped.
func PlainText(markup string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(markup))
	var (
		b    strings.Builder
		skip int
	)
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			if name, _ := tokenizer.TagName(); isHiddenTag(name) {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			if name, _ := tokenizer.TagName(); isHiddenTag(name) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(tokenizer.Text())
			}
		}
	}
}

func isHiddenTag(name []byte) bool {
	switch string(name) {
	case "script", "style":
		return true
	default:
		return false
	}
}
