package i18n

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
)

var markdown = goldmark.New()

// RenderMarkdown converts vocabulary descriptions authored as markdown to
// HTML. Raw HTML in the source is omitted by the default renderer.
func RenderMarkdown(source string) (string, error) {
	if IsBlank(source) {
		return "", nil
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("i18n: render markdown: %w", err)
	}
	return buf.String(), nil
}
