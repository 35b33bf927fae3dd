package memorials

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-lis/internal/i18n"
)

// Paragraph is one structured section of a memorial description.
type Paragraph struct {
	Heading   string     `json:"heading,omitempty"`
	ImageIDs  []int64    `json:"images,omitempty"`
	Content   string     `json:"content"`
	Footnotes []Footnote `json:"footnotes,omitempty"`
	Editor    string     `json:"editor"`
}

type Footnote struct {
	Tag      string `json:"tag"`
	Footnote string `json:"footnote"`
}

var richRequired = validation.By(func(value any) error {
	markup, _ := value.(string)
	if i18n.IsEmptyRichText(markup) {
		return validation.ErrRequired
	}
	return nil
})

func (p Paragraph) Validate() error {
	errs := validation.Errors{
		"heading": validation.Validate(p.Heading, validation.Length(0, 255)),
		"content": validation.Validate(p.Content, richRequired),
		"editor":  validation.Validate(p.Editor, validation.Required, validation.Length(1, 255)),
	}
	for i, note := range p.Footnotes {
		noteErrs := validation.Errors{
			"tag":      validation.Validate(note.Tag, validation.Required, validation.Length(1, 32)),
			"footnote": validation.Validate(note.Footnote, richRequired),
		}.Filter()
		if noteErrs != nil {
			errs[fmt.Sprintf("footnotes.%d", i)] = noteErrs
		}
	}
	return errs.Filter()
}

// PlainText flattens the heading and content of paragraphs.
func PlainText(paragraphs []Paragraph) string {
	parts := make([]string, 0, len(paragraphs)*2)
	for _, p := range paragraphs {
		if h := strings.TrimSpace(p.Heading); h != "" {
			parts = append(parts, h)
		}
		if c := i18n.PlainText(p.Content); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}

func cloneParagraphs(list []Paragraph) []Paragraph {
	if list == nil {
		return nil
	}
	out := make([]Paragraph, len(list))
	for i, p := range list {
		out[i] = p
		out[i].ImageIDs = append([]int64(nil), p.ImageIDs...)
		out[i].Footnotes = append([]Footnote(nil), p.Footnotes...)
	}
	return out
}
