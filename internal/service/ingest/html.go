package ingest

import (
	"context"
	"fmt"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"studydash/internal/domain/services"
	"studydash/internal/service/ingest/sanitizer"
)

// htmlConverter sanitises HTML, then converts it to markdown so headings
// and list items survive as plain text lines.
type htmlConverter struct {
	sanitizer *sanitizer.HTMLSanitizer
	converter *md.Converter
}

func NewHTMLConverter() services.ContentConverter {
	return &htmlConverter{
		sanitizer: sanitizer.NewHTMLSanitizer(),
		// Escaping would turn "1. Intro" headings into "1\. Intro"
		converter: md.NewConverter("", true, &md.Options{BulletListMarker: "-", EscapeMode: "disabled"}),
	}
}

func (c *htmlConverter) Convert(ctx context.Context, input []byte) (string, error) {
	sanitized := c.sanitizer.Sanitize(string(input))

	markdown, err := c.converter.ConvertString(sanitized)
	if err != nil {
		return "", fmt.Errorf("convert HTML to markdown: %w", err)
	}
	return markdown, nil
}

func (c *htmlConverter) SupportedExtensions() []string {
	return []string{".html", ".htm"}
}

func (c *htmlConverter) Name() string {
	return "html"
}
