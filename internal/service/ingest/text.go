package ingest

import (
	"context"

	"studydash/internal/domain/services"
)

// textConverter passes plain text through.
type textConverter struct{}

func NewTextConverter() services.ContentConverter {
	return &textConverter{}
}

func (c *textConverter) Convert(ctx context.Context, input []byte) (string, error) {
	return string(input), nil
}

func (c *textConverter) SupportedExtensions() []string {
	return []string{".txt", ".text"}
}

func (c *textConverter) Name() string {
	return "plaintext"
}

// markdownConverter passes markdown through; its list markers are what the
// topic extractor's bullet strategy looks for.
type markdownConverter struct{}

func NewMarkdownConverter() services.ContentConverter {
	return &markdownConverter{}
}

func (c *markdownConverter) Convert(ctx context.Context, input []byte) (string, error) {
	return string(input), nil
}

func (c *markdownConverter) SupportedExtensions() []string {
	return []string{".md", ".markdown"}
}

func (c *markdownConverter) Name() string {
	return "markdown"
}
