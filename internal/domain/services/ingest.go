package services

import "context"

// ContentConverter converts one document format to plain text.
// Implementations should be stateless and safe for concurrent use.
type ContentConverter interface {
	// Convert returns the text content of input
	Convert(ctx context.Context, input []byte) (string, error)

	// SupportedExtensions returns file extensions this converter handles,
	// with the leading dot (e.g. [".html", ".htm"])
	SupportedExtensions() []string

	// Name returns a converter name for logging
	Name() string
}

// ContentExtractor flattens an uploaded document to plain text
type ContentExtractor interface {
	// Extract returns the text of content, choosing a converter by filename extension
	Extract(ctx context.Context, filename string, content []byte) (string, error)
}
