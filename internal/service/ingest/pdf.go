package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"studydash/internal/domain/services"
)

// minPrintableRun is the shortest byte run the raw scan keeps.
const minPrintableRun = 4

// pdfConverter extracts text from page content streams with pdfcpu. When
// the document cannot be read or has no text operators, it falls back to
// scanning the raw bytes for printable runs.
type pdfConverter struct {
	logger *slog.Logger
}

func NewPDFConverter(logger *slog.Logger) services.ContentConverter {
	return &pdfConverter{logger: logger}
}

func (c *pdfConverter) Convert(ctx context.Context, input []byte) (string, error) {
	text, err := c.extractPages(ctx, input)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		c.logger.Warn("pdf content extraction failed, scanning raw bytes", "error", err)
		return scanPrintableRuns(input), nil
	}
	if strings.TrimSpace(text) == "" {
		c.logger.Debug("pdf has no text operators, scanning raw bytes")
		return scanPrintableRuns(input), nil
	}
	return text, nil
}

func (c *pdfConverter) SupportedExtensions() []string {
	return []string{".pdf"}
}

func (c *pdfConverter) Name() string {
	return "pdf"
}

// extractPages returns page texts joined by newlines, in page order.
func (c *pdfConverter) extractPages(ctx context.Context, input []byte) (text string, err error) {
	// pdfcpu can panic on malformed uploads
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdfcpu panic: %v", r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(input), conf)
	if err != nil {
		return "", err
	}

	var pages []string
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		r, err := pdfcpu.ExtractPageContent(pdfCtx, pageNr)
		if err != nil || r == nil {
			c.logger.Debug("skipping unreadable pdf page", "page", pageNr, "error", err)
			continue
		}
		data, err := io.ReadAll(r)
		if err != nil {
			continue
		}
		if text := textFromContentStream(data); text != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n"), nil
}

// pdfStringRe matches string literals in parentheses: (text here)
var pdfStringRe = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)`)

// textFromContentStream interprets the text showing operators (Tj, TJ, ')
// and line movement (Td, TD, T*) of a page content stream. Line structure
// is kept since module headings are line based.
func textFromContentStream(data []byte) string {
	var sb strings.Builder
	newline := func() {
		if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteByte('\n')
		}
	}

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		switch {
		case len(line) == 0:
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			writeStrings(&sb, line)
		case bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")):
			newline()
			writeStrings(&sb, line)
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			// "tx ty Td": a vertical move starts a new line
			if f := bytes.Fields(line); len(f) >= 3 && !isZero(f[len(f)-2]) {
				newline()
			} else if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
		case bytes.Equal(line, []byte("T*")), bytes.Equal(line, []byte("ET")):
			newline()
		}
	}

	return tidyLines(sb.String())
}

func writeStrings(sb *strings.Builder, line []byte) {
	for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
		sb.WriteString(decodePDFString(m[1]))
	}
}

func isZero(num []byte) bool {
	return strings.Trim(string(num), "-+0.") == ""
}

// decodePDFString handles the escape sequences of PDF literal strings.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			// Octal escape, up to three digits (e.g. \040 for space)
			if raw[i] < '0' || raw[i] > '7' {
				sb.WriteByte(raw[i])
				continue
			}
			val := int(raw[i] - '0')
			for n := 0; n < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; n++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}
			sb.WriteByte(byte(val))
		}
	}
	return sb.String()
}

// tidyLines collapses spaces within lines and drops empty lines.
func tidyLines(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// scanPrintableRuns is the last resort for unreadable PDFs: every run of
// printable ASCII at least minPrintableRun long, one per line.
func scanPrintableRuns(input []byte) string {
	var runs []string
	start := -1
	flush := func(end int) {
		if start >= 0 && end-start >= minPrintableRun {
			if run := strings.TrimSpace(string(input[start:end])); run != "" {
				runs = append(runs, run)
			}
		}
		start = -1
	}

	for i, b := range input {
		if b >= 0x20 && b <= 0x7e {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(input))

	return strings.Join(runs, "\n")
}
