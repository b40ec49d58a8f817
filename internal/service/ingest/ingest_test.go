package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"studydash/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestRegistryExtract(t *testing.T) {
	r := NewRegistry(testLogger)
	ctx := context.Background()

	tests := []struct {
		name        string
		filename    string
		content     string
		wantContain []string
		wantAbsent  []string
		wantErr     error
	}{
		{
			name:        "plain text passthrough",
			filename:    "syllabus.TXT",
			content:     "Module 1 - Basics\n- Processes",
			wantContain: []string{"Module 1 - Basics\n- Processes"},
		},
		{
			name:        "markdown passthrough",
			filename:    "outline.md",
			content:     "# CSE301\n* Threads",
			wantContain: []string{"* Threads"},
		},
		{
			name:        "html sanitised and converted",
			filename:    "syllabus.html",
			content:     `<h2>1. Basics</h2><ul><li>Processes</li><li onclick="x()">Threads</li></ul><script>alert(1)</script>`,
			wantContain: []string{"1. Basics", "- Processes", "- Threads"},
			wantAbsent:  []string{"alert", "onclick", `1\.`},
		},
		{
			name:     "unsupported extension",
			filename: "slides.pptx",
			content:  "x",
			wantErr:  domain.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Extract(ctx, tt.filename, []byte(tt.content))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Extract() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			for _, s := range tt.wantContain {
				if !strings.Contains(got, s) {
					t.Errorf("Extract() = %q, missing %q", got, s)
				}
			}
			for _, s := range tt.wantAbsent {
				if strings.Contains(got, s) {
					t.Errorf("Extract() = %q, should not contain %q", got, s)
				}
			}
		})
	}
}

func TestPDFConverterFallsBackToRawScan(t *testing.T) {
	c := NewPDFConverter(testLogger)

	input := []byte("\x00\x01BCSE302L Database Systems\x00\xff\x02Module 1 - Intro\x00ab\x00")
	got, err := c.Convert(context.Background(), input)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	want := "BCSE302L Database Systems\nModule 1 - Intro"
	if got != want {
		t.Errorf("Convert() = %q, want %q", got, want)
	}
}

func TestTextFromContentStream(t *testing.T) {
	stream := []byte(strings.Join([]string{
		"BT",
		"/F1 12 Tf",
		"72 720 Td",
		"(CSE301 Operating Systems) Tj",
		"0 -14 Td",
		"(Module 1 - Basics) Tj",
		"T*",
		"[(\\225 Pro) -20 (cesses)] TJ",
		"10 0 Td",
		"(\\(core\\)) Tj",
		"(Threads) '",
		"ET",
	}, "\n"))

	got := textFromContentStream(stream)
	want := "CSE301 Operating Systems\nModule 1 - Basics\n\x95 Processes (core)\nThreads"
	if got != want {
		t.Errorf("textFromContentStream() = %q, want %q", got, want)
	}
}

func TestDecodePDFString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: `plain`, want: "plain"},
		{in: `a\(b\)`, want: "a(b)"},
		{in: `tab\there`, want: "tab\there"},
		{in: `oct\040al`, want: "oct al"},
		{in: `back\\slash`, want: `back\slash`},
		{in: `trailing\`, want: `trailing\`},
	}
	for _, tt := range tests {
		if got := decodePDFString([]byte(tt.in)); got != tt.want {
			t.Errorf("decodePDFString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
