package syllabus

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExtractTopics(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty",
			text: "",
			want: []string{},
		},
		{
			name: "whitespace only",
			text: " \n\t ",
			want: []string{},
		},
		{
			name: "bullets preserve order and trim",
			text: "• Alpha Beta • Gamma Delta",
			want: []string{"Alpha Beta", "Gamma Delta"},
		},
		{
			name: "bullets across lines",
			text: "- Relational model\n- Keys and constraints\n* Normal forms",
			want: []string{"Relational model", "Keys and constraints", "Normal forms"},
		},
		{
			name: "bullet interrupted by digit is dropped",
			text: "• Week 3 review • Indexing • Hashing • Query plans",
			want: []string{"Indexing", "Hashing", "Query plans"},
		},
		{
			name: "short bullets skipped then delimiter tier fills in",
			text: "• SQL • Transactions and recovery, Concurrency control; Locking protocols",
			want: []string{"Transactions and recovery, Concurrency control; Locking protocols", "Concurrency control", "Locking protocols"},
		},
		{
			name: "delimiter tier",
			text: "Entity relationship modelling, Relational algebra, Functional dependencies, ok",
			want: []string{"Entity relationship modelling", "Relational algebra", "Functional dependencies"},
		},
		{
			name: "delimiter tier keeps the whole text, sentence tier splits it",
			text: "Introduction to storage. Buffer management. Tiny. 42 things",
			want: []string{"Introduction to storage. Buffer management. Tiny. 42 things", "Introduction to storage", "Buffer management"},
		},
		{
			name: "duplicates removed",
			text: "Query optimisation; Join algorithms; Query optimisation; Join algorithms; " + strings.Repeat("9", 100),
			want: []string{"Query optimisation", "Join algorithms"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTopics(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractTopics(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractTopicsProperties(t *testing.T) {
	inputs := []string{
		"• Alpha • Alpha • Beta Gamma",
		"one, two, three, four, five, six",
		"Some. Sentences. That repeat. That repeat. Again and again",
		strings.Repeat("Module content with words, ", 20),
		"- a - bb - ccc - dddd - eeeee",
		"• é accents • Ünïcode topic name • plain",
	}

	for _, in := range inputs {
		got := ExtractTopics(in)
		seen := map[string]bool{}
		for _, topic := range got {
			if seen[topic] {
				t.Errorf("ExtractTopics(%q) returned duplicate %q", in, topic)
			}
			seen[topic] = true
			if utf8.RuneCountInString(topic) <= 3 {
				t.Errorf("ExtractTopics(%q) returned short topic %q", in, topic)
			}
		}
	}
}

func TestCollectBullets(t *testing.T) {
	topics := newTopicSet()
	collectBullets("x-ray imaging - Ultrasound basics", topics)

	want := []string{"ray imaging", "Ultrasound basics"}
	if !reflect.DeepEqual(topics.items, want) {
		t.Errorf("collectBullets() = %q, want %q", topics.items, want)
	}
}
