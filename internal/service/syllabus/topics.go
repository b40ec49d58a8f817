package syllabus

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"studydash/internal/config"
)

// topicStrategy appends candidate topics found in cleaned text to the set.
type topicStrategy struct {
	name    string
	collect func(text string, topics *topicSet)
}

// topicStrategies run in order; each later one only runs while fewer than
// config.MinTopicsBeforeFallback topics have been collected.
var topicStrategies = []topicStrategy{
	{name: "bullets", collect: collectBullets},
	{name: "delimiters", collect: collectDelimited},
	{name: "sentences", collect: collectSentences},
}

// ExtractTopics returns the ordered, de-duplicated candidate topics in a
// block of loosely structured text. The result is never nil.
func ExtractTopics(text string) []string {
	clean := cleanText(text)
	topics := newTopicSet()
	if clean == "" {
		return topics.items
	}

	for _, s := range topicStrategies {
		if topics.len() >= config.MinTopicsBeforeFallback {
			break
		}
		s.collect(clean, topics)
	}
	return topics.items
}

// cleanText collapses all whitespace, newlines included, to single spaces.
func cleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

type topicSet struct {
	items []string
	seen  map[string]struct{}
}

func newTopicSet() *topicSet {
	return &topicSet{items: []string{}, seen: map[string]struct{}{}}
}

func (s *topicSet) len() int { return len(s.items) }

// add keeps the first occurrence of each exact string.
func (s *topicSet) add(topic string) {
	if _, ok := s.seen[topic]; ok {
		return
	}
	s.seen[topic] = struct{}{}
	s.items = append(s.items, topic)
}

func isBullet(r rune) bool {
	return r == '•' || r == '-' || r == '*'
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// collectBullets finds items introduced by a bullet marker (•, - or *).
// An item starts with a letter, runs up to the next marker or the end of
// the text, and is dropped if a digit or newline interrupts it first.
func collectBullets(text string, topics *topicSet) {
	runes := []rune(text)
	n := len(runes)

	for i := 0; i < n; i++ {
		if !isBullet(runes[i]) {
			continue
		}

		start := i + 1
		for start < n && unicode.IsSpace(runes[start]) {
			start++
		}
		if start >= n || !isASCIILetter(runes[start]) {
			continue
		}

		end := start + 1
		for end < n && !isBullet(runes[end]) && runes[end] != '\n' && !isASCIIDigit(runes[end]) {
			end++
		}
		// Item must be at least two characters and end at a marker or the end.
		if end == start+1 || (end < n && !isBullet(runes[end])) {
			continue
		}

		topic := strings.TrimSpace(string(runes[start:end]))
		if utf8.RuneCountInString(topic) > 3 {
			topics.add(topic)
		}
		// Resume at the marker that ended this item.
		i = end - 1
	}
}

// collectDelimited splits on commas and semicolons.
func collectDelimited(text string, topics *topicSet) {
	parts := strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == ';' })
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if utf8.RuneCountInString(p) > 5 && startsWithLetter(p) {
			topics.add(p)
		}
	}
}

// collectSentences splits on periods and newlines, keeping mid-length pieces.
func collectSentences(text string, topics *topicSet) {
	parts := strings.FieldsFunc(text, func(r rune) bool { return r == '.' || r == '\n' })
	for _, p := range parts {
		p = strings.TrimSpace(p)
		length := utf8.RuneCountInString(p)
		if length > 5 && length < 100 && startsWithLetter(p) {
			topics.add(p)
		}
	}
}

func startsWithLetter(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return isASCIILetter(r)
}
