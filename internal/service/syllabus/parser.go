package syllabus

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"studydash/internal/config"
	"studydash/internal/domain/models"
)

var (
	courseCodeRe  = regexp.MustCompile(`([A-Z]{2,4}\d{3}[A-Z]?)`)
	courseNameRe  = regexp.MustCompile(`([A-Z]{2,4}\d{3}[A-Z]?)\s*[-:]?\s*([A-Za-z\s&]+?)(?:\s*L\s|\s*\(|\s*\d|\s*$)`)
	courseTitleRe = regexp.MustCompile(`(?i)Course\s*Title\s*:?\s*([A-Za-z\s&]+)`)
	sectionRe     = regexp.MustCompile(`(\d+)\.\s*([A-Za-z\s&]+)`)
)

// moduleHeader is one way a syllabus may introduce its modules.
type moduleHeader struct {
	name string
	re   *regexp.Regexp
}

// moduleHeaders are tried in order; the first one with any match wins.
var moduleHeaders = []moduleHeader{
	{name: "module-colon", re: regexp.MustCompile(`(?i)Module\s*:?\s*(\d+)\s*[-:]\s*([^0-9\n]+)(?:\s*\d+\s*hours)?`)},
	{name: "module-dash", re: regexp.MustCompile(`(?i)Module\s*(\d+)\s*[-:]\s*([^0-9\n]+)(?:\s*\d+\s*hours)?`)},
	{name: "numbered-heading", re: regexp.MustCompile(`(?m)(\d+)\.\s*([A-Za-z\s&]+?)(?:\s*\d+\s*hours|\s*$)`)},
}

const textBookMarker = "Text Book"

// ParseDocument turns flattened syllabus text into a course outline.
// It never fails: unrecognised input yields the sentinel name and code and
// no modules, which callers surface to the user for manual correction.
func ParseDocument(text string) models.Outline {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	outline := models.Outline{
		Name:    extractName(text),
		Code:    extractCode(text),
		Modules: []models.OutlineModule{},
	}

	for _, h := range moduleHeaders {
		if modules := segmentByHeader(text, h.re); len(modules) > 0 {
			outline.Modules = modules
			break
		}
	}
	if len(outline.Modules) == 0 {
		outline.Modules = segmentBySection(text)
	}

	sort.SliceStable(outline.Modules, func(i, j int) bool {
		return outline.Modules[i].Number < outline.Modules[j].Number
	})
	return outline
}

func extractCode(text string) string {
	if m := courseCodeRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return models.UnknownCourseCode
}

// extractName tries the name that follows the course code, then a
// "Course Title:" label.
func extractName(text string) string {
	if m := courseNameRe.FindStringSubmatch(text); m != nil {
		if name := strings.TrimSpace(m[2]); name != "" {
			return name
		}
	}
	if m := courseTitleRe.FindStringSubmatch(text); m != nil {
		if name := strings.TrimSpace(m[1]); name != "" {
			return name
		}
	}
	return models.UnknownCourseName
}

// segmentByHeader collects one module per header match. A module body runs
// from the end of its header to the next "Module <n+1>", else to the
// "Text Book" marker, else to the end of the text.
//
// The next-module search is literal, so a table of contents or a skipped
// module number can mis-bound a body.
func segmentByHeader(text string, re *regexp.Regexp) []models.OutlineModule {
	var modules []models.OutlineModule
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		number, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		name := strings.TrimSpace(text[loc[4]:loc[5]])

		start := loc[1]
		end := indexFrom(text, "Module "+strconv.Itoa(number+1), start)
		if end < 0 {
			end = indexFrom(text, textBookMarker, start)
		}
		if end < 0 {
			end = len(text)
		}

		modules = append(modules, newOutlineModule(number, name, text[start:end]))
	}
	return modules
}

// segmentBySection is the last resort: generic "N. Name" sections with a
// plausible module number. A body runs to the next "<n+1>." or the end.
func segmentBySection(text string) []models.OutlineModule {
	modules := []models.OutlineModule{}
	for _, loc := range sectionRe.FindAllStringSubmatchIndex(text, -1) {
		number, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil || number < config.MinSectionNumber || number > config.MaxSectionNumber {
			continue
		}
		name := strings.TrimSpace(text[loc[4]:loc[5]])

		start := loc[1]
		end := indexFrom(text, strconv.Itoa(number+1)+".", start)
		if end < 0 {
			end = len(text)
		}

		modules = append(modules, newOutlineModule(number, name, text[start:end]))
	}
	return modules
}

func newOutlineModule(number int, name, body string) models.OutlineModule {
	topics := ExtractTopics(body)
	if len(topics) > config.MaxTopicsPerParsedModule {
		topics = topics[:config.MaxTopicsPerParsedModule]
	}
	return models.OutlineModule{Number: number, Name: name, Topics: topics}
}

// indexFrom is strings.Index starting at byte offset from.
func indexFrom(s, substr string, from int) int {
	if from > len(s) {
		return -1
	}
	i := strings.Index(s[from:], substr)
	if i < 0 {
		return -1
	}
	return from + i
}
