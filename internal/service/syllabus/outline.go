package syllabus

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"studydash/internal/domain"
	"studydash/internal/domain/models"
)

// LoadOutlineYAML reads a hand-written course outline:
//
//	name: Database Systems
//	code: BCSE302L
//	modules:
//	  - number: 1
//	    name: Introduction
//	    topics: [Data models, Schemas]
//
// Unnumbered modules are numbered by position. Names are trimmed and blank
// topics dropped; structural checks happen when the course is created.
func LoadOutlineYAML(data []byte) (models.Outline, error) {
	var outline models.Outline

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&outline); err != nil {
		return models.Outline{}, fmt.Errorf("%w: invalid outline yaml: %v", domain.ErrValidation, err)
	}

	outline.Name = strings.TrimSpace(outline.Name)
	outline.Code = strings.TrimSpace(outline.Code)
	if outline.Name == "" {
		outline.Name = models.UnknownCourseName
	}
	if outline.Code == "" {
		outline.Code = models.UnknownCourseCode
	}

	if outline.Modules == nil {
		outline.Modules = []models.OutlineModule{}
	}
	for i := range outline.Modules {
		m := &outline.Modules[i]
		if m.Number <= 0 {
			m.Number = i + 1
		}
		m.Name = strings.TrimSpace(m.Name)
		topics := make([]string, 0, len(m.Topics))
		for _, t := range m.Topics {
			if t = strings.TrimSpace(t); t != "" {
				topics = append(topics, t)
			}
		}
		m.Topics = topics
	}
	sort.SliceStable(outline.Modules, func(i, j int) bool {
		return outline.Modules[i].Number < outline.Modules[j].Number
	})

	return outline, nil
}
