package models

// Sentinels returned when course metadata cannot be extracted from a syllabus.
const (
	UnknownCourseName = "Unknown Course"
	UnknownCourseCode = "Unknown Code"
)

// Outline is the bare structure of a course: names only, no progress.
// It is what the syllabus parser produces and what is stored under course_<id>.
type Outline struct {
	Name    string          `json:"course_name" yaml:"name"`
	Code    string          `json:"course_code" yaml:"code"`
	Modules []OutlineModule `json:"modules" yaml:"modules"`
}

type OutlineModule struct {
	Number int      `json:"module_number" yaml:"number"`
	Name   string   `json:"module_name" yaml:"name"`
	Topics []string `json:"topics" yaml:"topics"`
}

// Degraded reports whether the outline came from a syllabus the parser could
// not make sense of, so the user should correct it by hand. A module without
// topics counts, since a course cannot be created from it as is.
func (o Outline) Degraded() bool {
	if o.Name == UnknownCourseName || o.Code == UnknownCourseCode || len(o.Modules) == 0 {
		return true
	}
	for _, m := range o.Modules {
		if len(m.Topics) == 0 {
			return true
		}
	}
	return false
}

// NewCourse builds a fresh course from an outline with nothing completed.
func NewCourse(id string, o Outline) Course {
	c := Course{
		ID:      id,
		Name:    o.Name,
		Code:    o.Code,
		Modules: make([]Module, 0, len(o.Modules)),
	}
	for _, om := range o.Modules {
		m := Module{Number: om.Number, Name: om.Name, Topics: make([]Topic, 0, len(om.Topics))}
		for _, name := range om.Topics {
			m.Topics = append(m.Topics, Topic{Name: name, Materials: []Material{}})
		}
		c.Modules = append(c.Modules, m)
	}
	c.SortModules()
	return c
}

// Outline projects the course back to its names-only structure.
func (c *Course) Outline() Outline {
	o := Outline{Name: c.Name, Code: c.Code, Modules: make([]OutlineModule, 0, len(c.Modules))}
	for _, m := range c.Modules {
		om := OutlineModule{Number: m.Number, Name: m.Name, Topics: make([]string, 0, len(m.Topics))}
		for _, t := range m.Topics {
			om.Topics = append(om.Topics, t.Name)
		}
		o.Modules = append(o.Modules, om)
	}
	return o
}

// MergeProgress overlays saved progress on a stored outline. Progress is
// authoritative for structure and state; blank names in it are filled from
// the outline at the same index. A nil progress yields a fresh course.
func MergeProgress(id string, o Outline, progress *Course) Course {
	if progress == nil {
		return NewCourse(id, o)
	}

	c := *progress
	c.ID = id
	if c.Name == "" {
		c.Name = o.Name
	}
	if c.Code == "" {
		c.Code = o.Code
	}
	c.Modules = make([]Module, len(progress.Modules))
	for i, pm := range progress.Modules {
		m := pm
		m.Topics = make([]Topic, len(pm.Topics))
		copy(m.Topics, pm.Topics)
		if i < len(o.Modules) {
			om := o.Modules[i]
			if m.Name == "" {
				m.Name = om.Name
			}
			if m.Number == 0 {
				m.Number = om.Number
			}
			for j := range m.Topics {
				if m.Topics[j].Name == "" && j < len(om.Topics) {
					m.Topics[j].Name = om.Topics[j]
				}
			}
		}
		for j := range m.Topics {
			if m.Topics[j].Materials == nil {
				m.Topics[j].Materials = []Material{}
			}
		}
		m.RecomputeCompleted()
		c.Modules[i] = m
	}
	return c
}
