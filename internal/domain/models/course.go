package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"studydash/internal/domain"
)

// MaterialKind distinguishes uploaded files from saved links
type MaterialKind string

const (
	MaterialFile MaterialKind = "file"
	MaterialLink MaterialKind = "link"
)

// NoteTimestampLayout formats the prefix of each appended note entry
const NoteTimestampLayout = "1/2/2006, 3:04:05 PM"

// Material is a file or link attached to a topic.
// For files, Location is a blob store reference; for links, it is the URL.
type Material struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Kind     MaterialKind `json:"type"`
	Location string       `json:"url"`
	AddedAt  time.Time    `json:"uploadDate"`
}

type Topic struct {
	Name      string     `json:"name"`
	Completed bool       `json:"completed"`
	Materials []Material `json:"materials"`
	Notes     string     `json:"notes"`
}

// Module is a numbered group of topics. Completed is derived from the
// topics and is only written by RecomputeCompleted and SetAllTopics.
type Module struct {
	Number    int     `json:"module_number"`
	Name      string  `json:"module_name"`
	Topics    []Topic `json:"topics"`
	Completed bool    `json:"completed"`
}

// Course is the full tracked state of one course: its outline plus
// per-topic completion, materials and notes.
type Course struct {
	ID       string   `json:"id"`
	Name     string   `json:"course_name"`
	Code     string   `json:"course_code"`
	Modules  []Module `json:"modules"`
	Revision int64    `json:"revision"`
}

// RecomputeCompleted derives the module completion flag from its topics.
func (m *Module) RecomputeCompleted() {
	if len(m.Topics) == 0 {
		m.Completed = false
		return
	}
	for _, t := range m.Topics {
		if !t.Completed {
			m.Completed = false
			return
		}
	}
	m.Completed = true
}

// SetAllTopics marks every topic (and therefore the module) done or not done.
func (m *Module) SetAllTopics(done bool) {
	for i := range m.Topics {
		m.Topics[i].Completed = done
	}
	m.RecomputeCompleted()
}

// Topic returns the topic at index i.
func (m *Module) Topic(i int) (*Topic, error) {
	if i < 0 || i >= len(m.Topics) {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("topic %d not found in module %d", i, m.Number)}
	}
	return &m.Topics[i], nil
}

// ToggleTopic flips the completion of topic i and recomputes the module flag.
func (m *Module) ToggleTopic(i int) error {
	t, err := m.Topic(i)
	if err != nil {
		return err
	}
	t.Completed = !t.Completed
	m.RecomputeCompleted()
	return nil
}

// AddTopics appends new incomplete topics. Blank names are skipped; at least
// one usable name is required.
func (m *Module) AddTopics(names []string) error {
	added := 0
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		m.Topics = append(m.Topics, Topic{Name: name, Materials: []Material{}})
		added++
	}
	if added == 0 {
		return &domain.ValidationError{Message: "at least one topic name is required"}
	}
	m.RecomputeCompleted()
	return nil
}

// RemoveTopic deletes topic i. The last topic of a module cannot be removed.
func (m *Module) RemoveTopic(i int) error {
	if _, err := m.Topic(i); err != nil {
		return err
	}
	if len(m.Topics) <= 1 {
		return &domain.ValidationError{Message: "cannot remove the last topic from a module"}
	}
	m.Topics = append(m.Topics[:i], m.Topics[i+1:]...)
	m.RecomputeCompleted()
	return nil
}

// Module returns the module at index i.
func (c *Course) Module(i int) (*Module, error) {
	if i < 0 || i >= len(c.Modules) {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("module %d not found in course %s", i, c.ID)}
	}
	return &c.Modules[i], nil
}

// AddModule validates and inserts a module, keeping modules sorted by number.
// A zero number is assigned the next number after the highest present.
func (c *Course) AddModule(mod Module) error {
	mod.Name = strings.TrimSpace(mod.Name)
	if mod.Name == "" {
		return &domain.ValidationError{Message: "module name is required"}
	}
	if len(mod.Topics) == 0 {
		return &domain.ValidationError{Message: "module needs at least one topic"}
	}
	if mod.Number <= 0 {
		mod.Number = c.NextModuleNumber()
	}
	for i := range mod.Topics {
		if mod.Topics[i].Materials == nil {
			mod.Topics[i].Materials = []Material{}
		}
	}
	mod.RecomputeCompleted()
	c.Modules = append(c.Modules, mod)
	c.SortModules()
	return nil
}

// NextModuleNumber is one past the highest module number, or 1.
func (c *Course) NextModuleNumber() int {
	highest := 0
	for _, m := range c.Modules {
		if m.Number > highest {
			highest = m.Number
		}
	}
	return highest + 1
}

// RemoveModule deletes module i and everything it owns.
func (c *Course) RemoveModule(i int) (Module, error) {
	if _, err := c.Module(i); err != nil {
		return Module{}, err
	}
	removed := c.Modules[i]
	c.Modules = append(c.Modules[:i], c.Modules[i+1:]...)
	return removed, nil
}

// SortModules orders modules by number. Equal numbers keep insertion order.
func (c *Course) SortModules() {
	sort.SliceStable(c.Modules, func(i, j int) bool {
		return c.Modules[i].Number < c.Modules[j].Number
	})
}

// ResetProgress marks every topic and module incomplete. Materials and
// notes are kept.
func (c *Course) ResetProgress() {
	for i := range c.Modules {
		c.Modules[i].SetAllTopics(false)
	}
}

// Counts returns the total and completed topic counts over the whole course.
func (c *Course) Counts() (total, completed int) {
	for _, m := range c.Modules {
		for _, t := range m.Topics {
			total++
			if t.Completed {
				completed++
			}
		}
	}
	return total, completed
}

// AddMaterial attaches a material. IDs must be unique within the topic.
func (t *Topic) AddMaterial(mat Material) error {
	if mat.ID == "" {
		return &domain.ValidationError{Message: "material id is required"}
	}
	for _, existing := range t.Materials {
		if existing.ID == mat.ID {
			return &domain.ValidationError{Message: fmt.Sprintf("material %s already attached to topic", mat.ID)}
		}
	}
	if mat.Kind == MaterialLink {
		mat.Location = NormalizeLink(mat.Location)
	}
	t.Materials = append(t.Materials, mat)
	return nil
}

// RemoveMaterial deletes a material by id. Unknown ids are a no-op.
func (t *Topic) RemoveMaterial(id string) (Material, bool) {
	for i, mat := range t.Materials {
		if mat.ID == id {
			t.Materials = append(t.Materials[:i], t.Materials[i+1:]...)
			return mat, true
		}
	}
	return Material{}, false
}

// FindMaterial returns the material with the given id.
func (t *Topic) FindMaterial(id string) (Material, bool) {
	for _, mat := range t.Materials {
		if mat.ID == id {
			return mat, true
		}
	}
	return Material{}, false
}

// AppendNote adds a timestamped entry to the notes log. Existing notes are
// never replaced; entries are separated by a blank line.
func (t *Topic) AppendNote(text string, at time.Time) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	entry := fmt.Sprintf("[%s] %s", at.Format(NoteTimestampLayout), text)
	if t.Notes == "" {
		t.Notes = entry
		return
	}
	t.Notes = t.Notes + "\n\n" + entry
}

// ClearNotes empties the notes log.
func (t *Topic) ClearNotes() {
	t.Notes = ""
}

// NormalizeLink prepends https:// to links entered without a scheme.
func NormalizeLink(link string) string {
	link = strings.TrimSpace(link)
	if link == "" || strings.HasPrefix(link, "http") {
		return link
	}
	return "https://" + link
}
