package models

import (
	"errors"
	"strings"
	"testing"
	"testing/quick"
	"time"

	"studydash/internal/domain"
)

func newModule(number int, names ...string) Module {
	m := Module{Number: number, Name: "Module", Topics: []Topic{}}
	for _, n := range names {
		m.Topics = append(m.Topics, Topic{Name: n, Materials: []Material{}})
	}
	return m
}

func completionHolds(m Module) bool {
	want := len(m.Topics) > 0
	for _, t := range m.Topics {
		want = want && t.Completed
	}
	return m.Completed == want
}

func TestModuleCompletionInvariant(t *testing.T) {
	// Each op byte picks an action: toggle, bulk set, add topic, remove topic.
	f := func(ops []uint8, initial uint8) bool {
		m := newModule(1, "Alpha")
		for i := 0; i < int(initial%5); i++ {
			_ = m.AddTopics([]string{"Extra"})
		}
		for _, op := range ops {
			idx := int(op>>2) % len(m.Topics)
			switch op % 4 {
			case 0:
				if err := m.ToggleTopic(idx); err != nil {
					return false
				}
			case 1:
				m.SetAllTopics(op&0x10 != 0)
			case 2:
				if err := m.AddTopics([]string{"Added"}); err != nil {
					return false
				}
			case 3:
				before := len(m.Topics)
				err := m.RemoveTopic(idx)
				if before == 1 && (err == nil || len(m.Topics) != 1) {
					return false
				}
			}
			if len(m.Topics) == 0 || !completionHolds(m) {
				return false
			}
		}
		return true
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestToggleTopic(t *testing.T) {
	m := newModule(1, "Alpha", "Beta")

	if err := m.ToggleTopic(0); err != nil {
		t.Fatalf("ToggleTopic() error = %v", err)
	}
	if m.Completed {
		t.Error("module completed with one topic still open")
	}
	if err := m.ToggleTopic(1); err != nil {
		t.Fatalf("ToggleTopic() error = %v", err)
	}
	if !m.Completed {
		t.Error("module not completed after all topics done")
	}
	if err := m.ToggleTopic(0); err != nil {
		t.Fatalf("ToggleTopic() error = %v", err)
	}
	if m.Completed {
		t.Error("module still completed after reopening a topic")
	}

	err := m.ToggleTopic(5)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("ToggleTopic(5) error = %v, want ErrNotFound", err)
	}
}

func TestRemoveLastTopicRejected(t *testing.T) {
	m := newModule(1, "Only")

	err := m.RemoveTopic(0)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("RemoveTopic() error = %v, want ErrValidation", err)
	}
	if len(m.Topics) != 1 {
		t.Errorf("topic count = %d, want 1", len(m.Topics))
	}
}

func TestRemoveTopicRecomputesCompletion(t *testing.T) {
	m := newModule(1, "Done", "Open")
	_ = m.ToggleTopic(0)

	if err := m.RemoveTopic(1); err != nil {
		t.Fatalf("RemoveTopic() error = %v", err)
	}
	if !m.Completed {
		t.Error("module should be completed once only finished topics remain")
	}
}

func TestAddModule(t *testing.T) {
	tests := []struct {
		name        string
		existing    []int
		add         Module
		wantErr     bool
		wantNumbers []int
	}{
		{
			name:        "assigns next number",
			existing:    []int{1, 4},
			add:         newModule(0, "Topic"),
			wantNumbers: []int{1, 4, 5},
		},
		{
			name:        "first module gets 1",
			add:         newModule(0, "Topic"),
			wantNumbers: []int{1},
		},
		{
			name:        "sorted after insertion",
			existing:    []int{1, 3},
			add:         newModule(2, "Topic"),
			wantNumbers: []int{1, 2, 3},
		},
		{
			name:     "blank name rejected",
			existing: []int{1},
			add:      Module{Number: 2, Name: "  ", Topics: []Topic{{Name: "x"}}},
			wantErr:  true,
		},
		{
			name:     "no topics rejected",
			existing: []int{1},
			add:      Module{Number: 2, Name: "Empty"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Course{ID: "1"}
			for _, n := range tt.existing {
				c.Modules = append(c.Modules, newModule(n, "Topic"))
			}

			err := c.AddModule(tt.add)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AddModule() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if len(c.Modules) != len(tt.existing) {
					t.Errorf("module count changed on rejection: %d", len(c.Modules))
				}
				return
			}
			if len(c.Modules) != len(tt.wantNumbers) {
				t.Fatalf("module count = %d, want %d", len(c.Modules), len(tt.wantNumbers))
			}
			for i, want := range tt.wantNumbers {
				if c.Modules[i].Number != want {
					t.Errorf("Modules[%d].Number = %d, want %d", i, c.Modules[i].Number, want)
				}
			}
		})
	}
}

func TestRemoveMaterialUnknownIDIsNoop(t *testing.T) {
	topic := Topic{Name: "T"}
	_ = topic.AddMaterial(Material{ID: "a", Name: "a.pdf", Kind: MaterialFile})
	_ = topic.AddMaterial(Material{ID: "b", Name: "site", Kind: MaterialLink, Location: "example.com"})

	if _, ok := topic.RemoveMaterial("missing"); ok {
		t.Error("RemoveMaterial(missing) reported a removal")
	}
	if len(topic.Materials) != 2 {
		t.Fatalf("material count = %d, want 2", len(topic.Materials))
	}

	removed, ok := topic.RemoveMaterial("a")
	if !ok || removed.Name != "a.pdf" {
		t.Errorf("RemoveMaterial(a) = %v, %v", removed, ok)
	}
	if _, ok := topic.RemoveMaterial("a"); ok {
		t.Error("second RemoveMaterial(a) reported a removal")
	}
	if len(topic.Materials) != 1 {
		t.Errorf("material count = %d, want 1", len(topic.Materials))
	}
}

func TestAddMaterialDuplicateID(t *testing.T) {
	topic := Topic{Name: "T"}
	if err := topic.AddMaterial(Material{ID: "a", Kind: MaterialFile}); err != nil {
		t.Fatalf("AddMaterial() error = %v", err)
	}
	if err := topic.AddMaterial(Material{ID: "a", Kind: MaterialFile}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("duplicate AddMaterial() error = %v, want ErrValidation", err)
	}
}

func TestNormalizeLink(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare host", in: "example.com/a", want: "https://example.com/a"},
		{name: "https kept", in: "https://example.com", want: "https://example.com"},
		{name: "http kept", in: "http://example.com", want: "http://example.com"},
		{name: "trimmed", in: "  go.dev  ", want: "https://go.dev"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeLink(tt.in); got != tt.want {
				t.Errorf("NormalizeLink(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAppendNote(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	topic := Topic{Name: "T"}

	topic.AppendNote("first", at)
	topic.AppendNote("   ", at)
	topic.AppendNote("second", at.Add(time.Hour))

	want := "[3/5/2024, 2:07:09 PM] first\n\n[3/5/2024, 3:07:09 PM] second"
	if topic.Notes != want {
		t.Errorf("Notes = %q, want %q", topic.Notes, want)
	}

	topic.ClearNotes()
	if topic.Notes != "" {
		t.Errorf("Notes after clear = %q", topic.Notes)
	}
}

func TestSummarizeMatchesCounts(t *testing.T) {
	c := NewCourse("42", Outline{
		Name: "Systems",
		Code: "CSE301",
		Modules: []OutlineModule{
			{Number: 2, Name: "Advanced", Topics: []string{"Paging", "Caching"}},
			{Number: 1, Name: "Basics", Topics: []string{"Processes"}},
		},
	})
	if c.Modules[0].Number != 1 {
		t.Fatalf("NewCourse did not sort modules: %+v", c.Modules)
	}
	_ = c.Modules[1].ToggleTopic(0)

	created := time.Unix(1700000000, 0)
	s := Summarize(&c, created)
	if s.ModuleCount != 2 || s.TotalTopics != 3 || s.CompletedTopics != 1 {
		t.Errorf("Summarize() = %+v", s)
	}
	if s.Percent() != 33 {
		t.Errorf("Percent() = %d, want 33", s.Percent())
	}
	if (CourseSummary{}).Percent() != 0 {
		t.Error("empty summary percent should be 0")
	}
}

func TestMergeProgress(t *testing.T) {
	outline := Outline{
		Name: "Systems",
		Code: "CSE301",
		Modules: []OutlineModule{
			{Number: 1, Name: "Basics", Topics: []string{"Processes", "Threads"}},
		},
	}

	t.Run("no progress", func(t *testing.T) {
		c := MergeProgress("7", outline, nil)
		if c.ID != "7" || len(c.Modules) != 1 || len(c.Modules[0].Topics) != 2 {
			t.Fatalf("MergeProgress(nil) = %+v", c)
		}
		if c.Modules[0].Topics[0].Completed {
			t.Error("fresh course has a completed topic")
		}
	})

	t.Run("progress overlays state", func(t *testing.T) {
		progress := &Course{
			Modules: []Module{{
				Number: 1,
				Topics: []Topic{
					{Name: "", Completed: true, Notes: "n"},
					{Name: "Threads", Completed: true},
				},
				Completed: false,
			}},
			Revision: 3,
		}
		c := MergeProgress("7", outline, progress)
		if c.Name != "Systems" || c.Modules[0].Name != "Basics" {
			t.Errorf("names not filled from outline: %+v", c)
		}
		if c.Modules[0].Topics[0].Name != "Processes" {
			t.Errorf("topic name = %q, want Processes", c.Modules[0].Topics[0].Name)
		}
		if !c.Modules[0].Completed {
			t.Error("module completion not recomputed")
		}
		if c.Revision != 3 {
			t.Errorf("Revision = %d, want 3", c.Revision)
		}
		if progress.Modules[0].Topics[0].Name != "" {
			t.Error("MergeProgress mutated its input")
		}
	})
}

func TestOutlineRoundTripNames(t *testing.T) {
	c := NewCourse("1", Outline{Name: "N", Code: "C", Modules: []OutlineModule{{Number: 1, Name: "M", Topics: []string{"A", "B"}}}})
	o := c.Outline()
	if strings.Join(o.Modules[0].Topics, ",") != "A,B" {
		t.Errorf("Outline() topics = %v", o.Modules[0].Topics)
	}
	if o.Degraded() {
		t.Error("complete outline reported degraded")
	}
	if !(Outline{Name: UnknownCourseName, Code: "X", Modules: o.Modules}).Degraded() {
		t.Error("sentinel name not reported degraded")
	}
}

func TestOutlineDegraded(t *testing.T) {
	full := OutlineModule{Number: 2, Name: "Advanced", Topics: []string{"Consensus"}}
	tests := []struct {
		name    string
		outline Outline
		want    bool
	}{
		{name: "complete", outline: Outline{Name: "Systems", Code: "CSE301", Modules: []OutlineModule{full}}, want: false},
		{name: "unknown code", outline: Outline{Name: "Systems", Code: UnknownCourseCode, Modules: []OutlineModule{full}}, want: true},
		{name: "no modules", outline: Outline{Name: "Systems", Code: "CSE301"}, want: true},
		{
			name: "module without topics",
			outline: Outline{Name: "Systems", Code: "CSE301", Modules: []OutlineModule{
				{Number: 1, Name: "Basics", Topics: []string{}},
				full,
			}},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.outline.Degraded(); got != tt.want {
				t.Errorf("Degraded() = %v, want %v", got, tt.want)
			}
		})
	}
}
