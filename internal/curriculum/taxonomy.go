// Package curriculum holds the subject and cognitive-skill taxonomy used to
// decompose assessment questions, and derives knowledge components from it.
package curriculum

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/anshu3933/tlav/internal/model"
)

// Category groups related skills within a subject.
type Category struct {
	Name   string   `yaml:"name" json:"name"`
	Skills []string `yaml:"skills" json:"skills"`
}

// Subject is a curriculum area such as mathematics or reading.
type Subject struct {
	Name       string     `yaml:"name" json:"name"`
	Categories []Category `yaml:"categories" json:"categories"`
}

// CognitiveLevel is one level of the cognitive hierarchy together with the
// words and phrases that indicate it in question text.
type CognitiveLevel struct {
	Level      string   `yaml:"level" json:"level"`
	Indicators []string `yaml:"indicators" json:"indicators"`
}

// Taxonomy is a validated, immutable curriculum taxonomy. Order is
// significant everywhere: detection walks subjects, categories, skills and
// cognitive levels in declaration order.
type Taxonomy struct {
	subjects  []Subject
	levels    []CognitiveLevel
	bySubject map[string]*Subject
}

// New validates and builds a taxonomy. Names, skills and indicators are
// normalized to lower case because matching runs against lower-cased text.
func New(subjects []Subject, levels []CognitiveLevel) (*Taxonomy, error) {
	t := &Taxonomy{
		subjects:  normalizeSubjects(subjects),
		levels:    normalizeLevels(levels),
		bySubject: make(map[string]*Subject, len(subjects)),
	}
	if err := validate(t.subjects, t.levels); err != nil {
		return nil, err
	}
	for i := range t.subjects {
		t.bySubject[t.subjects[i].Name] = &t.subjects[i]
	}
	return t, nil
}

// Subjects returns the subjects in declaration order.
func (t *Taxonomy) Subjects() []Subject {
	return t.subjects
}

// CognitiveLevels returns the cognitive levels in declaration order.
func (t *Taxonomy) CognitiveLevels() []CognitiveLevel {
	return t.levels
}

// Subject looks up a subject by name, ignoring case.
func (t *Taxonomy) Subject(name string) (*Subject, bool) {
	s, ok := t.bySubject[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// DetectCognitiveSkills returns every level with at least one indicator
// occurring in text, in level order. Each level is recorded at most once.
// When nothing matches the result is the first level ("remember" in the
// default taxonomy).
func (t *Taxonomy) DetectCognitiveSkills(text string) []string {
	text = strings.ToLower(text)
	var found []string
	for _, lvl := range t.levels {
		for _, ind := range lvl.Indicators {
			if strings.Contains(text, ind) {
				found = append(found, lvl.Level)
				break
			}
		}
	}
	if len(found) == 0 {
		return []string{t.levels[0].Level}
	}
	return found
}

// DetectComponents returns the knowledge components of subject whose skill
// name (underscores read as spaces) occurs in text. Unknown subjects yield
// an empty, non-nil slice.
func (t *Taxonomy) DetectComponents(text, subject string) []model.KnowledgeComponent {
	components := []model.KnowledgeComponent{}
	s, ok := t.Subject(subject)
	if !ok {
		return components
	}

	text = strings.ToLower(text)
	seen := make(map[string]bool)
	for _, cat := range s.Categories {
		for _, skill := range cat.Skills {
			if !strings.Contains(text, strings.ReplaceAll(skill, "_", " ")) {
				continue
			}
			kc := NewComponent(s.Name, cat.Name, skill)
			if seen[kc.ID] {
				continue
			}
			seen[kc.ID] = true
			components = append(components, kc)
		}
	}
	return components
}

// NewComponent derives the knowledge component for a taxonomy entry.
func NewComponent(subject, category, skill string) model.KnowledgeComponent {
	subject = strings.ToLower(subject)
	return model.KnowledgeComponent{
		ID:       ComponentID(subject, category, skill),
		Name:     DisplayName(skill),
		Category: category,
		Subject:  subject,
	}
}

// ComponentID returns the stable id kc_<subject>_<category>_<skill>.
func ComponentID(subject, category, skill string) string {
	return fmt.Sprintf("kc_%s_%s_%s", strings.ToLower(subject), category, skill)
}

// DisplayName turns a snake_case name into title-cased words.
func DisplayName(name string) string {
	// A Caser is stateful, so each call gets its own.
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

// ComponentName derives a display name from a component id, used where only
// the id is at hand.
func ComponentName(componentID string) string {
	return DisplayName(strings.ReplaceAll(componentID, "kc_", ""))
}

func normalizeSubjects(in []Subject) []Subject {
	out := make([]Subject, len(in))
	for i, s := range in {
		out[i] = Subject{Name: strings.ToLower(strings.TrimSpace(s.Name))}
		out[i].Categories = make([]Category, len(s.Categories))
		for j, c := range s.Categories {
			out[i].Categories[j] = Category{
				Name:   strings.ToLower(strings.TrimSpace(c.Name)),
				Skills: lowerAll(c.Skills),
			}
		}
	}
	return out
}

func normalizeLevels(in []CognitiveLevel) []CognitiveLevel {
	out := make([]CognitiveLevel, len(in))
	for i, l := range in {
		out[i] = CognitiveLevel{
			Level:      strings.ToLower(strings.TrimSpace(l.Level)),
			Indicators: lowerAll(l.Indicators),
		}
	}
	return out
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}
