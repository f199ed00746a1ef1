// Package model holds the plain records that flow through the knowledge
// pipeline. Every type serializes to JSON-compatible structures.
package model

import "time"

// QuestionType identifies how a response is scored.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionFillIn         QuestionType = "fill_in"
	QuestionNumeric        QuestionType = "numeric"
)

// QuestionTypes returns the recognized question types in display order.
func QuestionTypes() []QuestionType {
	return []QuestionType{QuestionMultipleChoice, QuestionTrueFalse, QuestionFillIn, QuestionNumeric}
}

// DefaultTolerance is the numeric tolerance applied when a question has none.
const DefaultTolerance = 0.001

// KnowledgeComponent is a discrete, testable skill derived from the taxonomy.
// Components are immutable once derived.
type KnowledgeComponent struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Subject  string `json:"subject"`
}

// Question is a single assessable item.
//
// CognitiveSkills and KnowledgeComponents are nil until the question has
// been processed; processing always leaves both non-nil.
type Question struct {
	QuestionID          string               `json:"question_id"`
	Text                string               `json:"text"`
	QuestionType        QuestionType         `json:"question_type"`
	Options             []string             `json:"options,omitempty"`
	CorrectAnswer       any                  `json:"correct_answer,omitempty"`
	Tolerance           *float64             `json:"tolerance,omitempty"`
	CognitiveSkills     []string             `json:"cognitive_skills"`
	KnowledgeComponents []KnowledgeComponent `json:"knowledge_components"`
	Difficulty          *float64             `json:"difficulty,omitempty"`
}

// Processed reports whether skills and components have both been assigned.
func (q *Question) Processed() bool {
	return q.CognitiveSkills != nil && q.KnowledgeComponents != nil
}

// Clone returns a deep copy of q.
func (q Question) Clone() Question {
	c := q
	if q.Options != nil {
		c.Options = append([]string{}, q.Options...)
	}
	if q.CognitiveSkills != nil {
		c.CognitiveSkills = append([]string{}, q.CognitiveSkills...)
	}
	if q.KnowledgeComponents != nil {
		c.KnowledgeComponents = append([]KnowledgeComponent{}, q.KnowledgeComponents...)
	}
	if q.Tolerance != nil {
		t := *q.Tolerance
		c.Tolerance = &t
	}
	if q.Difficulty != nil {
		d := *q.Difficulty
		c.Difficulty = &d
	}
	return c
}

// Assessment is a named collection of questions for one subject and grade.
type Assessment struct {
	AssessmentID    string     `json:"assessment_id"`
	Title           string     `json:"title"`
	Subject         string     `json:"subject"`
	GradeLevel      string     `json:"grade_level"`
	Questions       []Question `json:"questions"`
	CreatedAt       time.Time  `json:"created_at"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	ProcessingError string     `json:"processing_error,omitempty"`
}

// Clone returns a deep copy of a.
func (a Assessment) Clone() Assessment {
	c := a
	if a.Questions != nil {
		c.Questions = make([]Question, len(a.Questions))
		for i, q := range a.Questions {
			c.Questions[i] = q.Clone()
		}
	}
	if a.ProcessedAt != nil {
		t := *a.ProcessedAt
		c.ProcessedAt = &t
	}
	return c
}

// Question returns the question with the given id.
func (a *Assessment) Question(id string) (*Question, bool) {
	for i := range a.Questions {
		if a.Questions[i].QuestionID == id {
			return &a.Questions[i], true
		}
	}
	return nil, false
}

// Components returns every knowledge component referenced by the
// assessment's questions, deduplicated by id in first-seen order.
func (a *Assessment) Components() []KnowledgeComponent {
	seen := make(map[string]bool)
	var out []KnowledgeComponent
	for _, q := range a.Questions {
		for _, kc := range q.KnowledgeComponents {
			if kc.ID == "" || seen[kc.ID] {
				continue
			}
			seen[kc.ID] = true
			out = append(out, kc)
		}
	}
	return out
}
