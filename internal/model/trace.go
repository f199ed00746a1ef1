package model

import "time"

// Interaction is an immutable record of one scored response.
type Interaction struct {
	Timestamp    time.Time `json:"timestamp"`
	StudentID    string    `json:"student_id"`
	QuestionID   string    `json:"question_id"`
	IsCorrect    bool      `json:"is_correct"`
	Response     any       `json:"response"`
	AssessmentID string    `json:"assessment_id,omitempty"`
}

// KnowledgeUpdate is the outcome of one Bayesian update for a component.
type KnowledgeUpdate struct {
	ComponentID string  `json:"component_id"`
	Prior       float64 `json:"prior"`
	NewValue    float64 `json:"new_value"`
	Confidence  float64 `json:"confidence"`
}

// Trace is the unit of work produced for one (student, question, response).
// Updates are keyed by ComponentID and kept in question order.
//
// A trace whose Error is set records a failed evaluation and must not be
// applied to a profile.
type Trace struct {
	Interaction      *Interaction      `json:"interaction,omitempty"`
	KnowledgeUpdates []KnowledgeUpdate `json:"knowledge_updates,omitempty"`
	Error            string            `json:"error,omitempty"`
}

// Failed reports whether the trace carries an evaluation error.
func (t *Trace) Failed() bool {
	return t != nil && t.Error != ""
}

// Update returns the update for a component id.
func (t *Trace) Update(componentID string) (KnowledgeUpdate, bool) {
	for _, u := range t.KnowledgeUpdates {
		if u.ComponentID == componentID {
			return u, true
		}
	}
	return KnowledgeUpdate{}, false
}
