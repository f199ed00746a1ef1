package model

import "time"

// HistoryEntry records the component estimate after one applied trace.
type HistoryEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	Value      float64   `json:"value"`
	Confidence float64   `json:"confidence"`
	IsCorrect  bool      `json:"is_correct"`
}

// ComponentState is a student's running estimate for one component.
// InitialValue is set once, when the component is first seen.
type ComponentState struct {
	InitialValue float64        `json:"initial_value"`
	CurrentValue float64        `json:"current_value"`
	Confidence   float64        `json:"confidence"`
	LastUpdated  time.Time      `json:"last_updated"`
	History      []HistoryEntry `json:"history"`
}

// ComponentMastery names a component and its current mastery.
type ComponentMastery struct {
	ComponentID   string  `json:"component_id"`
	ComponentName string  `json:"component_name"`
	Mastery       float64 `json:"mastery"`
}

// Metrics are derived from the knowledge state and always recomputable.
type Metrics struct {
	OverallMastery      float64            `json:"overall_mastery"`
	Strengths           []ComponentMastery `json:"strengths"`
	AreasForImprovement []ComponentMastery `json:"areas_for_improvement"`
}

// Profile is the durable per-student aggregate.
//
// ComponentOrder lists knowledge state keys in the order they were first
// added; it fixes iteration order for metrics and recommendations.
type Profile struct {
	StudentID          string                     `json:"student_id"`
	Name               string                     `json:"name"`
	GradeLevel         string                     `json:"grade_level"`
	CreationDate       time.Time                  `json:"creation_date"`
	LastUpdated        time.Time                  `json:"last_updated"`
	InteractionHistory []Interaction              `json:"interaction_history"`
	KnowledgeState     map[string]*ComponentState `json:"knowledge_state"`
	ComponentOrder     []string                   `json:"component_order"`
	Metrics            Metrics                    `json:"metrics"`
}

// Clone returns a deep copy of p. Interaction responses are shared, they are
// never mutated after creation.
func (p *Profile) Clone() *Profile {
	c := *p
	if p.InteractionHistory != nil {
		c.InteractionHistory = append([]Interaction{}, p.InteractionHistory...)
	}
	if p.ComponentOrder != nil {
		c.ComponentOrder = append([]string{}, p.ComponentOrder...)
	}
	if p.KnowledgeState != nil {
		c.KnowledgeState = make(map[string]*ComponentState, len(p.KnowledgeState))
		for id, st := range p.KnowledgeState {
			cs := *st
			if st.History != nil {
				cs.History = append([]HistoryEntry{}, st.History...)
			}
			c.KnowledgeState[id] = &cs
		}
	}
	c.Metrics = Metrics{
		OverallMastery:      p.Metrics.OverallMastery,
		Strengths:           append([]ComponentMastery{}, p.Metrics.Strengths...),
		AreasForImprovement: append([]ComponentMastery{}, p.Metrics.AreasForImprovement...),
	}
	return &c
}
