package profile

import (
	"context"
	"slices"
	"sort"
	"strings"

	"github.com/anshu3933/tlav/internal/curriculum"
	"github.com/anshu3933/tlav/internal/mastery"
	"github.com/anshu3933/tlav/internal/model"
)

// Recommendation suggests practice for a component below mastery.
type Recommendation struct {
	ComponentID    string           `json:"component_id"`
	ComponentName  string           `json:"component_name"`
	Mastery        float64          `json:"mastery"`
	Priority       mastery.Priority `json:"priority"`
	Recommendation string           `json:"recommendation"`
}

// KnowledgeState returns the student's current mastery per component in
// the order components were first seen. A non-empty subject keeps only
// components whose id contains it, ignoring case.
func (s *Service) KnowledgeState(ctx context.Context, studentID, subject string) ([]model.ComponentMastery, error) {
	p, err := s.GetProfile(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return Knowledge(p, subject), nil
}

// Knowledge extracts the (optionally subject-filtered) knowledge state of p.
func Knowledge(p *model.Profile, subject string) []model.ComponentMastery {
	subject = strings.ToLower(subject)
	out := []model.ComponentMastery{}
	for _, id := range orderedIDs(p.KnowledgeState, p.ComponentOrder) {
		if subject != "" && !strings.Contains(strings.ToLower(id), subject) {
			continue
		}
		out = append(out, model.ComponentMastery{
			ComponentID:   id,
			ComponentName: curriculum.ComponentName(id),
			Mastery:       p.KnowledgeState[id].CurrentValue,
		})
	}
	return out
}

// MasteryMap indexes a knowledge state by component id.
func MasteryMap(state []model.ComponentMastery) map[string]float64 {
	m := make(map[string]float64, len(state))
	for _, c := range state {
		m[c.ComponentID] = c.Mastery
	}
	return m
}

// Recommendations lists every component below mastery.MasteredThreshold,
// high priority first. Ties keep knowledge-state order.
func (s *Service) Recommendations(ctx context.Context, studentID, subject string) ([]Recommendation, error) {
	state, err := s.KnowledgeState(ctx, studentID, subject)
	if err != nil {
		return nil, err
	}
	return Recommend(state), nil
}

// Recommend derives recommendations from a knowledge state.
func Recommend(state []model.ComponentMastery) []Recommendation {
	recs := []Recommendation{}
	for _, c := range state {
		if c.Mastery >= mastery.MasteredThreshold {
			continue
		}
		recs = append(recs, Recommendation{
			ComponentID:    c.ComponentID,
			ComponentName:  c.ComponentName,
			Mastery:        c.Mastery,
			Priority:       mastery.PriorityFor(c.Mastery),
			Recommendation: "Focus on " + c.ComponentName + " to improve mastery",
		})
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority.Rank() < recs[j].Priority.Rank()
	})
	return recs
}

// computeMetrics derives overall mastery, strengths and areas for
// improvement from a knowledge state.
func computeMetrics(state map[string]*model.ComponentState, order []string) model.Metrics {
	m := model.Metrics{
		Strengths:           []model.ComponentMastery{},
		AreasForImprovement: []model.ComponentMastery{},
	}
	if len(state) == 0 {
		return m
	}

	sum := 0.0
	for _, id := range orderedIDs(state, order) {
		v := state[id].CurrentValue
		sum += v
		cm := model.ComponentMastery{
			ComponentID:   id,
			ComponentName: curriculum.ComponentName(id),
			Mastery:       v,
		}
		switch {
		case v >= mastery.StrengthThreshold:
			m.Strengths = append(m.Strengths, cm)
		case v < mastery.ImprovementThreshold:
			m.AreasForImprovement = append(m.AreasForImprovement, cm)
		}
	}
	m.OverallMastery = sum / float64(len(state))

	sort.SliceStable(m.Strengths, func(i, j int) bool {
		return m.Strengths[i].Mastery > m.Strengths[j].Mastery
	})
	sort.SliceStable(m.AreasForImprovement, func(i, j int) bool {
		return m.AreasForImprovement[i].Mastery < m.AreasForImprovement[j].Mastery
	})
	return m
}

// orderedIDs returns the keys of state following order, then any keys
// missing from order sorted by id.
func orderedIDs(state map[string]*model.ComponentState, order []string) []string {
	ids := make([]string, 0, len(state))
	seen := make(map[string]bool, len(state))
	for _, id := range order {
		if _, ok := state[id]; ok && !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	var rest []string
	for id := range state {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	slices.Sort(rest)
	return append(ids, rest...)
}
