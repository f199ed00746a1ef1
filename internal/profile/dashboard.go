package profile

import (
	"context"
	"sort"
	"time"

	"github.com/anshu3933/tlav/internal/mastery"
	"github.com/anshu3933/tlav/internal/model"
)

// LevelBucket groups components sharing a mastery level.
type LevelBucket struct {
	Level      mastery.Level            `json:"level"`
	Range      string                   `json:"range"`
	Components []model.ComponentMastery `json:"components"`
}

// Dashboard is the data behind a student's knowledge overview.
type Dashboard struct {
	StudentID       string                   `json:"student_id"`
	Name            string                   `json:"name"`
	Subject         string                   `json:"subject,omitempty"`
	Components      []model.ComponentMastery `json:"components"`
	Levels          []LevelBucket            `json:"levels"`
	Recommendations []Recommendation         `json:"recommendations"`
}

// Dashboard groups the student's components by mastery level and attaches
// recommendations. Components are listed ascending by mastery.
func (s *Service) Dashboard(ctx context.Context, studentID, subject string) (*Dashboard, error) {
	p, err := s.GetProfile(ctx, studentID)
	if err != nil {
		return nil, err
	}
	state := Knowledge(p, subject)

	sorted := append([]model.ComponentMastery{}, state...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Mastery < sorted[j].Mastery })

	d := &Dashboard{
		StudentID:       p.StudentID,
		Name:            p.Name,
		Subject:         subject,
		Components:      sorted,
		Recommendations: Recommend(state),
	}
	index := make(map[mastery.Level]int)
	for i, lvl := range mastery.Levels() {
		index[lvl] = i
		d.Levels = append(d.Levels, LevelBucket{
			Level:      lvl,
			Range:      lvl.RangeLabel(),
			Components: []model.ComponentMastery{},
		})
	}
	for _, c := range sorted {
		b := &d.Levels[index[mastery.LevelFor(c.Mastery)]]
		b.Components = append(b.Components, c)
	}
	return d, nil
}

// HistorySummary aggregates a student's interactions with one assessment.
type HistorySummary struct {
	AssessmentID string    `json:"assessment_id"`
	Title        string    `json:"title"`
	Correct      int       `json:"correct"`
	Total        int       `json:"total"`
	Percentage   float64   `json:"percentage"`
	LastActivity time.Time `json:"last_activity"`
}

// AssessmentHistory summarizes p's interactions per assessment, most recent
// activity first. Interactions without an assessment id are ignored. Titles
// come from assessments; unknown ids are titled "Unknown".
func AssessmentHistory(p *model.Profile, assessments []model.Assessment) []HistorySummary {
	titles := make(map[string]string, len(assessments))
	for _, a := range assessments {
		titles[a.AssessmentID] = a.Title
	}

	var out []HistorySummary
	index := make(map[string]int)
	for _, in := range p.InteractionHistory {
		if in.AssessmentID == "" {
			continue
		}
		i, ok := index[in.AssessmentID]
		if !ok {
			title, known := titles[in.AssessmentID]
			if !known {
				title = "Unknown"
			}
			i = len(out)
			index[in.AssessmentID] = i
			out = append(out, HistorySummary{AssessmentID: in.AssessmentID, Title: title})
		}
		h := &out[i]
		h.Total++
		if in.IsCorrect {
			h.Correct++
		}
		if in.Timestamp.After(h.LastActivity) {
			h.LastActivity = in.Timestamp
		}
	}
	for i := range out {
		out[i].Percentage = float64(out[i].Correct) / float64(max(out[i].Total, 1)) * 100
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LastActivity.After(out[j].LastActivity) })
	if out == nil {
		out = []HistorySummary{}
	}
	return out
}

// AssessmentInteractions returns p's interactions recorded against an
// assessment, in the order they were applied.
func AssessmentInteractions(p *model.Profile, assessmentID string) []model.Interaction {
	out := []model.Interaction{}
	for _, in := range p.InteractionHistory {
		if in.AssessmentID == assessmentID {
			out = append(out, in)
		}
	}
	return out
}
