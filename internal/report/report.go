// Package report turns a student's interactions and knowledge state into a
// scored, graded assessment report with recommendations.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anshu3933/tlav/internal/apperr"
	"github.com/anshu3933/tlav/internal/curriculum"
	"github.com/anshu3933/tlav/internal/mastery"
	"github.com/anshu3933/tlav/internal/metrics"
	"github.com/anshu3933/tlav/internal/model"
)

// Grade maps a letter to the minimum score that earns it.
type Grade struct {
	Letter    string  `json:"letter" mapstructure:"letter"`
	Threshold float64 `json:"threshold" mapstructure:"threshold"`
}

// Config controls grading and recommendations.
type Config struct {
	GradingScale       []Grade `mapstructure:"grading_scale"`
	MasteryThreshold   float64 `mapstructure:"mastery_threshold"`
	MaxRecommendations int     `mapstructure:"max_recommendations"`
}

// DefaultGradingScale returns A >= 0.9, B >= 0.8, C >= 0.7, D >= 0.6, F.
func DefaultGradingScale() []Grade {
	return []Grade{
		{Letter: "A", Threshold: 0.9},
		{Letter: "B", Threshold: 0.8},
		{Letter: "C", Threshold: 0.7},
		{Letter: "D", Threshold: 0.6},
		{Letter: "F", Threshold: 0.0},
	}
}

// DefaultConfig returns the standard grading configuration.
func DefaultConfig() Config {
	return Config{
		GradingScale:       DefaultGradingScale(),
		MasteryThreshold:   mastery.MasteredThreshold,
		MaxRecommendations: 3,
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	var errs []string
	if len(c.GradingScale) == 0 {
		errs = append(errs, "grading scale is empty")
	}
	seen := make(map[string]bool)
	for _, g := range c.GradingScale {
		if g.Letter == "" {
			errs = append(errs, "grading scale has an empty letter")
		}
		if seen[g.Letter] {
			errs = append(errs, fmt.Sprintf("grade %q defined twice", g.Letter))
		}
		seen[g.Letter] = true
		if g.Threshold < 0 || g.Threshold > 1 {
			errs = append(errs, fmt.Sprintf("grade %q threshold must be in [0, 1], got %g", g.Letter, g.Threshold))
		}
	}
	if c.MasteryThreshold < 0 || c.MasteryThreshold > 1 {
		errs = append(errs, fmt.Sprintf("mastery threshold must be in [0, 1], got %g", c.MasteryThreshold))
	}
	if c.MaxRecommendations < 0 {
		errs = append(errs, fmt.Sprintf("max recommendations must be >= 0, got %d", c.MaxRecommendations))
	}
	if len(errs) > 0 {
		return fmt.Errorf("report config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// Performance is the overall score block.
type Performance struct {
	CorrectCount   int     `json:"correct_count"`
	TotalQuestions int     `json:"total_questions"`
	Percentage     float64 `json:"percentage"`
	Grade          string  `json:"grade"`
}

// ComponentRef names a knowledge component.
type ComponentRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// QuestionResult is the outcome of one answered question.
type QuestionResult struct {
	QuestionID          string         `json:"question_id"`
	Text                string         `json:"text"`
	IsCorrect           bool           `json:"is_correct"`
	CognitiveSkills     []string       `json:"cognitive_skills"`
	KnowledgeComponents []ComponentRef `json:"knowledge_components"`
}

// ComponentAnalysis is the student's standing on one assessed component.
type ComponentAnalysis struct {
	ComponentID  string        `json:"component_id"`
	Name         string        `json:"name"`
	Category     string        `json:"category"`
	Subject      string        `json:"subject"`
	Mastery      float64       `json:"mastery"`
	MasteryLevel mastery.Level `json:"mastery_level"`
}

// Recommendation targets a component below the mastery threshold.
type Recommendation struct {
	ComponentID    string  `json:"component_id"`
	ComponentName  string  `json:"component_name"`
	CurrentMastery float64 `json:"current_mastery"`
	TargetMastery  float64 `json:"target_mastery"`
	Recommendation string  `json:"recommendation"`
}

// Report is a generated assessment report. A report with Error set is a
// minimal failure record carrying only the identifying fields.
type Report struct {
	ReportID            string              `json:"report_id"`
	StudentID           string              `json:"student_id"`
	AssessmentID        string              `json:"assessment_id"`
	AssessmentTitle     string              `json:"assessment_title,omitempty"`
	GeneratedAt         time.Time           `json:"generated_at"`
	OverallPerformance  *Performance        `json:"overall_performance,omitempty"`
	QuestionPerformance []QuestionResult    `json:"question_performance,omitempty"`
	KnowledgeComponents []ComponentAnalysis `json:"knowledge_components,omitempty"`
	Recommendations     []Recommendation    `json:"recommendations,omitempty"`
	Error               string              `json:"error,omitempty"`
}

// Generator builds reports.
type Generator struct {
	cfg     Config
	log     *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	newID   func() string
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(g *Generator) {
		if log != nil {
			g.log = log.Named("report")
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Generator) { g.metrics = m }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithIDGenerator sets the report id generator.
func WithIDGenerator(newID func() string) Option {
	return func(g *Generator) { g.newID = newID }
}

// NewGenerator creates a generator. An empty grading scale selects the
// default one.
func NewGenerator(cfg Config, opts ...Option) *Generator {
	if len(cfg.GradingScale) == 0 {
		cfg.GradingScale = DefaultGradingScale()
	}
	scale := append([]Grade{}, cfg.GradingScale...)
	sort.SliceStable(scale, func(i, j int) bool { return scale[i].Threshold > scale[j].Threshold })
	cfg.GradingScale = scale

	g := &Generator{
		cfg:   cfg,
		log:   zap.NewNop(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds the report for a student's interactions with an
// assessment. knowledge maps component ids to current mastery; components
// not assessed by a are ignored. Generate never fails: an internal error
// yields a minimal report with Error set.
func (g *Generator) Generate(studentID string, a *model.Assessment, interactions []model.Interaction, knowledge map[string]float64) (r *Report) {
	const op = "report.Generate"
	var err error
	defer func() {
		g.metrics.ReportGenerated(err == nil)
		if err == nil {
			return
		}
		fields := []zap.Field{zap.String("student_id", studentID), zap.Error(err)}
		var pe *apperr.PanicError
		if errors.As(err, &pe) {
			fields = append(fields, zap.ByteString("stack", pe.Stack))
		}
		g.log.Error("report generation failed", fields...)
		assessmentID := "unknown"
		if a != nil && a.AssessmentID != "" {
			assessmentID = a.AssessmentID
		}
		r = &Report{
			ReportID:     g.newID(),
			StudentID:    studentID,
			AssessmentID: assessmentID,
			GeneratedAt:  g.now(),
			Error:        err.Error(),
		}
	}()
	defer apperr.Recover(op, &err)

	if a == nil {
		err = apperr.Validation(op, "assessment is required")
		return nil
	}

	title := a.Title
	if title == "" {
		title = "Untitled Assessment"
	}
	r = &Report{
		ReportID:        g.newID(),
		StudentID:       studentID,
		AssessmentID:    a.AssessmentID,
		AssessmentTitle: title,
		GeneratedAt:     g.now(),
	}

	if total := len(interactions); total > 0 {
		correct := 0
		for _, in := range interactions {
			if in.IsCorrect {
				correct++
			}
		}
		score := float64(correct) / float64(total)
		r.OverallPerformance = &Performance{
			CorrectCount:   correct,
			TotalQuestions: total,
			Percentage:     score * 100,
			Grade:          g.Grade(score),
		}
	}

	r.QuestionPerformance = questionPerformance(a, interactions)
	r.KnowledgeComponents = componentAnalysis(a, knowledge)
	r.Recommendations = g.recommendations(r.KnowledgeComponents)
	return r
}

// Grade returns the letter for score: the grade with the highest threshold
// the score meets.
func (g *Generator) Grade(score float64) string {
	score = max(0, min(1, score))
	for _, gr := range g.cfg.GradingScale {
		if score >= gr.Threshold {
			return gr.Letter
		}
	}
	return "F"
}

func questionPerformance(a *model.Assessment, interactions []model.Interaction) []QuestionResult {
	out := []QuestionResult{}
	for _, in := range interactions {
		q, ok := a.Question(in.QuestionID)
		if !ok {
			continue
		}
		refs := make([]ComponentRef, 0, len(q.KnowledgeComponents))
		for _, kc := range q.KnowledgeComponents {
			refs = append(refs, ComponentRef{ID: kc.ID, Name: kc.Name})
		}
		skills := q.CognitiveSkills
		if skills == nil {
			skills = []string{}
		}
		out = append(out, QuestionResult{
			QuestionID:          q.QuestionID,
			Text:                q.Text,
			IsCorrect:           in.IsCorrect,
			CognitiveSkills:     skills,
			KnowledgeComponents: refs,
		})
	}
	return out
}

func componentAnalysis(a *model.Assessment, knowledge map[string]float64) []ComponentAnalysis {
	out := []ComponentAnalysis{}
	for _, kc := range a.Components() {
		m, ok := knowledge[kc.ID]
		if !ok {
			continue
		}
		name := kc.Name
		if name == "" {
			name = curriculum.ComponentName(kc.ID)
		}
		out = append(out, ComponentAnalysis{
			ComponentID:  kc.ID,
			Name:         name,
			Category:     kc.Category,
			Subject:      kc.Subject,
			Mastery:      m,
			MasteryLevel: mastery.LevelFor(m),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Mastery < out[j].Mastery })
	return out
}

func (g *Generator) recommendations(components []ComponentAnalysis) []Recommendation {
	out := []Recommendation{}
	for _, c := range components {
		if len(out) >= g.cfg.MaxRecommendations {
			break
		}
		if c.Mastery >= g.cfg.MasteryThreshold {
			continue
		}
		out = append(out, Recommendation{
			ComponentID:    c.ComponentID,
			ComponentName:  c.Name,
			CurrentMastery: c.Mastery,
			TargetMastery:  g.cfg.MasteryThreshold,
			Recommendation: fmt.Sprintf("Focus on %s skills to improve mastery", c.Name),
		})
	}
	return out
}

// Export writes r as indented JSON.
func Export(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("export report: %w", err)
	}
	return nil
}

// FileName returns the conventional export file name for r.
func FileName(r *Report) string {
	title := r.AssessmentTitle
	if title == "" {
		title = "assessment"
	}
	return "assessment_report_" + strings.ReplaceAll(strings.ToLower(title), " ", "_") + ".json"
}
