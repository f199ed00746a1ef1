package report

import (
	"bytes"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anshu3933/tlav/internal/mastery"
	"github.com/anshu3933/tlav/internal/metrics"
	"github.com/anshu3933/tlav/internal/model"
)

var fixedNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestGenerator(opts ...Option) *Generator {
	n := 0
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { n++; return "report-" + strconv.Itoa(n) }),
	}
	return NewGenerator(DefaultConfig(), append(base, opts...)...)
}

func kc(skill, category string) model.KnowledgeComponent {
	return model.KnowledgeComponent{
		ID:       "kc_math_" + category + "_" + skill,
		Name:     skill,
		Category: category,
		Subject:  "math",
	}
}

func sampleAssessment() *model.Assessment {
	add := kc("addition", "arithmetic")
	sub := kc("subtraction", "arithmetic")
	frac := kc("fractions", "arithmetic")
	return &model.Assessment{
		AssessmentID: "a1",
		Title:        "Unit Quiz",
		Subject:      "math",
		Questions: []model.Question{
			{QuestionID: "q1", Text: "Solve 2+3", CognitiveSkills: []string{"apply"}, KnowledgeComponents: []model.KnowledgeComponent{add}},
			{QuestionID: "q2", Text: "Solve 5-3", CognitiveSkills: []string{"apply"}, KnowledgeComponents: []model.KnowledgeComponent{sub, add}},
			{QuestionID: "q3", Text: "Halve it", CognitiveSkills: []string{"remember"}, KnowledgeComponents: []model.KnowledgeComponent{frac}},
		},
	}
}

func interactions(results map[string]bool, order ...string) []model.Interaction {
	var out []model.Interaction
	for _, id := range order {
		out = append(out, model.Interaction{StudentID: "s1", QuestionID: id, IsCorrect: results[id], AssessmentID: "a1"})
	}
	return out
}

func TestGenerate_Full(t *testing.T) {
	m := metrics.New(false)
	g := newTestGenerator(WithMetrics(m))
	knowledge := map[string]float64{
		"kc_math_arithmetic_addition":    0.85,
		"kc_math_arithmetic_subtraction": 0.3,
		"kc_math_arithmetic_fractions":   0.65,
		"kc_math_geometry_area":          0.1,
	}
	in := interactions(map[string]bool{"q1": true, "q2": false, "q3": true}, "q1", "q2", "q3", "missing")

	r := g.Generate("s1", sampleAssessment(), in, knowledge)
	require.NotNil(t, r)
	assert.Empty(t, r.Error)
	assert.Equal(t, "report-1", r.ReportID)
	assert.Equal(t, "a1", r.AssessmentID)
	assert.Equal(t, "Unit Quiz", r.AssessmentTitle)
	assert.Equal(t, fixedNow, r.GeneratedAt)

	require.NotNil(t, r.OverallPerformance)
	assert.Equal(t, 2, r.OverallPerformance.CorrectCount)
	assert.Equal(t, 4, r.OverallPerformance.TotalQuestions)
	assert.InDelta(t, 50.0, r.OverallPerformance.Percentage, 1e-9)
	assert.Equal(t, "F", r.OverallPerformance.Grade)

	// The unmatched interaction is dropped.
	require.Len(t, r.QuestionPerformance, 3)
	assert.Equal(t, "q2", r.QuestionPerformance[1].QuestionID)
	assert.False(t, r.QuestionPerformance[1].IsCorrect)
	assert.Equal(t, []ComponentRef{
		{ID: "kc_math_arithmetic_subtraction", Name: "subtraction"},
		{ID: "kc_math_arithmetic_addition", Name: "addition"},
	}, r.QuestionPerformance[1].KnowledgeComponents)

	// Geometry is not assessed and is excluded; the rest ascend by mastery.
	var ids []string
	for _, c := range r.KnowledgeComponents {
		ids = append(ids, c.ComponentID)
	}
	assert.Equal(t, []string{
		"kc_math_arithmetic_subtraction",
		"kc_math_arithmetic_fractions",
		"kc_math_arithmetic_addition",
	}, ids)
	assert.Equal(t, mastery.LevelNovice, r.KnowledgeComponents[0].MasteryLevel)
	assert.Equal(t, mastery.LevelProficient, r.KnowledgeComponents[2].MasteryLevel)

	require.Len(t, r.Recommendations, 2)
	assert.Equal(t, "kc_math_arithmetic_subtraction", r.Recommendations[0].ComponentID)
	assert.Equal(t, 0.3, r.Recommendations[0].CurrentMastery)
	assert.Equal(t, 0.8, r.Recommendations[0].TargetMastery)
	assert.Equal(t, "Focus on subtraction skills to improve mastery", r.Recommendations[0].Recommendation)

	assert.Equal(t, 1.0, gatheredTotal(t, m, "tlav_reports_generated_total"))
}

func gatheredTotal(t *testing.T, m *metrics.Metrics, name string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		total := 0.0
		for _, metric := range f.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
		return total
	}
	return 0
}

func TestGenerate_NoInteractions(t *testing.T) {
	r := newTestGenerator().Generate("s1", sampleAssessment(), nil, map[string]float64{})
	assert.Nil(t, r.OverallPerformance)
	assert.Empty(t, r.QuestionPerformance)

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, r))
	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.NotContains(t, raw, "overall_performance")
	assert.NotContains(t, raw, "error")
}

func TestGenerate_UntitledAssessment(t *testing.T) {
	a := sampleAssessment()
	a.Title = ""
	r := newTestGenerator().Generate("s1", a, nil, nil)
	assert.Equal(t, "Untitled Assessment", r.AssessmentTitle)
	assert.Equal(t, "assessment_report_untitled_assessment.json", FileName(r))
}

func TestGenerate_RecommendationLimit(t *testing.T) {
	a := &model.Assessment{AssessmentID: "a2", Title: "Many"}
	knowledge := map[string]float64{}
	for i, skill := range []string{"a", "b", "c", "d", "e"} {
		c := kc(skill, "cat")
		a.Questions = append(a.Questions, model.Question{QuestionID: skill, KnowledgeComponents: []model.KnowledgeComponent{c}})
		knowledge[c.ID] = 0.1 * float64(i+1)
	}
	r := newTestGenerator().Generate("s1", a, nil, knowledge)
	require.Len(t, r.Recommendations, 3)
	assert.Equal(t, "kc_math_cat_a", r.Recommendations[0].ComponentID)
	assert.Equal(t, "kc_math_cat_c", r.Recommendations[2].ComponentID)
}

func TestGenerate_DerivesMissingComponentName(t *testing.T) {
	a := &model.Assessment{AssessmentID: "a3", Questions: []model.Question{{
		QuestionID:          "q1",
		KnowledgeComponents: []model.KnowledgeComponent{{ID: "kc_math_arithmetic_addition"}},
	}}}
	r := newTestGenerator().Generate("s1", a, nil, map[string]float64{"kc_math_arithmetic_addition": 0.5})
	require.Len(t, r.KnowledgeComponents, 1)
	assert.Equal(t, "Math Arithmetic Addition", r.KnowledgeComponents[0].Name)
}

func TestGenerate_FailureYieldsMinimalReport(t *testing.T) {
	m := metrics.New(false)
	r := newTestGenerator(WithMetrics(m)).Generate("s1", nil, nil, nil)
	require.NotNil(t, r)
	assert.NotEmpty(t, r.Error)
	assert.Equal(t, "unknown", r.AssessmentID)
	assert.Equal(t, "s1", r.StudentID)
	assert.Nil(t, r.OverallPerformance)
	assert.Equal(t, 1.0, gatheredTotal(t, m, "tlav_reports_generated_total"))
}

func TestGrade(t *testing.T) {
	g := newTestGenerator()
	tests := []struct {
		score float64
		want  string
	}{
		{1.0, "A"},
		{0.9, "A"},
		{0.89, "B"},
		{0.8, "B"},
		{0.75, "C"},
		{0.6, "D"},
		{0.59, "F"},
		{-1, "F"},
		{3, "A"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, g.Grade(tc.score), "score %v", tc.score)
	}
}

func TestGrade_UnsortedCustomScale(t *testing.T) {
	g := NewGenerator(Config{
		GradingScale:       []Grade{{"Pass", 0.5}, {"Merit", 0.75}, {"Fail", 0.2}},
		MasteryThreshold:   0.8,
		MaxRecommendations: 3,
	})
	assert.Equal(t, "Merit", g.Grade(0.8))
	assert.Equal(t, "Pass", g.Grade(0.6))
	assert.Equal(t, "Fail", g.Grade(0.3))
	// Below every threshold falls back to F.
	assert.Equal(t, "F", g.Grade(0.1))
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	bad := Config{
		GradingScale:       []Grade{{"A", 1.5}, {"A", 0.5}, {"", 0}},
		MasteryThreshold:   2,
		MaxRecommendations: -1,
	}
	err := bad.Validate()
	require.Error(t, err)
	for _, want := range []string{
		`grade "A" threshold must be in [0, 1]`,
		`grade "A" defined twice`,
		"empty letter",
		"mastery threshold",
		"max recommendations",
	} {
		assert.Contains(t, err.Error(), want)
	}
	assert.ErrorContains(t, Config{}.Validate(), "grading scale is empty")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "assessment_report_unit_quiz.json", FileName(&Report{AssessmentTitle: "Unit Quiz"}))
}
