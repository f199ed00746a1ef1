package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anshu3933/tlav/internal/apperr"
	"github.com/anshu3933/tlav/internal/assessment"
	"github.com/anshu3933/tlav/internal/config"
	"github.com/anshu3933/tlav/internal/metrics"
	"github.com/anshu3933/tlav/internal/model"
	"github.com/anshu3933/tlav/internal/store"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Store.Backend = config.BackendMemory
	a, err := New(context.Background(), Options{Config: &cfg, Metrics: metrics.New(false)})
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func seedAssessment(t *testing.T, a *App) *model.Assessment {
	t.Helper()
	b := a.Processor.NewBuilder("Operations Check", "mathematics", "3")
	_, err := b.Add(model.Question{QuestionID: "q1", Text: "Solve the addition 2 + 3", QuestionType: model.QuestionNumeric, CorrectAnswer: 5})
	require.NoError(t, err)
	_, err = b.Add(model.Question{QuestionID: "q2", Text: "Solve the subtraction 9 - 4", QuestionType: model.QuestionNumeric, CorrectAnswer: 5})
	require.NoError(t, err)
	as, err := b.Build()
	require.NoError(t, err)
	require.NoError(t, a.SaveAssessment(context.Background(), as))
	return as
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(context.Background(), Options{})
	assert.Error(t, err)
}

func TestNew_UsesConfiguredTracer(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Tracer.Slip = 0.3
	a, err := New(context.Background(), Options{Config: &cfg, KV: store.NewMemoryKV()})
	require.NoError(t, err)
	assert.NotNil(t, a.Processor)
	assert.Same(t, a.Taxonomy, a.Processor.Taxonomy())
}

func TestOpenKV(t *testing.T) {
	ctx := context.Background()

	cfg := config.DefaultConfig()
	cfg.Store.DB = filepath.Join(t.TempDir(), "nested", "tlav.db")
	kv, err := OpenKV(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &store.Store{}, kv)
	require.NoError(t, kv.Close())
	assert.FileExists(t, cfg.Store.DB)

	cfg.Store.Backend = config.BackendMemory
	kv, err = OpenKV(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &store.MemoryKV{}, kv)

	cfg.Store.Backend = "etcd"
	_, err = OpenKV(ctx, cfg)
	assert.ErrorContains(t, err, "unknown store backend")
}

func TestRecordResponses(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	as := seedAssessment(t, a)

	res, err := a.RecordResponses(ctx, "s1", as.AssessmentID, []assessment.Response{
		{QuestionID: "q1", Response: "5"},
		{QuestionID: "q2", Response: "seven"},
		{QuestionID: "unknown", Response: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Recorded)
	assert.Equal(t, 0, res.Failed)
	require.Len(t, res.Traces, 2)
	assert.True(t, res.Traces[0].Interaction.IsCorrect)
	assert.False(t, res.Traces[1].Interaction.IsCorrect)

	p := res.Profile
	require.NotNil(t, p)
	require.Len(t, p.InteractionHistory, 2)
	assert.Equal(t, as.AssessmentID, p.InteractionHistory[0].AssessmentID)
	assert.Contains(t, p.KnowledgeState, "kc_mathematics_operations_addition")
	assert.Contains(t, p.KnowledgeState, "kc_mathematics_operations_subtraction")
}

func TestRecordResponses_Errors(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	as := seedAssessment(t, a)

	_, err := a.RecordResponses(ctx, "", as.AssessmentID, nil)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = a.RecordResponses(ctx, "s1", "missing", nil)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestRecordResponses_NothingRecorded(t *testing.T) {
	a := newTestApp(t)
	as := seedAssessment(t, a)

	res, err := a.RecordResponses(context.Background(), "s1", as.AssessmentID, nil)
	require.NoError(t, err)
	assert.Zero(t, res.Recorded)
	require.NotNil(t, res.Profile)
	assert.Equal(t, "s1", res.Profile.StudentID)
}

func TestReport(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	as := seedAssessment(t, a)

	_, err := a.Report(ctx, "s1", as.AssessmentID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound), "no responses yet")

	_, err = a.RecordResponses(ctx, "s1", as.AssessmentID, []assessment.Response{
		{QuestionID: "q1", Response: 5},
		{QuestionID: "q2", Response: 4},
	})
	require.NoError(t, err)

	r, err := a.Report(ctx, "s1", as.AssessmentID)
	require.NoError(t, err)
	assert.Empty(t, r.Error)
	assert.Equal(t, "Operations Check", r.AssessmentTitle)
	require.NotNil(t, r.OverallPerformance)
	assert.Equal(t, 1, r.OverallPerformance.CorrectCount)
	assert.Equal(t, 2, r.OverallPerformance.TotalQuestions)
	assert.Len(t, r.QuestionPerformance, 2)
	require.Len(t, r.KnowledgeComponents, 2)
	assert.Equal(t, "kc_mathematics_operations_subtraction", r.KnowledgeComponents[0].ComponentID)
	require.Len(t, r.Recommendations, 1)
	assert.Equal(t, "kc_mathematics_operations_subtraction", r.Recommendations[0].ComponentID)

	_, err = a.Report(ctx, "s1", "missing")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)
	as := seedAssessment(t, a)

	_, err := a.RecordResponses(ctx, "s1", as.AssessmentID, []assessment.Response{{QuestionID: "q1", Response: 5}})
	require.NoError(t, err)

	h, err := a.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, h, 1)
	assert.Equal(t, "Operations Check", h[0].Title)
	assert.Equal(t, 1, h[0].Correct)
	assert.Equal(t, 1, h[0].Total)
}

func TestSaveAssessment_RejectsFailedProcessing(t *testing.T) {
	a := newTestApp(t)
	err := a.SaveAssessment(context.Background(), &model.Assessment{AssessmentID: "x", ProcessingError: "boom"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}
