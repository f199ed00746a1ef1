package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anshu3933/tlav/internal/app"
	"github.com/anshu3933/tlav/internal/apperr"
	"github.com/anshu3933/tlav/internal/config"
	"github.com/anshu3933/tlav/internal/metrics"
	"github.com/anshu3933/tlav/internal/model"
	"github.com/anshu3933/tlav/internal/profile"
	"github.com/anshu3933/tlav/internal/report"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Store.Backend = config.BackendMemory
	a, err := app.New(context.Background(), app.Options{Config: &cfg, Metrics: metrics.New(false)})
	require.NoError(t, err)
	srv := httptest.NewServer(NewServer(a).Handler())
	t.Cleanup(func() {
		srv.Close()
		a.Close()
	})
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, contentType, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decodeBody[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(bytes.NewReader(data)).Decode(&v), string(data))
	return v
}

const assessmentJSON = `{
  "title": "Operations Check",
  "subject": "mathematics",
  "grade_level": "3",
  "questions": [
    {"question_id": "q1", "text": "Solve the addition 2 + 3", "question_type": "numeric", "correct_answer": 5},
    {"question_id": "q2", "text": "Solve the subtraction 9 - 4", "question_type": "numeric", "correct_answer": 5}
  ]
}`

func createAssessment(t *testing.T, srv *httptest.Server) model.Assessment {
	t.Helper()
	resp, body := do(t, srv, http.MethodPost, "/assessments", "application/json", assessmentJSON)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	return decodeBody[model.Assessment](t, body)
}

func TestHealthAndTaxonomy(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	resp, body = do(t, srv, http.MethodGet, "/taxonomy", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"cognitive_skills"`)
	assert.Contains(t, string(body), `"mathematics"`)
}

func TestAssessments(t *testing.T) {
	srv := newTestServer(t)
	a := createAssessment(t, srv)
	assert.NotEmpty(t, a.AssessmentID)
	require.Len(t, a.Questions, 2)
	assert.Equal(t, "kc_mathematics_operations_addition", a.Questions[0].KnowledgeComponents[0].ID)
	assert.NotNil(t, a.Questions[0].Difficulty)

	resp, body := do(t, srv, http.MethodGet, "/assessments/"+a.AssessmentID, "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, a.Title, decodeBody[model.Assessment](t, body).Title)

	resp, body = do(t, srv, http.MethodGet, "/assessments", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeBody[[]model.Assessment](t, body), 1)

	resp, body = do(t, srv, http.MethodGet, "/assessments/nope", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, apperr.KindNotFound, decodeBody[ErrorResponse](t, body).Kind)
}

func TestCreateAssessment_YAMLDocument(t *testing.T) {
	srv := newTestServer(t)
	doc := `
title: Reading Check
subject: reading
grade_level: 2
questions:
  - question_id: r1
    text: Identify the main idea of the story
    question_type: fill_in
    correct_answer: friendship
`
	resp, body := do(t, srv, http.MethodPost, "/assessments", "application/yaml", doc)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	a := decodeBody[model.Assessment](t, body)
	assert.Equal(t, "2", a.GradeLevel)
	assert.Equal(t, []string{"remember"}, a.Questions[0].CognitiveSkills)
}

func TestCreateAssessment_Invalid(t *testing.T) {
	srv := newTestServer(t)
	tests := []struct {
		name        string
		contentType string
		body        string
		want        string
	}{
		{"malformed json", "application/json", `{"title":`, "invalid request body"},
		{"missing title", "application/json", `{"subject":"mathematics","questions":[{"text":"x","question_type":"numeric"}]}`, "Title is required"},
		{"no questions", "application/json", `{"title":"T","subject":"mathematics","questions":[]}`, "Questions must have at least 1 entries"},
		{"bad type", "application/json", `{"title":"T","subject":"mathematics","questions":[{"text":"x","question_type":"essay"}]}`, "QuestionType must be one of"},
		{"difficulty above ceiling", "application/json", `{"title":"T","subject":"mathematics","questions":[{"text":"x","question_type":"numeric","difficulty":0.95}]}`, "Difficulty must be <= 0.9"},
		{"difficulty below floor", "application/json", `{"title":"T","subject":"mathematics","questions":[{"text":"x","question_type":"numeric","difficulty":0.05}]}`, "Difficulty must be >= 0.1"},
		{"builder rejects", "application/json", `{"title":"T","subject":"mathematics","questions":[{"text":"x","question_type":"multiple_choice"}]}`, "options"},
		{"bad yaml document", "application/yaml", "title: T\n", "invalid assessment document"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := do(t, srv, http.MethodPost, "/assessments", tc.contentType, tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			e := decodeBody[ErrorResponse](t, body)
			assert.Equal(t, apperr.KindValidation, e.Kind)
			assert.Contains(t, e.Error, tc.want)
		})
	}
}

func TestStudents(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, http.MethodPost, "/students", "application/json", `{"name":"Ada","grade_level":"4"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	p := decodeBody[model.Profile](t, body)
	assert.Regexp(t, `^student_[0-9a-f]{8}$`, p.StudentID)
	assert.Equal(t, "Ada", p.Name)

	resp, body = do(t, srv, http.MethodGet, "/students/"+p.StudentID, "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "4", decodeBody[model.Profile](t, body).GradeLevel)

	resp, body = do(t, srv, http.MethodGet, "/students", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeBody[[]model.Profile](t, body), 1)

	resp, body = do(t, srv, http.MethodPost, "/students", "application/json", `{"grade_level":"4"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeBody[ErrorResponse](t, body).Error, "Name is required")
}

func TestResponsesKnowledgeAndReport(t *testing.T) {
	srv := newTestServer(t)
	a := createAssessment(t, srv)

	resp, body := do(t, srv, http.MethodGet, "/students/s1/reports/"+a.AssessmentID, "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "no responses recorded yet")

	payload := `{"assessment_id":"` + a.AssessmentID + `","responses":[{"question_id":"q1","response":5},{"question_id":"q2","response":"4"}]}`
	resp, body = do(t, srv, http.MethodPost, "/students/s1/responses", "application/json", payload)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	res := decodeBody[app.RecordResult](t, body)
	assert.Equal(t, 2, res.Recorded)
	assert.Len(t, res.Profile.InteractionHistory, 2)

	resp, body = do(t, srv, http.MethodGet, "/students/s1/knowledge?subject=MATHEMATICS", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	k := decodeBody[KnowledgeResponse](t, body)
	require.Len(t, k.Components, 2)
	assert.Equal(t, "kc_mathematics_operations_addition", k.Components[0].ComponentID)

	resp, body = do(t, srv, http.MethodGet, "/students/s1/knowledge?subject=reading", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeBody[KnowledgeResponse](t, body).Components)

	resp, body = do(t, srv, http.MethodGet, "/students/s1/recommendations", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	recs := decodeBody[[]profile.Recommendation](t, body)
	require.Len(t, recs, 1)
	assert.Equal(t, "kc_mathematics_operations_subtraction", recs[0].ComponentID)

	resp, body = do(t, srv, http.MethodGet, "/students/s1/dashboard", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	d := decodeBody[profile.Dashboard](t, body)
	assert.Len(t, d.Levels, 5)
	assert.Len(t, d.Components, 2)

	resp, body = do(t, srv, http.MethodGet, "/students/s1/history", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	h := decodeBody[[]profile.HistorySummary](t, body)
	require.Len(t, h, 1)
	assert.Equal(t, 1, h[0].Correct)

	resp, body = do(t, srv, http.MethodGet, "/students/s1/reports/"+a.AssessmentID, "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	r := decodeBody[report.Report](t, body)
	require.NotNil(t, r.OverallPerformance)
	assert.Equal(t, 50.0, r.OverallPerformance.Percentage)
	assert.Equal(t, "F", r.OverallPerformance.Grade)
}

func TestRecordResponses_Invalid(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, srv, http.MethodPost, "/students/s1/responses", "application/json", `{"assessment_id":"x","responses":[{"response":1}]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeBody[ErrorResponse](t, body).Error, "QuestionID is required")

	resp, _ = do(t, srv, http.MethodPost, "/students/s1/responses", "application/json", `{"assessment_id":"x","responses":[{"question_id":"q1","response":1}]}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	createAssessment(t, srv)

	resp, body := do(t, srv, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `tlav_assessments_processed_total{status="ok"} 1`)
}
