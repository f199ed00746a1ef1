// Package api exposes the knowledge-modeling services over HTTP/JSON.
package api

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/anshu3933/tlav/internal/app"
	"github.com/anshu3933/tlav/internal/apperr"
	"github.com/anshu3933/tlav/internal/assessment"
	"github.com/anshu3933/tlav/internal/model"
)

const maxBodyBytes = 1 << 20

// Server serves the HTTP API.
type Server struct {
	app      *app.App
	log      *zap.Logger
	validate *validator.Validate
}

// NewServer creates a server over a.
func NewServer(a *app.App) *Server {
	return &Server{
		app:      a,
		log:      a.Log.Named("api"),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.log))

	r.Get("/healthz", s.health)
	r.Handle("/metrics", s.app.Metrics.Handler())
	r.Get("/taxonomy", s.taxonomy)

	r.Route("/assessments", func(r chi.Router) {
		r.Get("/", s.listAssessments)
		r.Post("/", s.createAssessment)
		r.Get("/{assessmentID}", s.getAssessment)
	})

	r.Route("/students", func(r chi.Router) {
		r.Get("/", s.listStudents)
		r.Post("/", s.createStudent)
		r.Route("/{studentID}", func(r chi.Router) {
			r.Get("/", s.getStudent)
			r.Get("/history", s.history)
			r.Post("/responses", s.recordResponses)
			r.Get("/knowledge", s.knowledge)
			r.Get("/recommendations", s.recommendations)
			r.Get("/dashboard", s.dashboard)
			r.Get("/reports/{assessmentID}", s.report)
		})
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) taxonomy(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.app.Taxonomy.ToFile())
}

// QuestionRequest describes one question of a new assessment.
type QuestionRequest struct {
	QuestionID    string   `json:"question_id"`
	Text          string   `json:"text" validate:"required"`
	QuestionType  string   `json:"question_type" validate:"required,oneof=multiple_choice true_false fill_in numeric"`
	Options       []string `json:"options"`
	CorrectAnswer any      `json:"correct_answer"`
	Tolerance     *float64 `json:"tolerance" validate:"omitempty,gte=0"`
	Difficulty    *float64 `json:"difficulty" validate:"omitempty,gte=0.1,lte=0.9"`
}

// CreateAssessmentRequest is the JSON body of POST /assessments.
type CreateAssessmentRequest struct {
	Title      string            `json:"title" validate:"required"`
	Subject    string            `json:"subject" validate:"required"`
	GradeLevel string            `json:"grade_level"`
	Questions  []QuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

func (s *Server) listAssessments(w http.ResponseWriter, r *http.Request) {
	list, err := s.app.Assessments.List(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, list)
}

// createAssessment accepts a JSON request, or a YAML assessment document
// when the content type says so.
func (s *Server) createAssessment(w http.ResponseWriter, r *http.Request) {
	const op = "api.createAssessment"
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var (
		a   *model.Assessment
		err error
	)
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		data, readErr := io.ReadAll(r.Body)
		if readErr != nil {
			s.respondError(w, r, &apperr.Error{Kind: apperr.KindValidation, Op: op, Msg: "read body", Err: readErr})
			return
		}
		a, err = s.app.Processor.Import(data)
	} else {
		a, err = s.buildAssessment(r, op)
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := s.app.SaveAssessment(r.Context(), a); err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, a)
}

func (s *Server) buildAssessment(r *http.Request, op string) (*model.Assessment, error) {
	var req CreateAssessmentRequest
	if err := s.decode(r, op, &req); err != nil {
		return nil, err
	}
	b := s.app.Processor.NewBuilder(req.Title, req.Subject, req.GradeLevel)
	for _, q := range req.Questions {
		if _, err := b.Add(model.Question{
			QuestionID:    q.QuestionID,
			Text:          q.Text,
			QuestionType:  model.QuestionType(q.QuestionType),
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Tolerance:     q.Tolerance,
			Difficulty:    q.Difficulty,
		}); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

func (s *Server) getAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := s.app.Assessments.Get(r.Context(), chi.URLParam(r, "assessmentID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, a)
}

// CreateStudentRequest is the body of POST /students.
type CreateStudentRequest struct {
	Name       string `json:"name" validate:"required"`
	GradeLevel string `json:"grade_level"`
}

func (s *Server) listStudents(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.app.Profiles.ListProfiles(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, profiles)
}

func (s *Server) createStudent(w http.ResponseWriter, r *http.Request) {
	var req CreateStudentRequest
	if err := s.decode(r, "api.createStudent", &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	p, err := s.app.Profiles.CreateStudent(r.Context(), req.Name, req.GradeLevel)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, p)
}

func (s *Server) getStudent(w http.ResponseWriter, r *http.Request) {
	p, err := s.app.Profiles.GetProfile(r.Context(), chi.URLParam(r, "studentID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, p)
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	h, err := s.app.History(r.Context(), chi.URLParam(r, "studentID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, h)
}

// RecordResponsesRequest is the body of POST /students/{id}/responses.
type RecordResponsesRequest struct {
	AssessmentID string                `json:"assessment_id" validate:"required"`
	Responses    []assessment.Response `json:"responses" validate:"required,min=1,dive"`
}

func (s *Server) recordResponses(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req RecordResponsesRequest
	if err := s.decode(r, "api.recordResponses", &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	res, err := s.app.RecordResponses(r.Context(), chi.URLParam(r, "studentID"), req.AssessmentID, req.Responses)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

// KnowledgeResponse lists a student's mastery per component.
type KnowledgeResponse struct {
	StudentID  string                   `json:"student_id"`
	Subject    string                   `json:"subject,omitempty"`
	Components []model.ComponentMastery `json:"components"`
}

func (s *Server) knowledge(w http.ResponseWriter, r *http.Request) {
	id, subject := chi.URLParam(r, "studentID"), r.URL.Query().Get("subject")
	state, err := s.app.Profiles.KnowledgeState(r.Context(), id, subject)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, KnowledgeResponse{StudentID: id, Subject: subject, Components: state})
}

func (s *Server) recommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := s.app.Profiles.Recommendations(r.Context(), chi.URLParam(r, "studentID"), r.URL.Query().Get("subject"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, recs)
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.app.Profiles.Dashboard(r.Context(), chi.URLParam(r, "studentID"), r.URL.Query().Get("subject"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, d)
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	rep, err := s.app.Report(r.Context(), chi.URLParam(r, "studentID"), chi.URLParam(r, "assessmentID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondJSON(w, http.StatusOK, rep)
}
