// Package assessment decomposes assessment questions into cognitive skills
// and knowledge components, scores student responses, and turns each scored
// response into a knowledge trace.
package assessment

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anshu3933/tlav/internal/apperr"
	"github.com/anshu3933/tlav/internal/curriculum"
	"github.com/anshu3933/tlav/internal/mastery"
	"github.com/anshu3933/tlav/internal/metrics"
	"github.com/anshu3933/tlav/internal/model"
)

// skillDifficulty is the base difficulty of each cognitive level.
var skillDifficulty = map[string]float64{
	"remember":   0.2,
	"understand": 0.4,
	"apply":      0.6,
	"analyze":    0.7,
	"evaluate":   0.8,
	"create":     0.9,
}

const (
	unknownSkillDifficulty = 0.5
	defaultDifficulty      = 0.5
)

// Processor decomposes assessments and scores responses.
type Processor struct {
	taxonomy *curriculum.Taxonomy
	tracer   *mastery.Tracer
	log      *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	newID    func() string
}

// Option configures a Processor.
type Option func(*Processor)

// WithTracer sets the knowledge tracer. The default uses slip 0.1 and guess 0.2.
func WithTracer(t *mastery.Tracer) Option {
	return func(p *Processor) { p.tracer = t }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(p *Processor) {
		if log != nil {
			p.log = log.Named("processor")
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Processor) { p.metrics = m }
}

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// WithIDGenerator sets the generator for question and assessment ids.
func WithIDGenerator(newID func() string) Option {
	return func(p *Processor) { p.newID = newID }
}

// NewProcessor creates a processor over the given taxonomy. A nil taxonomy
// selects the built-in default.
func NewProcessor(tax *curriculum.Taxonomy, opts ...Option) *Processor {
	if tax == nil {
		tax = curriculum.Default()
	}
	p := &Processor{
		taxonomy: tax,
		tracer:   mastery.DefaultTracer(),
		log:      zap.NewNop(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Taxonomy returns the taxonomy questions are decomposed against.
func (p *Processor) Taxonomy() *curriculum.Taxonomy {
	return p.taxonomy
}

// ProcessAssessment returns a processed copy of a: an id is assigned when
// absent, every question is processed and ProcessedAt is stamped. The input
// is never modified.
//
// On failure the returned assessment is a copy of the input with
// ProcessingError set, alongside the error.
func (p *Processor) ProcessAssessment(a *model.Assessment) (out *model.Assessment, err error) {
	const op = "assessment.ProcessAssessment"
	if a == nil {
		return nil, apperr.Validation(op, "assessment is required")
	}

	defer func() {
		p.metrics.AssessmentProcessed(err == nil)
		if err != nil {
			p.logFailure(op, err, zap.String("assessment_id", a.AssessmentID))
			failed := a.Clone()
			failed.ProcessingError = err.Error()
			out = &failed
		}
	}()
	defer apperr.Recover(op, &err)

	processed := a.Clone()
	if processed.AssessmentID == "" {
		processed.AssessmentID = p.newID()
	}
	now := p.now()
	if processed.CreatedAt.IsZero() {
		processed.CreatedAt = now
	}
	for i, q := range processed.Questions {
		processed.Questions[i] = p.ProcessQuestion(q, processed.Subject)
	}
	processed.ProcessedAt = &now
	processed.ProcessingError = ""

	p.log.Debug("assessment processed",
		zap.String("assessment_id", processed.AssessmentID),
		zap.Int("questions", len(processed.Questions)),
	)
	return &processed, nil
}

// ProcessQuestion assigns an id when absent and detects cognitive skills,
// knowledge components and difficulty. A supplied difficulty is clamped to
// [MinDifficulty, MaxDifficulty]. A question that already carries both skills
// and components is otherwise returned unchanged.
func (p *Processor) ProcessQuestion(q model.Question, subject string) model.Question {
	processed := q.Clone()
	if processed.QuestionID == "" {
		processed.QuestionID = p.newID()
	}
	if processed.Difficulty != nil {
		d := clampDifficulty(*processed.Difficulty)
		processed.Difficulty = &d
	}
	if processed.Processed() {
		return processed
	}

	if processed.Text == "" {
		processed.CognitiveSkills = []string{}
		processed.KnowledgeComponents = []model.KnowledgeComponent{}
		return processed
	}

	processed.CognitiveSkills = p.taxonomy.DetectCognitiveSkills(processed.Text)
	processed.KnowledgeComponents = p.taxonomy.DetectComponents(processed.Text, subject)
	if processed.Difficulty == nil {
		d := EstimateDifficulty(processed.CognitiveSkills, len(processed.KnowledgeComponents))
		processed.Difficulty = &d
	}
	return processed
}

// Question difficulty bounds.
const (
	MinDifficulty = 0.1
	MaxDifficulty = 0.9
)

func clampDifficulty(d float64) float64 {
	return max(MinDifficulty, min(MaxDifficulty, d))
}

// EstimateDifficulty combines the mean base difficulty of the detected
// cognitive skills with a complexity factor from the component count,
// clamped to [MinDifficulty, MaxDifficulty].
func EstimateDifficulty(skills []string, components int) float64 {
	sum := 0.0
	for _, s := range skills {
		if d, ok := skillDifficulty[s]; ok {
			sum += d
		} else {
			sum += unknownSkillDifficulty
		}
	}
	avg := sum / float64(max(len(skills), 1))
	complexity := min(1.0, 0.1*float64(components))
	return clampDifficulty(0.7*avg + 0.3*complexity)
}

// ProcessStudentResponse scores response against q and returns the trace of
// knowledge updates it implies. Every component update starts from the fixed
// prior mastery.DefaultPrior; chaining onto earlier estimates is left to the
// profile store.
func (p *Processor) ProcessStudentResponse(studentID string, q *model.Question, response any) (trace *model.Trace, err error) {
	const op = "assessment.ProcessStudentResponse"
	defer func() {
		if err != nil {
			trace = nil
			p.metrics.ResponseScored(metrics.OutcomeError)
			p.logFailure(op, err, zap.String("student_id", studentID))
		}
	}()
	defer apperr.Recover(op, &err)

	switch {
	case studentID == "":
		return nil, apperr.Validation(op, "student id is required")
	case q == nil:
		return nil, apperr.Validation(op, "question is required")
	case q.QuestionID == "":
		return nil, apperr.Validation(op, "question id is required")
	}

	correct, convErr := Evaluate(q, response)
	if convErr != nil {
		p.log.Debug("response scored incorrect after conversion failure",
			zap.String("question_id", q.QuestionID),
			zap.Error(convErr),
		)
	}

	difficulty := defaultDifficulty
	if q.Difficulty != nil {
		difficulty = *q.Difficulty
	}

	trace = &model.Trace{
		Interaction: &model.Interaction{
			Timestamp:  p.now(),
			StudentID:  studentID,
			QuestionID: q.QuestionID,
			IsCorrect:  correct,
			Response:   response,
		},
		KnowledgeUpdates: []model.KnowledgeUpdate{},
	}
	for _, kc := range q.KnowledgeComponents {
		if kc.ID == "" {
			continue
		}
		est := p.tracer.UpdateWithDifficulty(mastery.DefaultPrior, correct, difficulty)
		trace.KnowledgeUpdates = append(trace.KnowledgeUpdates, model.KnowledgeUpdate{
			ComponentID: kc.ID,
			Prior:       mastery.DefaultPrior,
			NewValue:    est.Value,
			Confidence:  est.Confidence,
		})
		p.metrics.MasteryObserved(est.Value)
	}

	if correct {
		p.metrics.ResponseScored(metrics.OutcomeCorrect)
	} else {
		p.metrics.ResponseScored(metrics.OutcomeIncorrect)
	}
	return trace, nil
}

// Response is one answer within a batch submission.
type Response struct {
	QuestionID string `json:"question_id" validate:"required"`
	Response   any    `json:"response"`
}

// ProcessAssessmentResponses scores a batch of responses to a. Responses
// naming a question outside the assessment are dropped. A response that
// cannot be scored yields a trace carrying Error, which callers must not
// apply. Successful traces are stamped with the assessment id.
func (p *Processor) ProcessAssessmentResponses(studentID string, a *model.Assessment, responses []Response) []model.Trace {
	traces := make([]model.Trace, 0, len(responses))
	for _, r := range responses {
		q, ok := a.Question(r.QuestionID)
		if !ok {
			p.log.Warn("response references unknown question",
				zap.String("assessment_id", a.AssessmentID),
				zap.String("question_id", r.QuestionID),
			)
			continue
		}
		trace, err := p.ProcessStudentResponse(studentID, q, r.Response)
		if err != nil {
			traces = append(traces, *FailedTrace(err))
			continue
		}
		trace.Interaction.AssessmentID = a.AssessmentID
		traces = append(traces, *trace)
	}
	return traces
}

// FailedTrace wraps err as a trace that must not be applied.
func FailedTrace(err error) *model.Trace {
	return &model.Trace{Error: err.Error()}
}

func (p *Processor) logFailure(op string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("op", op), zap.Error(err))
	var pe *apperr.PanicError
	if errors.As(err, &pe) {
		p.log.Error("recovered panic", append(fields, zap.ByteString("stack", pe.Stack))...)
		return
	}
	if apperr.IsKind(err, apperr.KindValidation) {
		p.log.Warn("invalid input", fields...)
		return
	}
	p.log.Error("processing failed", fields...)
}
