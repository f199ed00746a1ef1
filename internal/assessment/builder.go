package assessment

import (
	"fmt"
	"slices"
	"strings"

	"github.com/anshu3933/tlav/internal/apperr"
	"github.com/anshu3933/tlav/internal/model"
)

// Builder accumulates questions for a new assessment. Each question is
// processed as it is added; Build emits the finished assessment and resets
// the builder.
type Builder struct {
	p          *Processor
	title      string
	subject    string
	gradeLevel string
	questions  []model.Question
}

// NewBuilder starts an assessment for subject and grade level.
func (p *Processor) NewBuilder(title, subject, gradeLevel string) *Builder {
	return &Builder{
		p:          p,
		title:      strings.TrimSpace(title),
		subject:    strings.TrimSpace(subject),
		gradeLevel: strings.TrimSpace(gradeLevel),
	}
}

// Add validates and processes q, appends it and returns the processed
// question.
func (b *Builder) Add(q model.Question) (model.Question, error) {
	const op = "assessment.Builder.Add"
	if strings.TrimSpace(q.Text) == "" {
		return model.Question{}, apperr.Validation(op, "question text is required")
	}
	if !slices.Contains(model.QuestionTypes(), q.QuestionType) {
		return model.Question{}, apperr.Validation(op, fmt.Sprintf("unknown question type %q", q.QuestionType))
	}
	if q.QuestionType == model.QuestionMultipleChoice && len(q.Options) == 0 {
		return model.Question{}, apperr.Validation(op, "multiple choice question needs options")
	}
	if q.Tolerance != nil && (*q.Tolerance < 0 || q.QuestionType != model.QuestionNumeric) {
		return model.Question{}, apperr.Validation(op, "tolerance applies to numeric questions and must not be negative")
	}
	for _, existing := range b.questions {
		if q.QuestionID != "" && existing.QuestionID == q.QuestionID {
			return model.Question{}, apperr.Validation(op, fmt.Sprintf("duplicate question id %q", q.QuestionID))
		}
	}

	processed := b.p.ProcessQuestion(q, b.subject)
	b.questions = append(b.questions, processed)
	return processed.Clone(), nil
}

// Len returns the number of pending questions.
func (b *Builder) Len() int {
	return len(b.questions)
}

// Questions returns a copy of the pending questions.
func (b *Builder) Questions() []model.Question {
	out := make([]model.Question, len(b.questions))
	for i, q := range b.questions {
		out[i] = q.Clone()
	}
	return out
}

// Build emits the processed assessment and clears the pending questions.
func (b *Builder) Build() (*model.Assessment, error) {
	const op = "assessment.Builder.Build"
	if b.title == "" {
		return nil, apperr.Validation(op, "assessment title is required")
	}
	if len(b.questions) == 0 {
		return nil, apperr.Validation(op, "assessment needs at least one question")
	}

	a, err := b.p.ProcessAssessment(&model.Assessment{
		Title:      b.title,
		Subject:    b.subject,
		GradeLevel: b.gradeLevel,
		Questions:  b.questions,
	})
	if err != nil {
		return nil, err
	}
	b.questions = nil
	return a, nil
}
