package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anshu3933/tlav/internal/apperr"
	"github.com/anshu3933/tlav/internal/model"
)

func TestBuilder(t *testing.T) {
	p := newTestProcessor()
	b := p.NewBuilder(" Fractions Quiz ", "Mathematics", "4")

	q, err := b.Add(model.Question{
		Text:          "Calculate 1/2 + 1/4 as decimals",
		QuestionType:  model.QuestionNumeric,
		CorrectAnswer: 0.75,
	})
	require.NoError(t, err)
	assert.True(t, q.Processed())
	assert.Equal(t, "id-1", q.QuestionID)

	_, err = b.Add(model.Question{
		QuestionID:    "tf",
		Text:          "A square is one of the shapes with four sides",
		QuestionType:  model.QuestionTrueFalse,
		CorrectAnswer: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, b.Len())

	a, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "Fractions Quiz", a.Title)
	assert.Equal(t, "Mathematics", a.Subject)
	assert.Equal(t, "4", a.GradeLevel)
	assert.Equal(t, "id-2", a.AssessmentID)
	require.Len(t, a.Questions, 2)
	assert.Equal(t, q, a.Questions[0])
	assert.NotNil(t, a.ProcessedAt)

	assert.Equal(t, 0, b.Len(), "Build resets the pending questions")
}

func TestBuilder_AddValidation(t *testing.T) {
	b := newTestProcessor().NewBuilder("T", "mathematics", "3")
	_, err := b.Add(model.Question{QuestionID: "dup", Text: "x", QuestionType: model.QuestionFillIn})
	require.NoError(t, err)

	tests := []struct {
		name string
		q    model.Question
	}{
		{"empty text", model.Question{QuestionType: model.QuestionFillIn}},
		{"unknown type", model.Question{Text: "x", QuestionType: "essay"}},
		{"mc without options", model.Question{Text: "x", QuestionType: model.QuestionMultipleChoice}},
		{"tolerance on fill in", model.Question{Text: "x", QuestionType: model.QuestionFillIn, Tolerance: ptr(0.1)}},
		{"negative tolerance", model.Question{Text: "x", QuestionType: model.QuestionNumeric, Tolerance: ptr(-1)}},
		{"duplicate id", model.Question{QuestionID: "dup", Text: "y", QuestionType: model.QuestionFillIn}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := b.Add(tc.q)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation), "got %v", err)
		})
	}
	assert.Equal(t, 1, b.Len())
}

func TestBuilder_BuildValidation(t *testing.T) {
	p := newTestProcessor()

	_, err := p.NewBuilder("T", "mathematics", "3").Build()
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	b := p.NewBuilder("  ", "mathematics", "3")
	_, err = b.Add(model.Question{Text: "x", QuestionType: model.QuestionFillIn})
	require.NoError(t, err)
	_, err = b.Build()
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Equal(t, 1, b.Len(), "failed Build keeps pending questions")
}

const sampleDocument = `
title: Reading Check
subject: reading
grade_level: 2
questions:
  - question_id: r1
    text: Identify the main idea of the story
    question_type: fill_in
    correct_answer: friendship
  - text: Use context clues to explain the word meaning
    question_type: multiple_choice
    options: [happy, sad]
    correct_answer: happy
    difficulty: 0.6
`

func TestImport(t *testing.T) {
	a, err := newTestProcessor().Import([]byte(sampleDocument))
	require.NoError(t, err)
	assert.Equal(t, "Reading Check", a.Title)
	assert.Equal(t, "2", a.GradeLevel)
	require.Len(t, a.Questions, 2)

	q1 := a.Questions[0]
	assert.Equal(t, "r1", q1.QuestionID)
	require.Len(t, q1.KnowledgeComponents, 1)
	assert.Equal(t, "kc_reading_comprehension_main_idea", q1.KnowledgeComponents[0].ID)

	q2 := a.Questions[1]
	assert.Equal(t, []string{"understand", "apply"}, q2.CognitiveSkills)
	assert.Equal(t, 0.6, *q2.Difficulty)
	ids := []string{}
	for _, kc := range q2.KnowledgeComponents {
		ids = append(ids, kc.ID)
	}
	assert.Equal(t, []string{"kc_reading_vocabulary_word_meaning", "kc_reading_vocabulary_context_clues"}, ids)
}

func TestImport_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"no questions", "title: T\nsubject: math\nquestions: []\n"},
		{"bad type", "title: T\nsubject: math\nquestions:\n  - text: x\n    question_type: essay\n"},
		{"unknown field", "title: T\nsubject: math\nauthor: me\nquestions:\n  - text: x\n    question_type: fill_in\n"},
		{"difficulty range", "title: T\nsubject: math\nquestions:\n  - text: x\n    question_type: fill_in\n    difficulty: 2\n"},
		{"difficulty above ceiling", "title: T\nsubject: math\nquestions:\n  - text: x\n    question_type: fill_in\n    difficulty: 0.95\n"},
		{"difficulty below floor", "title: T\nsubject: math\nquestions:\n  - text: x\n    question_type: fill_in\n    difficulty: 0.05\n"},
		{"mc without options", "title: T\nsubject: math\nquestions:\n  - text: x\n    question_type: multiple_choice\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newTestProcessor().Import([]byte(tc.doc))
			assert.True(t, apperr.IsKind(err, apperr.KindValidation), "got %v", err)
		})
	}
}
