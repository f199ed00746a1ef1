package assessment

import (
	"github.com/anshu3933/tlav/internal/apperr"
	"github.com/anshu3933/tlav/internal/docschema"
	"github.com/anshu3933/tlav/internal/model"
)

// Document is the import format for assessments (YAML or JSON).
type Document struct {
	Title      string             `yaml:"title"`
	Subject    string             `yaml:"subject"`
	GradeLevel string             `yaml:"grade_level"`
	Questions  []DocumentQuestion `yaml:"questions"`
}

// DocumentQuestion is one question in an imported document.
type DocumentQuestion struct {
	QuestionID    string             `yaml:"question_id"`
	Text          string             `yaml:"text"`
	QuestionType  model.QuestionType `yaml:"question_type"`
	Options       []string           `yaml:"options"`
	CorrectAnswer any                `yaml:"correct_answer"`
	Tolerance     *float64           `yaml:"tolerance"`
	Difficulty    *float64           `yaml:"difficulty"`
}

// DocumentSchema validates assessment documents.
var DocumentSchema = &docschema.Schema{
	Name: "assessment",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"title", "subject", "questions"},
		"properties": map[string]any{
			"title":       map[string]any{"type": "string", "minLength": 1},
			"subject":     map[string]any{"type": "string"},
			"grade_level": map[string]any{"type": []any{"string", "integer"}},
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":     "object",
					"required": []any{"text", "question_type"},
					"properties": map[string]any{
						"question_id": map[string]any{"type": "string"},
						"text":        map[string]any{"type": "string", "minLength": 1},
						"question_type": map[string]any{
							"type": "string",
							"enum": []any{"multiple_choice", "true_false", "fill_in", "numeric"},
						},
						"options": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
						"correct_answer": map[string]any{},
						"tolerance":      map[string]any{"type": "number", "minimum": 0},
						"difficulty":     map[string]any{"type": "number", "minimum": MinDifficulty, "maximum": MaxDifficulty},
					},
					"additionalProperties": false,
				},
			},
		},
		"additionalProperties": false,
	},
}

// Import validates an assessment document and builds the processed
// assessment it describes.
func (p *Processor) Import(data []byte) (*model.Assessment, error) {
	const op = "assessment.Import"
	var doc Document
	if err := docschema.Decode(DocumentSchema, data, &doc); err != nil {
		return nil, &apperr.Error{Kind: apperr.KindValidation, Op: op, Msg: "invalid assessment document", Err: err}
	}

	b := p.NewBuilder(doc.Title, doc.Subject, doc.GradeLevel)
	for _, dq := range doc.Questions {
		if _, err := b.Add(model.Question{
			QuestionID:    dq.QuestionID,
			Text:          dq.Text,
			QuestionType:  dq.QuestionType,
			Options:       dq.Options,
			CorrectAnswer: dq.CorrectAnswer,
			Tolerance:     dq.Tolerance,
			Difficulty:    dq.Difficulty,
		}); err != nil {
			return nil, err
		}
	}
	return b.Build()
}
