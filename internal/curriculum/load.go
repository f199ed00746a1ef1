package curriculum

import (
	"fmt"
	"os"

	"github.com/anshu3933/tlav/internal/docschema"
)

// File is the on-disk form of a taxonomy.
type File struct {
	Subjects        []Subject        `yaml:"subjects" json:"subjects"`
	CognitiveSkills []CognitiveLevel `yaml:"cognitive_skills" json:"cognitive_skills"`
}

var stringList = map[string]any{
	"type":  "array",
	"items": map[string]any{"type": "string", "minLength": 1},
}

// FileSchema validates taxonomy documents.
var FileSchema = &docschema.Schema{
	Name: "taxonomy",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"subjects", "cognitive_skills"},
		"properties": map[string]any{
			"subjects": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"name", "categories"},
					"properties": map[string]any{
						"name": map[string]any{"type": "string", "minLength": 1},
						"categories": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type":     "object",
								"required": []any{"name", "skills"},
								"properties": map[string]any{
									"name":   map[string]any{"type": "string", "minLength": 1},
									"skills": stringList,
								},
								"additionalProperties": false,
							},
						},
					},
					"additionalProperties": false,
				},
			},
			"cognitive_skills": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":     "object",
					"required": []any{"level", "indicators"},
					"properties": map[string]any{
						"level":      map[string]any{"type": "string", "minLength": 1},
						"indicators": stringList,
					},
					"additionalProperties": false,
				},
			},
		},
		"additionalProperties": false,
	},
}

// Parse decodes and validates a YAML or JSON taxonomy document.
func Parse(data []byte) (*Taxonomy, error) {
	var f File
	if err := docschema.Decode(FileSchema, data, &f); err != nil {
		return nil, err
	}
	return New(f.Subjects, f.CognitiveSkills)
}

// Load reads a taxonomy file. An empty path yields the built-in taxonomy.
func Load(path string) (*Taxonomy, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy: %w", err)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy %s: %w", path, err)
	}
	return t, nil
}

// ToFile returns the serializable form of t.
func (t *Taxonomy) ToFile() File {
	return File{Subjects: t.subjects, CognitiveSkills: t.levels}
}
