// Package docschema validates YAML and JSON documents against JSON schemas
// before they are decoded into typed structures.
package docschema

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// Schema names a JSON schema definition.
type Schema struct {
	Name       string
	Definition map[string]any
}

// ErrInvalidDocument reports a document that failed parsing or validation.
type ErrInvalidDocument struct {
	Schema string
	Err    error
}

func (e *ErrInvalidDocument) Error() string {
	return fmt.Sprintf("invalid %s document: %v", e.Schema, e.Err)
}

func (e *ErrInvalidDocument) Unwrap() error { return e.Err }

// schemaCache caches compiled schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// Decode parses data (YAML or JSON), validates it against schema and
// decodes it into out.
func Decode(schema *Schema, data []byte, out any) error {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return &ErrInvalidDocument{Schema: schema.Name, Err: fmt.Errorf("parse: %w", err)}
	}
	if err := Validate(schema, raw); err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return &ErrInvalidDocument{Schema: schema.Name, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

// Validate checks an already-parsed document against schema.
func Validate(schema *Schema, doc any) error {
	// The validator expects JSON value types (float64, map[string]any);
	// YAML decoding yields ints, so round-trip through JSON first.
	normalized, err := toJSONValue(doc)
	if err != nil {
		return &ErrInvalidDocument{Schema: schema.Name, Err: err}
	}

	compiled, err := compiledSchema(schema)
	if err != nil {
		return &ErrInvalidDocument{Schema: schema.Name, Err: fmt.Errorf("compile schema: %w", err)}
	}
	if err := compiled.Validate(normalized); err != nil {
		return &ErrInvalidDocument{Schema: schema.Name, Err: fmt.Errorf("schema validation failed: %w", err)}
	}
	return nil
}

func toJSONValue(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return out, nil
}

// compiledSchema returns a cached compiled schema or compiles and caches it.
func compiledSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	def, err := toJSONValue(schema.Definition)
	if err != nil {
		return nil, err
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(schema.Name, compiled)
	return compiled, nil
}
