package tool

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema is a compiled JSON schema used to validate decoded arguments.
type Schema struct {
	compiled *jsonschema.Schema
}

// CompileSchema compiles a schema map (draft 2020-12). The name only scopes
// the schema's resource URL.
func CompileSchema(name string, schema map[string]any) (*Schema, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema for %s: %w", name, err)
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	url := fmt.Sprintf("https://cart-ai.local/tools/%s.schema.json", name)
	if err := c.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("schema load failed for %s: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema compile failed for %s: %w", name, err)
	}
	return &Schema{compiled: compiled}, nil
}

// Validate checks args (as produced by encoding/json) against the schema.
func (s *Schema) Validate(args map[string]any) error {
	if s == nil || s.compiled == nil {
		return nil
	}
	var v any = args
	if args == nil {
		v = map[string]any{}
	}
	return s.compiled.Validate(v)
}
