package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/pa-autofill/internal/schema"
)

// BuildResponseSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map describing the expected model reply. Field names are
// constrained to the template vocabulary.
func BuildResponseSchema(tmpl schema.Template) map[string]any {
	names := tmpl.FieldNames()
	enum := make([]any, 0, len(names))
	for _, n := range names {
		enum = append(enum, n)
	}

	fieldObj := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"name":        map[string]any{"type": "string", "enum": enum},
			"value":       map[string]any{"type": "string"},
			"confidence":  map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"source_text": map[string]any{"type": "string"},
			"page":        map[string]any{"type": "integer", "minimum": 1},
		},
		"required": []string{"name", "value"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"extracted_fields": map[string]any{
				"type":  "array",
				"items": fieldObj,
			},
		},
		"required": []string{"extracted_fields"},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := compiled.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
