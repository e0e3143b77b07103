package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/joseph-ayodele/pa-autofill/internal/schema"
)

type responseEnvelope struct {
	ExtractedFields []responseField `json:"extracted_fields"`
}

type responseField struct {
	Name       string   `json:"name"`
	Value      string   `json:"value"`
	Confidence *float32 `json:"confidence,omitempty"`
	SourceText string   `json:"source_text,omitempty"`
	Page       int      `json:"page,omitempty"`
}

// StripCodeFences removes a surrounding markdown code block, which some
// models emit despite instructions.
func StripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// ParseExtractionResponse validates the model reply against the response
// schema and converts it into ExtractedField entries.
//
// Policy: fields reporting NOT_FOUND or an empty value are omitted; unknown
// names fail schema validation upstream; duplicate names keep the highest
// confidence occurrence; output order follows the template vocabulary.
// A missing confidence defaults per extraction mode.
func ParseExtractionResponse(raw []byte, tmpl schema.Template, vision bool) ([]ExtractedField, error) {
	content := StripCodeFences(string(raw))
	if content == "" {
		return nil, fmt.Errorf("empty model response")
	}

	respSchema := BuildResponseSchema(tmpl)
	if err := ValidateJSONAgainstSchema(respSchema, []byte(content)); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var env responseEnvelope
	if err := json.Unmarshal([]byte(content), &env); err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}

	defaultConf := DefaultTextConfidence
	if vision {
		defaultConf = DefaultVisionConfidence
	}

	byName := make(map[string]ExtractedField, len(env.ExtractedFields))
	for _, rf := range env.ExtractedFields {
		value := strings.TrimSpace(rf.Value)
		if value == "" || strings.EqualFold(value, NotFoundSentinel) {
			continue
		}
		conf := defaultConf
		if rf.Confidence != nil {
			conf = clamp01(*rf.Confidence)
		}
		f := ExtractedField{
			Name:       rf.Name,
			Value:      value,
			Confidence: conf,
			SourceText: strings.TrimSpace(rf.SourceText),
			Page:       rf.Page,
		}
		if prev, ok := byName[f.Name]; !ok || f.Confidence > prev.Confidence {
			byName[f.Name] = f
		}
	}

	// Order per template so results are deterministic regardless of reply order.
	fields := make([]ExtractedField, 0, len(byName))
	for _, name := range tmpl.FieldNames() {
		if f, ok := byName[name]; ok {
			fields = append(fields, f)
		}
	}
	return fields, nil
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
