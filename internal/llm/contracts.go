// Package llm defines the provider-agnostic field extraction contract plus
// the prompt, response schema, and parsing shared by all providers.
package llm

import (
	"context"
	"time"

	"github.com/joseph-ayodele/pa-autofill/internal/schema"
)

// Confidence defaults applied when the model omits a per-field confidence.
// Text-only extraction is scored lower than vision because layout loss makes
// misattribution more likely.
const (
	DefaultTextConfidence   float32 = 0.60
	DefaultVisionConfidence float32 = 0.75
)

// MaxImagesPerCall caps how many page renders are attached to one request.
const MaxImagesPerCall = 10

// ExtractedField is one field produced by the extraction engine.
// Immutable once produced.
type ExtractedField struct {
	Name       string  `json:"name"`
	Value      string  `json:"value"`
	Confidence float32 `json:"confidence"`
	SourceText string  `json:"source_text,omitempty"`
	Page       int     `json:"page,omitempty"`
}

// ExtractionResult is the ordered, name-unique field set for one document.
type ExtractionResult struct {
	Fields        []ExtractedField `json:"fields"`
	Provider      string           `json:"provider"`
	Model         string           `json:"model"`
	Vision        bool             `json:"vision"`
	SchemaVersion string           `json:"schema_version"`
	Timestamp     time.Time        `json:"timestamp"`
}

// Field returns the extracted field with the given name, if present.
func (r *ExtractionResult) Field(name string) (ExtractedField, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return ExtractedField{}, false
}

// ExtractRequest carries the document content and schema for one call.
type ExtractRequest struct {
	Text      string
	Images    [][]byte // PNG page renders, attached only when UseVision
	Template  schema.Template
	UseVision bool
}

// FieldExtractor is the interface the pipeline depends on.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (*ExtractionResult, error)
}
