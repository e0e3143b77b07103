package form

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/joseph-ayodele/pa-autofill/internal/llm"
)

// Filler matches extracted values onto a PA form and writes the filled PDF.
type Filler struct {
	logger *slog.Logger
}

func NewFiller(logger *slog.Logger) *Filler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Filler{logger: logger}
}

// Fill reads the form schema from formPath, matches result against it, writes
// the filled form to outPath, and returns the per-field outcomes in form
// order. Only fields at or above threshold are written into the PDF;
// uncertain and missing fields appear in the returned slice but leave the
// form slot empty. Deterministic given identical inputs.
func (fl *Filler) Fill(formPath, outPath string, result *llm.ExtractionResult, threshold float32) ([]FilledField, error) {
	doc, err := exportFormSchema(formPath)
	if err != nil {
		return nil, err
	}

	formFields := doc.fields()
	filled := Match(formFields, result, threshold)

	values := make(map[string]string, len(filled))
	for _, f := range filled {
		if f.Status == StatusFilled {
			values[f.FormField] = f.Value
		}
	}

	applied := doc.apply(values)
	if err := fl.writeFilled(formPath, outPath, doc); err != nil {
		return nil, err
	}

	fl.logger.Info("form.fill.ok",
		"form", formPath,
		"out", outPath,
		"form_fields", len(formFields),
		"written", applied,
	)
	return filled, nil
}

// apply writes values into the export structure and reports how many fields
// were actually updated.
func (d *exportDoc) apply(values map[string]string) int {
	applied := 0
	for fi := range d.Forms {
		f := &d.Forms[fi]
		for i := range f.TextFields {
			if v, ok := values[f.TextFields[i].Name]; ok {
				f.TextFields[i].Value = v
				applied++
			}
		}
		for i := range f.DateFields {
			if v, ok := values[f.DateFields[i].Name]; ok {
				f.DateFields[i].Value = v
				applied++
			}
		}
		for i := range f.CheckBoxes {
			if v, ok := values[f.CheckBoxes[i].Name]; ok {
				f.CheckBoxes[i].Value = parseCheckValue(v)
				applied++
			}
		}
		for i := range f.ComboBoxes {
			if v, ok := values[f.ComboBoxes[i].Name]; ok {
				f.ComboBoxes[i].Value = v
				applied++
			}
		}
		for i := range f.ListBoxes {
			if v, ok := values[f.ListBoxes[i].Name]; ok {
				f.ListBoxes[i].Values = []string{v}
				applied++
			}
		}
		for i := range f.RadioGroups {
			if v, ok := values[f.RadioGroups[i].Name]; ok {
				f.RadioGroups[i].Value = v
				applied++
			}
		}
	}
	return applied
}

func (fl *Filler) writeFilled(formPath, outPath string, doc *exportDoc) error {
	tmpDir, err := os.MkdirTemp("", "pa-fill-*")
	if err != nil {
		return fmt.Errorf("mkdtemp: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal fill json: %w", err)
	}
	jsonPath := filepath.Join(tmpDir, "fill.json")
	if err := os.WriteFile(jsonPath, raw, 0o644); err != nil {
		return fmt.Errorf("write fill json: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := api.FillFormFile(formPath, jsonPath, outPath, nil); err != nil {
		return fmt.Errorf("fill form: %w", err)
	}
	return nil
}

func parseCheckValue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "y", "x", "on", "checked", "1":
		return true
	}
	return false
}
