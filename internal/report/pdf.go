// Package report renders the human-readable extraction report PDF and the
// batch summary workbook. Purely presentational; all decisions were made
// upstream by the matcher.
package report

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/joseph-ayodele/pa-autofill/internal/form"
)

// Letter-size page geometry, points. pdfcpu's create origin is bottom-left.
const (
	pageHeight = 792.0
	marginLeft = 50.0
	marginTop  = 50.0
	lineHeight = 15.0
	linesPage  = 46
)

// createDoc is the subset of pdfcpu's create-from-JSON format we emit.
type createDoc struct {
	Pages map[string]createPage `json:"pages"`
}

type createPage struct {
	Content createContent `json:"content"`
}

type createContent struct {
	Text []textEntry `json:"text"`
}

type textEntry struct {
	Value    string    `json:"value"`
	Position []float64 `json:"position"`
	Font     fontSpec  `json:"font"`
}

type fontSpec struct {
	Name string  `json:"name"`
	Size float64 `json:"size"`
}

// Generator writes extraction report PDFs.
type Generator struct {
	logger *slog.Logger
}

func NewGenerator(logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{logger: logger}
}

// Generate renders the report for one folder: filled fields, uncertain
// fields, then missing fields, in that order. Deterministic given identical
// inputs.
func (g *Generator) Generate(outPath, folder string, fields []form.FilledField, generatedAt time.Time) error {
	doc := buildReportDoc(folder, fields, generatedAt)

	tmpDir, err := os.MkdirTemp("", "pa-report-*")
	if err != nil {
		return fmt.Errorf("mkdtemp: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	jsonPath := filepath.Join(tmpDir, "report.json")
	if err := os.WriteFile(jsonPath, raw, 0o644); err != nil {
		return fmt.Errorf("write report json: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := api.CreateFile("", jsonPath, outPath, nil); err != nil {
		return fmt.Errorf("create report pdf: %w", err)
	}

	g.logger.Info("report.generate.ok", "folder", folder, "out", outPath, "fields", len(fields))
	return nil
}

// buildReportDoc lays the report lines out into pages. Split out so tests
// can assert content and ordering without touching the PDF writer.
func buildReportDoc(folder string, fields []form.FilledField, generatedAt time.Time) *createDoc {
	var filled, uncertain, missing []form.FilledField
	for _, f := range fields {
		switch f.Status {
		case form.StatusFilled:
			filled = append(filled, f)
		case form.StatusUncertain:
			uncertain = append(uncertain, f)
		default:
			missing = append(missing, f)
		}
	}

	lines := []string{
		"Prior Authorization - Extraction Report",
		fmt.Sprintf("Patient Folder: %s", folder),
		fmt.Sprintf("Generated: %s", generatedAt.UTC().Format("2006-01-02 15:04:05")),
		"",
	}

	lines = append(lines, fmt.Sprintf("FILLED FIELDS (%d):", len(filled)))
	for _, f := range filled {
		lines = append(lines, fmt.Sprintf("  %s: %s  [%.0f%%]", f.FormField, f.Value, f.Confidence*100))
	}
	lines = append(lines, "")

	lines = append(lines, fmt.Sprintf("UNCERTAIN FIELDS (%d) - below confidence threshold:", len(uncertain)))
	for _, f := range uncertain {
		lines = append(lines, fmt.Sprintf("  %s: %s  [%.0f%%]", f.FormField, f.Value, f.Confidence*100))
	}
	lines = append(lines, "")

	lines = append(lines, fmt.Sprintf("FIELDS NOT FOUND (%d):", len(missing)))
	for _, f := range missing {
		lines = append(lines, fmt.Sprintf("  %s", f.FormField))
	}

	doc := &createDoc{Pages: map[string]createPage{}}
	for i, chunk := 0, 0; i < len(lines); chunk++ {
		end := i + linesPage
		if end > len(lines) {
			end = len(lines)
		}
		var entries []textEntry
		y := pageHeight - marginTop
		for _, line := range lines[i:end] {
			size := 10.0
			if chunk == 0 && line == lines[0] {
				size = 16
			}
			entries = append(entries, textEntry{
				Value:    line,
				Position: []float64{marginLeft, y},
				Font:     fontSpec{Name: "Helvetica", Size: size},
			})
			y -= lineHeight
		}
		doc.Pages[fmt.Sprintf("%d", chunk+1)] = createPage{Content: createContent{Text: entries}}
		i = end
	}
	if len(doc.Pages) == 0 {
		doc.Pages["1"] = createPage{Content: createContent{Text: nil}}
	}
	return doc
}
