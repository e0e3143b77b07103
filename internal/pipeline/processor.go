// Package pipeline orchestrates one folder's extract → fill → report run and
// the batch worker pool around it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/pa-autofill/internal/common"
	"github.com/joseph-ayodele/pa-autofill/internal/document"
	"github.com/joseph-ayodele/pa-autofill/internal/folders"
	"github.com/joseph-ayodele/pa-autofill/internal/form"
	"github.com/joseph-ayodele/pa-autofill/internal/llm"
	"github.com/joseph-ayodele/pa-autofill/internal/schema"
)

// FormFiller is the filler seam; satisfied by *form.Filler.
type FormFiller interface {
	Fill(formPath, outPath string, result *llm.ExtractionResult, threshold float32) ([]form.FilledField, error)
}

// DocumentExtractor is the document seam; satisfied by *document.Extractor.
type DocumentExtractor interface {
	Extract(ctx context.Context, path string) (*document.DocumentContent, error)
}

// ReportWriter is the report seam; satisfied by *report.Generator.
type ReportWriter interface {
	Generate(outPath, folder string, fields []form.FilledField, generatedAt time.Time) error
}

// Processor runs the per-folder pipeline.
type Processor struct {
	cfg       *common.Config
	docs      DocumentExtractor
	extractor llm.FieldExtractor
	filler    FormFiller
	reporter  ReportWriter
	template  schema.Template
	logger    *slog.Logger
}

func NewProcessor(cfg *common.Config, docs DocumentExtractor, extractor llm.FieldExtractor, filler FormFiller, reporter ReportWriter, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		cfg:       cfg,
		docs:      docs,
		extractor: extractor,
		filler:    filler,
		reporter:  reporter,
		template:  schema.StandardTemplate(),
		logger:    logger,
	}
}

// ProcessFolder runs extract → fill → report for one ready folder. Errors
// from any stage mark the result failed; they are recorded, not propagated,
// so a batch run can carry on with the next folder.
func (p *Processor) ProcessFolder(ctx context.Context, pf folders.PatientFolder) *ProcessingResult {
	start := time.Now()
	res := &ProcessingResult{
		Folder:    pf.Name,
		Status:    StatusPending,
		Provider:  p.cfg.LLM.Provider,
		Vision:    p.cfg.Extraction.UseVision,
		StartedAt: start.UTC(),
	}
	defer func() { res.Duration = time.Since(start) }()

	if !pf.Ready {
		err := common.NewDocumentReadError(fmt.Sprintf("folder %s is not processable: %s", pf.Name, pf.Reason), nil)
		return res.fail(StatusPending, err)
	}

	log := p.logger.With("folder", pf.Name)
	log.Info("pipeline.start", "pa_form", pf.PAFormPath, "referral", pf.ReferralPath)

	// Extracting
	res.Status = StatusExtracting
	content, err := p.docs.Extract(ctx, pf.ReferralPath)
	if err != nil {
		log.Error("pipeline.extract.failed", "error", err)
		return res.fail(StatusExtracting, err)
	}

	req := llm.ExtractRequest{
		Text:      content.Text(),
		Template:  p.template,
		UseVision: p.cfg.Extraction.UseVision,
	}
	if p.cfg.Extraction.UseVision {
		req.Images = content.Images()
	}

	llmCtx, cancel := context.WithTimeout(ctx, p.cfg.LLM.Timeout)
	extraction, err := p.extractor.ExtractFields(llmCtx, req)
	cancel()
	if err != nil {
		log.Error("pipeline.llm.failed", "error", err)
		return res.fail(StatusExtracting, err)
	}
	log.Info("pipeline.llm.ok", "fields", len(extraction.Fields), "vision", extraction.Vision)

	// Filling
	res.Status = StatusFilling
	outDir := filepath.Join(p.cfg.Paths.OutputDir, pf.Name)
	filledPath := filepath.Join(outDir, fmt.Sprintf("filled_PA_%s.pdf", pf.Name))

	filled, err := p.filler.Fill(pf.PAFormPath, filledPath, extraction, p.cfg.Extraction.ConfidenceThreshold)
	switch {
	case err == nil:
		res.FilledPDFPath = filledPath
		res.FormFilled = true
	case errors.Is(err, &common.AppError{Kind: common.ErrKindFormSchema}):
		// PA form has no fillable schema: degrade to an extraction-only report.
		log.Warn("pipeline.fill.no_form_schema", "error", err)
		filled = extractionOnlyFields(p.template, extraction, p.cfg.Extraction.ConfidenceThreshold)
	default:
		log.Error("pipeline.fill.failed", "error", err)
		return res.fail(StatusFilling, err)
	}
	res.FilledFields = filled

	// Reporting
	res.Status = StatusReporting
	reportPath := filepath.Join(outDir, fmt.Sprintf("extraction_report_%s.pdf", pf.Name))
	if err := p.reporter.Generate(reportPath, pf.Name, filled, extraction.Timestamp); err != nil {
		log.Error("pipeline.report.failed", "error", err)
		return res.fail(StatusReporting, err)
	}
	res.ReportPDFPath = reportPath

	res.Status = StatusDone
	filledN, uncertainN, missingN := res.Counts()
	log.Info("pipeline.done",
		"filled", filledN,
		"uncertain", uncertainN,
		"missing", missingN,
		"form_filled", res.FormFilled,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res
}

// extractionOnlyFields projects the extraction result onto the schema
// vocabulary when no fillable form exists: every vocabulary entry becomes a
// pseudo form field classified by the same threshold rule.
func extractionOnlyFields(tmpl schema.Template, extraction *llm.ExtractionResult, threshold float32) []form.FilledField {
	fields := make([]form.FilledField, 0, len(tmpl.Fields))
	for _, fd := range tmpl.Fields {
		ef, ok := extraction.Field(fd.Name)
		if !ok {
			fields = append(fields, form.FilledField{FormField: fd.Name, Status: form.StatusMissing})
			continue
		}
		status := form.StatusFilled
		if ef.Confidence < threshold {
			status = form.StatusUncertain
		}
		fields = append(fields, form.FilledField{
			FormField:  fd.Name,
			Value:      ef.Value,
			Confidence: ef.Confidence,
			Status:     status,
			SourceName: ef.Name,
		})
	}
	return fields
}
