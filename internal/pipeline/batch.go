package pipeline

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/pa-autofill/internal/folders"
	"github.com/joseph-ayodele/pa-autofill/internal/report"
)

// BatchSummaryFilename is written to the output directory after every batch run.
const BatchSummaryFilename = "batch_summary.xlsx"

// ProcessAll runs the pipeline over every folder under the input directory.
// Folders missing a PA form or referral package are recorded as invalid and
// skipped. When parallel is true, up to Extraction.MaxWorkers folders run
// concurrently; per-folder failures never abort the batch.
func (p *Processor) ProcessAll(ctx context.Context, parallel bool) (*BatchResult, error) {
	start := time.Now()

	all, err := folders.List(p.cfg.Paths.InputDir)
	if err != nil {
		return nil, err
	}

	batch := NewBatchResult()
	var ready []folders.PatientFolder
	for _, pf := range all {
		if pf.Ready {
			ready = append(ready, pf)
		} else {
			p.logger.Warn("batch.skip", "folder", pf.Name, "reason", pf.Reason)
			batch.Invalid = append(batch.Invalid, pf)
		}
	}
	p.logger.Info("batch.start", "folders", len(ready), "skipped", len(batch.Invalid), "parallel", parallel)

	workers := 1
	if parallel && p.cfg.Extraction.MaxWorkers > 1 {
		workers = p.cfg.Extraction.MaxWorkers
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, pf := range ready {
		pf := pf
		g.Go(func() error {
			batch.Add(p.ProcessFolder(gctx, pf))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	batch.Duration = time.Since(start)

	if err := p.writeBatchSummary(batch); err != nil {
		p.logger.Error("batch.summary.failed", "error", err)
	}

	s := batch.Summary()
	p.logger.Info("batch.done",
		"succeeded", s.Succeeded,
		"failed", s.Failed,
		"invalid", s.Invalid,
		"elapsed_ms", batch.Duration.Milliseconds(),
	)
	return batch, nil
}

func (p *Processor) writeBatchSummary(batch *BatchResult) error {
	rows := make([]report.BatchRow, 0, len(batch.Results)+len(batch.Invalid))
	for _, r := range batch.Results {
		filled, uncertain, missing := r.Counts()
		row := report.BatchRow{
			Folder:    r.Folder,
			Status:    string(r.Status),
			Filled:    filled,
			Uncertain: uncertain,
			Missing:   missing,
			Duration:  r.Duration,
			Error:     r.Error,
		}
		rows = append(rows, row)
	}
	for _, pf := range batch.Invalid {
		rows = append(rows, report.BatchRow{Folder: pf.Name, Status: "invalid", Error: pf.Reason})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Folder < rows[j].Folder })

	path := filepath.Join(p.cfg.Paths.OutputDir, BatchSummaryFilename)
	return report.WriteBatchSummary(path, rows)
}
