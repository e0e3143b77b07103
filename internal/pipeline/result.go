package pipeline

import (
	"sync"
	"time"

	"github.com/joseph-ayodele/pa-autofill/internal/common"
	"github.com/joseph-ayodele/pa-autofill/internal/folders"
	"github.com/joseph-ayodele/pa-autofill/internal/form"
)

// Status is the per-folder pipeline state. Transitions are strictly
// Pending → Extracting → Filling → Reporting → Done, with Failed reachable
// from any stage.
type Status string

const (
	StatusPending    Status = "pending"
	StatusExtracting Status = "extracting"
	StatusFilling    Status = "filling"
	StatusReporting  Status = "reporting"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
)

// ProcessingResult is the per-folder outcome.
type ProcessingResult struct {
	Folder        string             `json:"folder"`
	Status        Status             `json:"status"`
	FilledFields  []form.FilledField `json:"filled_fields,omitempty"`
	FilledPDFPath string             `json:"filled_pdf_path,omitempty"`
	ReportPDFPath string             `json:"report_pdf_path,omitempty"`
	Provider      string             `json:"provider,omitempty"`
	Vision        bool               `json:"vision"`
	FormFilled    bool               `json:"form_filled"` // false when degraded to report-only
	StartedAt     time.Time          `json:"started_at"`
	Duration      time.Duration      `json:"duration"`
	FailedStage   Status             `json:"failed_stage,omitempty"`
	ErrorKind     common.ErrKind     `json:"error_kind,omitempty"`
	Error         string             `json:"error,omitempty"`
}

// Counts returns (filled, uncertain, missing).
func (r *ProcessingResult) Counts() (filled, uncertain, missing int) {
	for _, f := range r.FilledFields {
		switch f.Status {
		case form.StatusFilled:
			filled++
		case form.StatusUncertain:
			uncertain++
		default:
			missing++
		}
	}
	return
}

// UnfilledFieldNames returns the names of form fields with no matched value.
func (r *ProcessingResult) UnfilledFieldNames() []string {
	var names []string
	for _, f := range r.FilledFields {
		if f.Status == form.StatusMissing {
			names = append(names, f.FormField)
		}
	}
	return names
}

func (r *ProcessingResult) fail(stage Status, err error) *ProcessingResult {
	r.Status = StatusFailed
	r.FailedStage = stage
	r.ErrorKind = common.KindOf(err)
	r.Error = err.Error()
	return r
}

// BatchResult aggregates per-folder outcomes, keyed by folder name.
// Insertion is safe under concurrent workers; one slot per folder, no
// overwrites.
type BatchResult struct {
	mu       sync.Mutex
	Results  map[string]*ProcessingResult `json:"results"`
	Invalid  []folders.PatientFolder      `json:"invalid,omitempty"`
	Duration time.Duration                `json:"duration"`
}

func NewBatchResult() *BatchResult {
	return &BatchResult{Results: make(map[string]*ProcessingResult)}
}

// Add inserts res under its folder name. A duplicate insert indicates a
// pipeline bug and is reported rather than silently overwritten.
func (b *BatchResult) Add(res *ProcessingResult) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.Results[res.Folder]; exists {
		return false
	}
	b.Results[res.Folder] = res
	return true
}

// BatchSummary holds aggregate counts across a batch run.
type BatchSummary struct {
	Total           int `json:"total"`
	Succeeded       int `json:"succeeded"`
	Failed          int `json:"failed"`
	Invalid         int `json:"invalid"`
	FieldsFilled    int `json:"fields_filled"`
	FieldsMissing   int `json:"fields_missing"`
	FieldsUncertain int `json:"fields_uncertain"`
}

// Summary computes aggregate counts.
func (b *BatchResult) Summary() BatchSummary {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := BatchSummary{Total: len(b.Results), Invalid: len(b.Invalid)}
	for _, r := range b.Results {
		if r.Status == StatusDone {
			s.Succeeded++
		} else {
			s.Failed++
		}
		filled, uncertain, missing := r.Counts()
		s.FieldsFilled += filled
		s.FieldsUncertain += uncertain
		s.FieldsMissing += missing
	}
	return s
}
