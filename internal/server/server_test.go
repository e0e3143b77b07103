package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pa-autofill/internal/common"
	"github.com/joseph-ayodele/pa-autofill/internal/document"
	"github.com/joseph-ayodele/pa-autofill/internal/form"
	"github.com/joseph-ayodele/pa-autofill/internal/llm"
	"github.com/joseph-ayodele/pa-autofill/internal/pipeline"
)

type stubDocs struct{}

func (stubDocs) Extract(_ context.Context, path string) (*document.DocumentContent, error) {
	return &document.DocumentContent{
		Path:  path,
		Pages: []document.Page{{Number: 1, Text: "Patient: Jane Doe"}},
	}, nil
}

type stubExtractor struct{ provider string }

func (s stubExtractor) ExtractFields(_ context.Context, req llm.ExtractRequest) (*llm.ExtractionResult, error) {
	return &llm.ExtractionResult{
		Fields:    []llm.ExtractedField{{Name: "patient_name", Value: "Jane Doe", Confidence: 0.9}},
		Provider:  s.provider,
		Vision:    req.UseVision,
		Timestamp: time.Now().UTC(),
	}, nil
}

type stubFiller struct{}

func (stubFiller) Fill(_, outPath string, _ *llm.ExtractionResult, _ float32) ([]form.FilledField, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(outPath, []byte("%PDF-"), 0o644); err != nil {
		return nil, err
	}
	return []form.FilledField{
		{FormField: "patient_name", Value: "Jane Doe", Confidence: 0.9, Status: form.StatusFilled},
	}, nil
}

type stubReporter struct{}

func (stubReporter) Generate(outPath, _ string, _ []form.FilledField, _ time.Time) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outPath, []byte("%PDF-"), 0o644)
}

func newTestServer(t *testing.T) (*Server, *common.Config) {
	t.Helper()
	cfg := common.LoadConfig()
	cfg.Paths.InputDir = t.TempDir()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.LLM.Provider = common.ProviderOpenAI
	cfg.LLM.Timeout = 5 * time.Second
	cfg.Extraction.ConfidenceThreshold = 0.7
	cfg.Extraction.MaxWorkers = 2

	factory := func(runCfg *common.Config) (*pipeline.Processor, error) {
		return pipeline.NewProcessor(runCfg, stubDocs{},
			stubExtractor{provider: runCfg.LLM.Provider}, stubFiller{}, stubReporter{}, nil), nil
	}
	return NewServer(cfg, factory, nil), cfg
}

func addFolder(t *testing.T, inputDir, name string, files ...string) {
	t.Helper()
	dir := filepath.Join(inputDir, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("%PDF-"), 0o644))
	}
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(bs)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListFolders(t *testing.T) {
	srv, cfg := newTestServer(t)
	addFolder(t, cfg.Paths.InputDir, "alpha", "PA.pdf", "referral_package.pdf")
	addFolder(t, cfg.Paths.InputDir, "bravo", "PA.pdf")

	rec := doJSON(t, srv.Router(), http.MethodGet, "/api/folders", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count   int `json:"count"`
		Folders []struct {
			Name  string `json:"name"`
			Ready bool   `json:"ready"`
		} `json:"folders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	assert.True(t, resp.Folders[0].Ready)
	assert.False(t, resp.Folders[1].Ready)
}

func TestGetFolderNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/api/folders/absent", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProcessFolder(t *testing.T) {
	srv, cfg := newTestServer(t)
	addFolder(t, cfg.Paths.InputDir, "smith_john", "PA.pdf", "referral_package.pdf")

	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/process", map[string]any{"folder": "smith_john"})
	require.Equal(t, http.StatusOK, rec.Code)

	var res pipeline.ProcessingResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, pipeline.StatusDone, res.Status)
	assert.Equal(t, common.ProviderOpenAI, res.Provider)

	// result is retrievable afterwards
	rec = doJSON(t, srv.Router(), http.MethodGet, "/api/results/smith_john", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// and the filled PDF downloads
	rec = doJSON(t, srv.Router(), http.MethodGet, "/api/results/smith_john/download/filled", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
}

func TestProcessValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	r := srv.Router()

	rec := doJSON(t, r, http.MethodPost, "/api/process", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/process", map[string]any{"folder": "x", "provider": "bedrock"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/process", map[string]any{"folder": "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProcessProviderOverride(t *testing.T) {
	srv, cfg := newTestServer(t)
	addFolder(t, cfg.Paths.InputDir, "f", "PA.pdf", "referral_package.pdf")

	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/process",
		map[string]any{"folder": "f", "provider": common.ProviderAnthropic})
	require.Equal(t, http.StatusOK, rec.Code)

	var res pipeline.ProcessingResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, common.ProviderAnthropic, res.Provider)

	// override is per-request, not sticky
	rec = doJSON(t, srv.Router(), http.MethodGet, "/api/config", nil)
	var view configView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, common.ProviderOpenAI, view.Provider)
}

func TestProcessBatch(t *testing.T) {
	srv, cfg := newTestServer(t)
	addFolder(t, cfg.Paths.InputDir, "alpha", "PA.pdf", "referral_package.pdf")
	addFolder(t, cfg.Paths.InputDir, "bravo", "PA.pdf", "referral_package.pdf")
	addFolder(t, cfg.Paths.InputDir, "broken", "PA.pdf")

	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/process/batch", map[string]any{"parallel": true})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Summary pipeline.BatchSummary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Summary.Succeeded)
	assert.Equal(t, 0, resp.Summary.Failed)
	assert.Equal(t, 1, resp.Summary.Invalid)

	rec = doJSON(t, srv.Router(), http.MethodGet, "/api/results", nil)
	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 2, list.Count)
}

func TestResultNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/api/results/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadValidation(t *testing.T) {
	srv, cfg := newTestServer(t)
	addFolder(t, cfg.Paths.InputDir, "f", "PA.pdf", "referral_package.pdf")
	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/process", map[string]any{"folder": "f"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv.Router(), http.MethodGet, "/api/results/f/download/other", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConfigUpdate(t *testing.T) {
	srv, _ := newTestServer(t)
	r := srv.Router()

	rec := doJSON(t, r, http.MethodPost, "/api/config",
		map[string]any{"provider": common.ProviderAnthropic, "threshold": 0.8, "vision": false})
	require.Equal(t, http.StatusOK, rec.Code)

	var view configView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, common.ProviderAnthropic, view.Provider)
	assert.InDelta(t, 0.8, float64(view.Threshold), 1e-6)
	assert.False(t, view.Vision)

	rec = doJSON(t, r, http.MethodPost, "/api/config", map[string]any{"provider": "bedrock"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/config", map[string]any{"threshold": 1.5})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/config", map[string]any{"workers": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
