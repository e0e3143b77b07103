package server

import (
	"encoding/json"
	"net/http"
	"os"
	"sort"

	"github.com/gorilla/mux"

	"github.com/joseph-ayodele/pa-autofill/internal/common"
	"github.com/joseph-ayodele/pa-autofill/internal/folders"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListFolders(w http.ResponseWriter, _ *http.Request) {
	cfg := s.effectiveConfig()
	all, err := folders.List(cfg.Paths.InputDir)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"folders": all, "count": len(all)})
}

func (s *Server) handleGetFolder(w http.ResponseWriter, r *http.Request) {
	cfg := s.effectiveConfig()
	name := mux.Vars(r)["name"]
	pf, err := folders.Find(cfg.Paths.InputDir, name)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Kind: common.ErrKindDocumentRead})
		return
	}
	writeJSON(w, http.StatusOK, pf)
}

// processRequest carries per-run overrides on top of the server config.
type processRequest struct {
	Folder    string   `json:"folder"`
	Provider  string   `json:"provider,omitempty"`
	Vision    *bool    `json:"vision,omitempty"`
	Threshold *float32 `json:"threshold,omitempty"`
}

func (s *Server) applyOverrides(cfg *common.Config, req processRequest) error {
	if req.Provider != "" {
		if req.Provider != common.ProviderOpenAI && req.Provider != common.ProviderAnthropic {
			return common.NewConfigError("unsupported provider: " + req.Provider)
		}
		cfg.LLM.Provider = req.Provider
	}
	if req.Vision != nil {
		cfg.Extraction.UseVision = *req.Vision
	}
	if req.Threshold != nil {
		if *req.Threshold < 0 || *req.Threshold > 1 {
			return common.NewConfigError("threshold must be between 0 and 1")
		}
		cfg.Extraction.ConfidenceThreshold = *req.Threshold
	}
	return nil
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error(), Kind: common.ErrKindConfig})
		return
	}
	if req.Folder == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "folder is required", Kind: common.ErrKindConfig})
		return
	}

	cfg := s.effectiveConfig()
	if err := s.applyOverrides(&cfg, req); err != nil {
		s.writeError(w, err)
		return
	}

	pf, err := folders.Find(cfg.Paths.InputDir, req.Folder)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Kind: common.ErrKindDocumentRead})
		return
	}

	proc, err := s.factory(&cfg)
	if err != nil {
		s.writeError(w, err)
		return
	}

	res := proc.ProcessFolder(r.Context(), pf)
	s.storeResult(res)
	writeJSON(w, http.StatusOK, res)
}

type batchRequest struct {
	Parallel  bool     `json:"parallel"`
	Provider  string   `json:"provider,omitempty"`
	Vision    *bool    `json:"vision,omitempty"`
	Threshold *float32 `json:"threshold,omitempty"`
}

func (s *Server) handleProcessBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error(), Kind: common.ErrKindConfig})
			return
		}
	}

	cfg := s.effectiveConfig()
	if err := s.applyOverrides(&cfg, processRequest{Provider: req.Provider, Vision: req.Vision, Threshold: req.Threshold}); err != nil {
		s.writeError(w, err)
		return
	}

	proc, err := s.factory(&cfg)
	if err != nil {
		s.writeError(w, err)
		return
	}

	batch, err := proc.ProcessAll(r.Context(), req.Parallel)
	if err != nil {
		s.writeError(w, err)
		return
	}
	for _, res := range batch.Results {
		s.storeResult(res)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"summary": batch.Summary(),
		"results": batch.Results,
		"invalid": batch.Invalid,
	})
}

func (s *Server) handleListResults(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	names := make([]string, 0, len(s.results))
	for name := range s.results {
		names = append(names, name)
	}
	s.mu.RUnlock()
	sort.Strings(names)
	writeJSON(w, http.StatusOK, map[string]any{"folders": names, "count": len(names)})
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	res, ok := s.result(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no result for folder " + name, Kind: common.ErrKindDocumentRead})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name, file := vars["name"], vars["file"]

	res, ok := s.result(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no result for folder " + name, Kind: common.ErrKindDocumentRead})
		return
	}

	var path string
	switch file {
	case "filled":
		path = res.FilledPDFPath
	case "report":
		path = res.ReportPDFPath
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "file must be filled or report", Kind: common.ErrKindConfig})
		return
	}
	if path == "" {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no " + file + " PDF for folder " + name, Kind: common.ErrKindDocumentRead})
		return
	}
	if _, err := os.Stat(path); err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "output file missing: " + path, Kind: common.ErrKindDocumentRead})
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, path)
}

// configView is the mutable slice of runtime configuration.
type configView struct {
	Provider  string  `json:"provider"`
	Vision    bool    `json:"vision"`
	Threshold float32 `json:"threshold"`
	Workers   int     `json:"workers"`
	InputDir  string  `json:"input_dir"`
	OutputDir string  `json:"output_dir"`
}

func (s *Server) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	view := configView{
		Provider:  s.cfg.LLM.Provider,
		Vision:    s.cfg.Extraction.UseVision,
		Threshold: s.cfg.Extraction.ConfidenceThreshold,
		Workers:   s.cfg.Extraction.MaxWorkers,
		InputDir:  s.cfg.Paths.InputDir,
		OutputDir: s.cfg.Paths.OutputDir,
	}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, view)
}

type configUpdate struct {
	Provider  *string  `json:"provider,omitempty"`
	Vision    *bool    `json:"vision,omitempty"`
	Threshold *float32 `json:"threshold,omitempty"`
	Workers   *int     `json:"workers,omitempty"`
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var upd configUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error(), Kind: common.ErrKindConfig})
		return
	}

	s.mu.Lock()
	if upd.Provider != nil {
		if *upd.Provider != common.ProviderOpenAI && *upd.Provider != common.ProviderAnthropic {
			s.mu.Unlock()
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unsupported provider: " + *upd.Provider, Kind: common.ErrKindConfig})
			return
		}
		s.cfg.LLM.Provider = *upd.Provider
	}
	if upd.Vision != nil {
		s.cfg.Extraction.UseVision = *upd.Vision
	}
	if upd.Threshold != nil {
		if *upd.Threshold < 0 || *upd.Threshold > 1 {
			s.mu.Unlock()
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "threshold must be between 0 and 1", Kind: common.ErrKindConfig})
			return
		}
		s.cfg.Extraction.ConfidenceThreshold = *upd.Threshold
	}
	if upd.Workers != nil {
		if *upd.Workers < 1 {
			s.mu.Unlock()
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "workers must be at least 1", Kind: common.ErrKindConfig})
			return
		}
		s.cfg.Extraction.MaxWorkers = *upd.Workers
	}
	s.mu.Unlock()

	s.logger.Info("server.config.updated")
	s.handleGetConfig(w, r)
}
