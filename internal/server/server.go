// Package server exposes the pipeline over REST. All endpoints speak JSON;
// errors carry the pipeline's error kind so clients can distinguish bad
// input from provider outages.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/joseph-ayodele/pa-autofill/internal/common"
	"github.com/joseph-ayodele/pa-autofill/internal/pipeline"
)

// ProcessorFactory builds a processor for one run. The server clones its
// config and applies per-request overrides before calling it.
type ProcessorFactory func(cfg *common.Config) (*pipeline.Processor, error)

// Server is the REST boundary around the pipeline.
type Server struct {
	mu      sync.RWMutex
	cfg     *common.Config
	factory ProcessorFactory
	logger  *slog.Logger

	results map[string]*pipeline.ProcessingResult
}

func NewServer(cfg *common.Config, factory ProcessorFactory, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:     cfg,
		factory: factory,
		logger:  logger,
		results: make(map[string]*pipeline.ProcessingResult),
	}
}

// Router builds the HTTP route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/folders", s.handleListFolders).Methods(http.MethodGet)
	r.HandleFunc("/api/folders/{name}", s.handleGetFolder).Methods(http.MethodGet)
	r.HandleFunc("/api/process", s.handleProcess).Methods(http.MethodPost)
	r.HandleFunc("/api/process/batch", s.handleProcessBatch).Methods(http.MethodPost)
	r.HandleFunc("/api/results", s.handleListResults).Methods(http.MethodGet)
	r.HandleFunc("/api/results/{name}", s.handleGetResult).Methods(http.MethodGet)
	r.HandleFunc("/api/results/{name}/download/{file}", s.handleDownload).Methods(http.MethodGet)
	r.HandleFunc("/api/config", s.handleGetConfig).Methods(http.MethodGet)
	r.HandleFunc("/api/config", s.handleUpdateConfig).Methods(http.MethodPost)
	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server.listen", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("server.shutdown")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("server.request",
			"method", r.Method,
			"path", r.URL.Path,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	})
}

// effectiveConfig returns a copy of the current config for one run.
func (s *Server) effectiveConfig() common.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.cfg
}

func (s *Server) storeResult(res *pipeline.ProcessingResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[res.Folder] = res
}

func (s *Server) result(name string) (*pipeline.ProcessingResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.results[name]
	return res, ok
}

type errorResponse struct {
	Error string         `json:"error"`
	Kind  common.ErrKind `json:"kind"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := common.KindOf(err)
	writeJSON(w, statusForKind(kind), errorResponse{Error: err.Error(), Kind: kind})
}

func statusForKind(kind common.ErrKind) int {
	switch kind {
	case common.ErrKindDocumentRead, common.ErrKindFormSchema:
		return http.StatusUnprocessableEntity
	case common.ErrKindConfig:
		return http.StatusBadRequest
	case common.ErrKindProvider:
		return http.StatusBadGateway
	case common.ErrKindParse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
