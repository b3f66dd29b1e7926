// Package api is the HTTP boundary around the engine: file upload,
// query and health. Upload validation (.pdf extension, size cap) lives
// here so the core never sees files the boundary should have rejected.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/WoldamlakDebasu/Cognidoc/internal/domain"
	"github.com/WoldamlakDebasu/Cognidoc/internal/engine"
)

// MaxUploadBytes caps a single uploaded file at 50MB.
const MaxUploadBytes = 50 << 20

// Server exposes the engine over HTTP.
type Server struct {
	engine *engine.Engine
	log    *slog.Logger
}

// NewServer creates the HTTP surface for an engine.
func NewServer(eng *engine.Engine, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{engine: eng, log: log}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("POST /query", s.handleQuery)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "CogniDoc API is running"})
}

// uploadResponse reports per-file ingestion outcomes.
type uploadResponse struct {
	Message       string            `json:"message"`
	UploadedFiles []string          `json:"uploaded_files"`
	FailedFiles   map[string]string `json:"failed_files,omitempty"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files provided")
		return
	}

	resp := uploadResponse{FailedFiles: make(map[string]string)}
	for _, fh := range files {
		name := filepath.Base(fh.Filename)
		if !strings.EqualFold(filepath.Ext(name), ".pdf") {
			resp.FailedFiles[name] = "only PDF files are supported"
			continue
		}
		if fh.Size > MaxUploadBytes {
			resp.FailedFiles[name] = fmt.Sprintf("file exceeds %dMB limit", MaxUploadBytes>>20)
			continue
		}

		f, err := fh.Open()
		if err != nil {
			resp.FailedFiles[name] = "could not read upload"
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			resp.FailedFiles[name] = "could not read upload"
			continue
		}

		if _, err := s.engine.Ingest(r.Context(), data, name); err != nil {
			s.log.Warn("upload rejected", "file", name, "error", err)
			resp.FailedFiles[name] = err.Error()
			continue
		}
		resp.UploadedFiles = append(resp.UploadedFiles, name)
	}

	status := http.StatusOK
	switch {
	case len(resp.UploadedFiles) == 0:
		resp.Message = "no documents could be processed"
		status = http.StatusUnprocessableEntity
	case len(resp.FailedFiles) > 0:
		resp.Message = "some documents could not be processed"
	default:
		resp.Message = "documents uploaded successfully"
	}
	if len(resp.FailedFiles) == 0 {
		resp.FailedFiles = nil
	}
	writeJSON(w, status, resp)
}

// queryRequest is the query entrypoint payload.
type queryRequest struct {
	Query      string `json:"query"`
	MaxSources int    `json:"max_sources,omitempty"`
}

// queryResponse serializes an answer with its citations.
type queryResponse struct {
	Answer         string          `json:"answer"`
	Sources        []domain.Source `json:"sources"`
	ProcessingTime float64         `json:"processing_time"`
	ContextUsed    int             `json:"context_used"`
	Timestamp      string          `json:"timestamp"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	answer, err := s.engine.Query(r.Context(), req.Query, req.MaxSources)
	if err != nil {
		var valErr *domain.ValidationError
		var provErr *domain.ProviderError
		switch {
		case errors.As(err, &valErr):
			writeError(w, http.StatusBadRequest, valErr.Reason)
		case errors.As(err, &provErr):
			s.log.Error("query failed", "error", err)
			writeError(w, http.StatusBadGateway, "could not generate an answer, please retry")
		default:
			s.log.Error("query failed", "error", err)
			writeError(w, http.StatusInternalServerError, "error processing query")
		}
		return
	}

	sources := answer.Sources
	if sources == nil {
		sources = []domain.Source{}
	}
	writeJSON(w, http.StatusOK, queryResponse{
		Answer:         answer.Text,
		Sources:        sources,
		ProcessingTime: answer.ProcessingTime.Seconds(),
		ContextUsed:    answer.ContextUsed,
		Timestamp:      answer.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "healthy",
		"mode":            s.engine.Mode(),
		"documents_count": s.engine.DocumentsCount(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
