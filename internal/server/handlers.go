package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/hyperjump/textintel/internal/analysis"
	"github.com/hyperjump/textintel/internal/models"
	"github.com/hyperjump/textintel/internal/search"
	"github.com/hyperjump/textintel/internal/storage"
	"github.com/hyperjump/textintel/internal/vector"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req models.TextRequest
	if !s.decode(w, r, &req) {
		return
	}
	resp, err := s.analyzer.Analyze(r.Context(), req.Text)
	if err != nil {
		s.fail(w, r, "analyze", err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req models.TextRequest
	if !s.decode(w, r, &req) {
		return
	}
	summary, err := s.analyzer.Summarize(r.Context(), req.Text)
	if err != nil {
		s.fail(w, r, "summarize", err)
		return
	}
	s.respondJSON(w, http.StatusOK, models.SummarizeResponse{Summary: summary})
}

func (s *Server) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	var req models.TextRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.store.AddDocument(r.Context(), req.Text); err != nil {
		s.fail(w, r, "add document", err)
		return
	}
	s.respondJSON(w, http.StatusOK, models.StatusMessage{Status: "document added successfully"})
}

func (s *Server) handleSemanticSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SemanticSearchRequest
	if !s.decode(w, r, &req) {
		return
	}
	opts := []search.SearchOption{search.WithTopK(*req.TopK)}
	if req.MinScore != nil {
		opts = append(opts, search.WithMinScore(*req.MinScore))
	}
	s.logger.Debug("semantic search request", zap.String("query", req.Query), zap.Int("top_k", *req.TopK))
	matches, err := s.store.SearchSimilar(r.Context(), req.Query, opts...)
	if err != nil {
		s.fail(w, r, "semantic search", err)
		return
	}
	s.respondJSON(w, http.StatusOK, models.SemanticSearchResponse{Matches: matches})
}

func (s *Server) handleRebuildIndex(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.RebuildIndex(r.Context())
	if err != nil {
		s.fail(w, r, "rebuild index", err)
		return
	}
	s.respondJSON(w, http.StatusOK, models.RebuildResponse{Status: "index rebuilt", Documents: n})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.fail(w, r, "status", err)
		return
	}
	resp := models.StoreStatus{Stats: stats, InSync: stats.InSync(), Embedding: s.provider}
	if n, err := storage.DiskUsageBytes(s.store.Paths()...); err == nil {
		resp.DiskUsageBytes = n
	} else {
		s.logger.Warn("status: disk usage failed", zap.Error(err))
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, models.StatusMessage{Status: "ok"})
}

type validator interface {
	Validate() error
}

// decode reads a JSON body into v and validates it, writing a 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v validator) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := v.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// fail maps err to a status code and writes it.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	fields := []zap.Field{
		zap.String("request_id", RequestIDFrom(r.Context())),
		zap.String("op", op),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error(fmt.Sprintf("%s failed", op), fields...)
	} else {
		s.logger.Debug(fmt.Sprintf("%s rejected", op), fields...)
	}
	s.respondError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, search.ErrEmptyText),
		errors.Is(err, search.ErrDimensionMismatch):
		return http.StatusBadRequest
	case errors.Is(err, vector.ErrFormatMismatch):
		return http.StatusConflict
	case errors.Is(err, analysis.ErrNoModel):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode response", zap.Int("status", status), zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
