package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/oralarg/internal/keyword"
	"github.com/hyperjump/oralarg/internal/models"
	"github.com/hyperjump/oralarg/internal/reconcile"
	"github.com/hyperjump/oralarg/internal/storage"
	"go.uber.org/zap"
)

// StatusResponse is the shape of GET /api/v1/status.
type StatusResponse struct {
	*models.Stats
	IndexedStatements uint64        `json:"indexed_statements"`
	DiskUsageBytes    *int64        `json:"disk_usage_bytes,omitempty"`
	Config            *StatusConfig `json:"config,omitempty"`
}

// StatusConfig echoes the paths the server is working against.
type StatusConfig struct {
	DatabasePath   string `json:"database_path,omitempty"`
	BleveIndexPath string `json:"bleve_index_path,omitempty"`
	TranscriptsDir string `json:"transcripts_dir,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.storage.Stats(r.Context())
	if err != nil {
		s.logger.Error("status: stats failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := &StatusResponse{Stats: stats}
	if s.index != nil {
		if n, err := s.index.DocCount(); err == nil {
			resp.IndexedStatements = n
		}
	}
	if s.config != nil {
		resp.Config = &StatusConfig{
			DatabasePath:   s.config.Storage.DatabasePath,
			BleveIndexPath: s.config.Storage.BleveIndexPath,
			TranscriptsDir: s.config.Data.TranscriptsDir,
		}
		diskBytes, err := storage.DiskUsageBytes(s.config.Storage.DatabasePath, s.config.Storage.BleveIndexPath)
		if err == nil {
			resp.DiskUsageBytes = &diskBytes
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCoverage(w http.ResponseWriter, r *http.Request) {
	cov, err := reconcile.CoverageStats(r.Context(), s.storage)
	if err != nil {
		s.logger.Error("coverage failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, cov)
}

func (s *Server) handleListCases(w http.ResponseWriter, r *http.Request) {
	cases, err := s.storage.ListCases(r.Context())
	if err != nil {
		s.logger.Error("list cases failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if cases == nil {
		cases = []*models.Case{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"cases": cases, "total": len(cases)})
}

func (s *Server) handleListTranscripts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f storage.TranscriptFilter
	var err error
	if f.Term, err = intParam(q.Get("term")); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid term")
		return
	}
	if f.Offset, err = intParam(q.Get("offset")); err != nil || f.Offset < 0 {
		s.respondError(w, http.StatusBadRequest, "invalid offset")
		return
	}
	if f.Limit, err = intParam(q.Get("limit")); err != nil || f.Limit < 0 {
		s.respondError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if v := q.Get("flagged"); v != "" {
		if f.FlaggedOnly, err = strconv.ParseBool(v); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid flagged")
			return
		}
	}
	transcripts, err := s.storage.ListTranscripts(r.Context(), f)
	if err != nil {
		s.logger.Error("list transcripts failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if transcripts == nil {
		transcripts = []*models.Transcript{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"transcripts": transcripts, "total": len(transcripts)})
}

func (s *Server) handleGetTranscript(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r)
	if !ok {
		return
	}
	t, err := s.storage.GetTranscript(r.Context(), id)
	if err != nil {
		s.respondStorageError(w, "transcript", err)
		return
	}
	// raw text is large and available from the source file
	if r.URL.Query().Get("raw") != "true" {
		t.RawText = ""
	}
	s.respondJSON(w, http.StatusOK, t)
}

func (s *Server) handleListFlags(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r)
	if !ok {
		return
	}
	if _, err := s.storage.GetTranscript(r.Context(), id); err != nil {
		s.respondStorageError(w, "transcript", err)
		return
	}
	flags, err := s.storage.ListRedFlags(r.Context(), id)
	if err != nil {
		s.logger.Error("list red flags failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if flags == nil {
		flags = []*models.RedFlag{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"red_flags": flags})
}

func (s *Server) handleGetStatement(w http.ResponseWriter, r *http.Request) {
	id, ok := s.idParam(w, r)
	if !ok {
		return
	}
	st, err := s.storage.GetStatement(r.Context(), id)
	if err != nil {
		s.respondStorageError(w, "statement", err)
		return
	}
	s.respondJSON(w, http.StatusOK, st)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		s.respondError(w, http.StatusNotImplemented, "search index not available")
		return
	}
	var query keyword.Query
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if query.Query == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return
	}
	s.logger.Debug("search request", zap.String("query", query.Query), zap.Int("limit", query.Limit))
	response, err := keyword.Run(r.Context(), s.index, &query, &s.config.Search)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		s.respondError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func (s *Server) respondStorageError(w http.ResponseWriter, what string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, what+" not found")
		return
	}
	s.logger.Error("get "+what+" failed", zap.Error(err))
	s.respondError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
