package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mulefish/search-toy/internal/models"
	"github.com/mulefish/search-toy/internal/ranking"
	"github.com/mulefish/search-toy/internal/search"
	"github.com/mulefish/search-toy/internal/storage"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("search request", zap.String("query", query.Query), zap.Int("top_k", query.TopK))
	response, err := s.engine.Semantic(r.Context(), &query)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrEmptyQuery):
			s.respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ranking.ErrNoData):
			s.logger.Warn("search against empty catalog", zap.Error(err))
			s.respondError(w, http.StatusServiceUnavailable, "no embeddings loaded; seed the catalog first")
		default:
			s.logger.Error("search failed", zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleKeyword(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	s.logger.Debug("keyword request", zap.String("query", q), zap.Int("limit", limit))
	response, err := s.engine.Keyword(r.Context(), q, limit)
	if err != nil {
		s.logger.Error("keyword search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	offset, limit := 0, 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			offset = n
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	items, err := s.store.ListItems(r.Context(), offset, limit)
	if err != nil {
		s.logger.Error("list items failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"items": items, "count": len(items)})
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	item, err := s.store.GetItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "item not found")
			return
		}
		s.logger.Error("get item failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

// handleReload rebuilds the in-memory ranker and keyword index from the
// store. Exposed so external writers can invalidate the cache on demand.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("reload request")
	if err := s.engine.Reload(r.Context()); err != nil {
		s.logger.Error("reload failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type statusResponse struct {
	*search.Status
	Config         map[string]interface{} `json:"config"`
	DiskUsageBytes int64                  `json:"disk_usage_bytes,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.engine.Status(r.Context())
	if err != nil {
		s.logger.Error("status failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := statusResponse{
		Status: st,
		Config: map[string]interface{}{
			"embedding_provider":   s.cfg.Embedding.Provider,
			"embedding_model":      s.cfg.Embedding.Model,
			"embedding_dimensions": s.cfg.Embedding.Dimensions,
			"database_path":        s.cfg.Storage.DatabasePath,
			"bleve_index_path":     s.cfg.Storage.BleveIndexPath,
			"min_similarity":       s.cfg.Search.MinSimilarity,
			"pushdown":             s.cfg.Search.Pushdown,
		},
	}
	if diskBytes, err := storage.DiskUsageBytes(s.cfg.Storage.DatabasePath, s.cfg.Storage.BleveIndexPath); err == nil {
		resp.DiskUsageBytes = diskBytes
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
