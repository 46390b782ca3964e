package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"fieldstack/callisto/pkg/audit"
	"fieldstack/callisto/pkg/registry"
)

// accountStatusResponse is the combined governance snapshot for one
// account.
type accountStatusResponse struct {
	AccountID string `json:"account_id"`
	RateLimit any    `json:"rate_limit"`
	Budget    any    `json:"budget"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAccountStatus(w http.ResponseWriter, r *http.Request) {
	account := r.PathValue("account")
	if account == "" {
		writeError(w, http.StatusBadRequest, "account is required")
		return
	}

	writeJSON(w, http.StatusOK, accountStatusResponse{
		AccountID: account,
		RateLimit: s.manager.RateLimitStatus(account),
		Budget:    s.manager.BudgetStatus(account),
	})
}

func (s *Server) handleListProviders(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")

	providers, err := s.repository.Providers(r.Context(), accountID)
	if err != nil {
		s.logger.Error("provider listing failed", "account_id", accountID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list providers")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"providers": providers})
}

func (s *Server) handleCreateProvider(w http.ResponseWriter, r *http.Request) {
	var cfg registry.ProviderConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid provider payload")
		return
	}
	if cfg.Name == "" || cfg.Provider == "" || cfg.Model == "" {
		writeError(w, http.StatusBadRequest, "name, provider, and model are required")
		return
	}
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}

	if err := s.repository.CreateProvider(r.Context(), cfg); err != nil {
		s.logger.Error("provider create failed", "name", cfg.Name, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create provider")
		return
	}

	writeJSON(w, http.StatusCreated, cfg)
}

func (s *Server) handleUpdateProvider(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var cfg registry.ProviderConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid provider payload")
		return
	}
	cfg.ID = id

	if err := s.repository.UpdateProvider(r.Context(), cfg); err != nil {
		s.logger.Error("provider update failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update provider")
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleDeleteProvider(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.repository.DeleteProvider(r.Context(), id); err != nil {
		s.logger.Error("provider delete failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete provider")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInvalidateCache(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")

	var err error
	if accountID == "" {
		err = s.repository.ClearAll(r.Context())
	} else {
		err = s.repository.InvalidateCache(r.Context(), accountID)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.repository.CacheStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read cache stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAuditStats(w http.ResponseWriter, r *http.Request) {
	if s.auditQueue == nil {
		writeJSON(w, http.StatusOK, audit.Stats{})
		return
	}

	writeJSON(w, http.StatusOK, s.auditQueue.Stats())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
