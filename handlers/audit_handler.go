package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/keyward/keyward/repositories"
	"github.com/keyward/keyward/utils"
)

const defaultAuditPageSize = 50

// AuditHandler serves the persisted decision trail
type AuditHandler struct {
	repo   repositories.DecisionLogRepository
	logger *zap.Logger
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(repo repositories.DecisionLogRepository, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{repo: repo, logger: logger}
}

// HandleListDecisions handles GET /api/v1/decisions
func (h *AuditHandler) HandleListDecisions(w http.ResponseWriter, r *http.Request) {
	limit := defaultAuditPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			_ = utils.WriteBadRequest(w, "limit must be between 1 and 1000", nil)
			return
		}
		limit = n
	}

	logs, err := h.repo.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list decision logs", zap.Error(err))
		_ = utils.WriteInternalError(w, "")
		return
	}
	_ = utils.WriteOK(w, map[string]any{"decisions": logs})
}
