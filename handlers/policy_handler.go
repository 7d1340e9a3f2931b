package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/keyward/keyward/middleware"
	"github.com/keyward/keyward/services/rules"
	"github.com/keyward/keyward/utils"
)

// PolicyHandler serves the admin policy surface: inspecting the normalized
// policy, listing registered rules, and reloading the policy file.
type PolicyHandler struct {
	handle     *rules.Handle
	registry   *rules.Registry
	policyPath string
	logger     *zap.Logger
}

// NewPolicyHandler creates a new PolicyHandler
func NewPolicyHandler(handle *rules.Handle, registry *rules.Registry, policyPath string, logger *zap.Logger) *PolicyHandler {
	return &PolicyHandler{
		handle:     handle,
		registry:   registry,
		policyPath: policyPath,
		logger:     logger,
	}
}

// HandleGetPolicy handles GET /api/v1/policy. It returns the serialized
// policy, which is the loaded file with every rule_id injected.
func (h *PolicyHandler) HandleGetPolicy(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, h.handle.Current().Serialize())
}

// HandleListRules handles GET /api/v1/rules
func (h *PolicyHandler) HandleListRules(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, map[string]any{"rules": h.registry.Names()})
}

// HandleReloadPolicy handles POST /api/v1/policy/reload. The new engine is
// published atomically; a failed build leaves the running policy untouched.
func (h *PolicyHandler) HandleReloadPolicy(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestIDFromContext(r.Context())

	doc, err := rules.LoadPolicyFile(h.policyPath)
	if err != nil {
		h.logger.Error("policy reload failed",
			zap.String("request_id", requestID),
			zap.String("path", h.policyPath),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "Failed to load policy file", map[string]any{"reason": err.Error()})
		return
	}

	if err := h.handle.Reload(doc, h.registry, h.logger); err != nil {
		h.logger.Error("policy reload rejected",
			zap.String("request_id", requestID),
			zap.String("path", h.policyPath),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "Policy rejected", map[string]any{"reason": err.Error()})
		return
	}

	h.logger.Info("policy reloaded",
		zap.String("request_id", requestID),
		zap.String("path", h.policyPath))
	_ = utils.WriteOK(w, h.handle.Current().Serialize())
}
