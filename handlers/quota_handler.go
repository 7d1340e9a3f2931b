package handlers

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/keyward/keyward/middleware"
	"github.com/keyward/keyward/models"
	"github.com/keyward/keyward/services/rules"
	"github.com/keyward/keyward/utils"
)

// ProfileRequest identifies a profile in quota administration calls
type ProfileRequest struct {
	ProfileID    string   `json:"profile_id" validate:"required,hexadecimal"`
	ProfileWords []string `json:"profile_words,omitempty"`
}

// QuotaHandler serves quota administration: checking and clearing
// per-profile limits across every rule in the running policy.
type QuotaHandler struct {
	handle *rules.Handle
	logger *zap.Logger
}

// NewQuotaHandler creates a new QuotaHandler
func NewQuotaHandler(handle *rules.Handle, logger *zap.Logger) *QuotaHandler {
	return &QuotaHandler{handle: handle, logger: logger}
}

// HandleClearQuota handles POST /api/v1/quota/clear
func (h *QuotaHandler) HandleClearQuota(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.decodeProfile(w, r)
	if !ok {
		return
	}

	h.handle.Current().ClearQuota(profile)

	h.logger.Info("quota cleared",
		zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())),
		zap.String("profile_id", hex.EncodeToString(profile.ProfileID)))
	utils.WriteNoContent(w)
}

// HandleCheckQuota handles POST /api/v1/quota/check
func (h *QuotaHandler) HandleCheckQuota(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.decodeProfile(w, r)
	if !ok {
		return
	}

	clear := h.handle.Current().CheckQuota(profile)
	_ = utils.WriteOK(w, map[string]any{"clear": clear})
}

func (h *QuotaHandler) decodeProfile(w http.ResponseWriter, r *http.Request) (models.ProfileInfo, bool) {
	var req ProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return models.ProfileInfo{}, false
	}
	if err := utils.ValidateStruct(req); err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), validationDetails(err))
		return models.ProfileInfo{}, false
	}

	profileID, err := hex.DecodeString(req.ProfileID)
	if err != nil {
		_ = utils.WriteBadRequest(w, "profile_id must be hex", nil)
		return models.ProfileInfo{}, false
	}
	return models.ProfileInfo{ProfileID: profileID, ProfileWords: req.ProfileWords}, true
}

// validationDetails lifts field errors into a response details map
func validationDetails(err error) map[string]any {
	var vErr *utils.ValidationError
	if !errors.As(err, &vErr) {
		return nil
	}
	details := make(map[string]any, len(vErr.Fields))
	for field, msg := range vErr.Fields {
		details[field] = msg
	}
	return details
}
