package handlers

import (
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/keyward/keyward/middleware"
	"github.com/keyward/keyward/models"
	"github.com/keyward/keyward/services/rules"
	"github.com/keyward/keyward/utils"
)

// SimulateDecisionRequest describes a dry-run decision request
type SimulateDecisionRequest struct {
	Kind            string            `json:"kind" validate:"required"`
	DeviceID        string            `json:"device_id" validate:"required,hexadecimal"`
	ProfileID       string            `json:"profile_id" validate:"required,hexadecimal"`
	ProfileWords    []string          `json:"profile_words,omitempty"`
	CryptographicID string            `json:"cryptographic_id,omitempty" validate:"omitempty,hexadecimal"`
	AuthMeta        []MetaInfoPayload `json:"auth_meta,omitempty"`
}

// MetaInfoPayload is one authenticated metadata entry in API payloads
type MetaInfoPayload struct {
	Meta     string `json:"meta" validate:"required"`
	Complete bool   `json:"complete"`
}

// SimulateDecisionResponse carries the verdict for a simulated decision
type SimulateDecisionResponse struct {
	Verdict string `json:"verdict"`
}

// DecisionRecorder receives decision records for the audit trail
type DecisionRecorder interface {
	Record(log *models.DecisionLog)
}

// DecisionHandler serves dry-run decisions for administrators. Real
// approval requests reach the engine through the hosting key server, not
// through this API; simulation exists so an operator can verify a policy
// against a concrete request before it matters.
type DecisionHandler struct {
	handle   *rules.Handle
	recorder DecisionRecorder // nil when auditing is disabled
	logger   *zap.Logger
}

// NewDecisionHandler creates a new DecisionHandler
func NewDecisionHandler(handle *rules.Handle, recorder DecisionRecorder, logger *zap.Logger) *DecisionHandler {
	return &DecisionHandler{
		handle:   handle,
		recorder: recorder,
		logger:   logger,
	}
}

// HandleSimulate handles POST /api/v1/decisions/simulate
func (h *DecisionHandler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var payload SimulateDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(payload); err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), validationDetails(err))
		return
	}

	req, err := payload.toApprovalRequest()
	if err != nil {
		_ = utils.WriteBadRequest(w, err.Error(), nil)
		return
	}

	verdict := h.handle.Current().Decide(ctx, req)

	h.logger.Info("decision simulated",
		zap.String("request_id", requestID),
		zap.String("kind", string(req.Kind)),
		zap.String("verdict", verdict.String()))

	if h.recorder != nil {
		h.recorder.Record(&models.DecisionLog{
			ID:          uuid.New(),
			RequestKind: string(req.Kind),
			ProfileID:   payload.ProfileID,
			DeviceID:    payload.DeviceID,
			Verdict:     verdict.String(),
			Reason:      "simulated by administrator",
			RequestID:   requestID,
			CreatedAt:   time.Now().UTC(),
		})
	}

	_ = utils.WriteOK(w, SimulateDecisionResponse{Verdict: verdict.String()})
}

func (p *SimulateDecisionRequest) toApprovalRequest() (*models.ApprovalRequest, error) {
	kind, err := models.ParseRequestKind(p.Kind)
	if err != nil {
		return nil, err
	}

	deviceID, err := hex.DecodeString(p.DeviceID)
	if err != nil {
		return nil, err
	}
	profileID, err := hex.DecodeString(p.ProfileID)
	if err != nil {
		return nil, err
	}
	var cryptoID []byte
	if p.CryptographicID != "" {
		if cryptoID, err = hex.DecodeString(p.CryptographicID); err != nil {
			return nil, err
		}
	}

	meta := make([]models.MetaInfo, 0, len(p.AuthMeta))
	for _, m := range p.AuthMeta {
		meta = append(meta, models.MetaInfo{Meta: m.Meta, Complete: m.Complete})
	}

	return &models.ApprovalRequest{
		Kind:            kind,
		DeviceID:        deviceID,
		Profile:         models.ProfileInfo{ProfileID: profileID, ProfileWords: p.ProfileWords},
		CryptographicID: cryptoID,
		AuthMeta:        meta,
	}, nil
}
