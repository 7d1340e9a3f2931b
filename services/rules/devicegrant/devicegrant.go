// Package devicegrant provides a built-in rule evaluator that approves
// requests originating from an allow-list of device identities.
package devicegrant

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/keyward/keyward/models"
	"github.com/keyward/keyward/services/rules"
	"github.com/keyward/keyward/utils"
)

// RuleName is the name this evaluator registers under.
const RuleName = "device-grant"

type ruleParams struct {
	// DeviceIDs are hex-encoded device identities allowed by this rule.
	DeviceIDs []string `json:"device_ids" validate:"required,min=1,dive,hexadecimal"`

	// Kinds optionally restricts the request kinds this rule handles.
	// Outside of them the rule reports indeterminate rather than denying.
	Kinds []string `json:"kinds,omitempty"`
}

// Rule approves a request when its device id is on the configured allow
// list. Stateless after construction, so safe for concurrent decides.
type Rule struct {
	raw     map[string]any
	devices map[string]struct{}
	kinds   map[models.RequestKind]struct{}
}

// New constructs the evaluator from policy parameters.
func New(params map[string]any) (rules.Evaluator, error) {
	var cfg ruleParams
	if err := rules.DecodeParams(params, &cfg); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(cfg); err != nil {
		return nil, err
	}

	r := &Rule{
		raw:     rules.CopyParams(params),
		devices: make(map[string]struct{}, len(cfg.DeviceIDs)),
	}
	for _, d := range cfg.DeviceIDs {
		r.devices[strings.ToLower(d)] = struct{}{}
	}
	if len(cfg.Kinds) > 0 {
		r.kinds = make(map[models.RequestKind]struct{}, len(cfg.Kinds))
		for _, k := range cfg.Kinds {
			kind, err := models.ParseRequestKind(k)
			if err != nil {
				return nil, fmt.Errorf("device-grant: %w", err)
			}
			r.kinds[kind] = struct{}{}
		}
	}
	return r, nil
}

// Register registers the evaluator in a registry.
func Register(reg *rules.Registry) error {
	return reg.Register(RuleName, New)
}

// Name returns the rule name.
func (r *Rule) Name() string { return RuleName }

// Decide approves when the requesting device is on the allow list.
func (r *Rule) Decide(_ context.Context, req *models.ApprovalRequest) (rules.Verdict, error) {
	if r.kinds != nil {
		if _, ok := r.kinds[req.Kind]; !ok {
			return rules.VerdictIndeterminate, nil
		}
	}
	if _, ok := r.devices[hex.EncodeToString(req.DeviceID)]; ok {
		return rules.VerdictApprove, nil
	}
	return rules.VerdictDeny, nil
}

// Params returns the configuration this rule was built from.
func (r *Rule) Params() map[string]any {
	return rules.CopyParams(r.raw)
}
