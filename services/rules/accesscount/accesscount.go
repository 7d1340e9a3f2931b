// Package accesscount provides a built-in quota rule evaluator that limits
// how many requests each profile may make before an administrator clears it.
package accesscount

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/keyward/keyward/models"
	"github.com/keyward/keyward/services/rules"
	"github.com/keyward/keyward/utils"
)

// RuleName is the name this evaluator registers under.
const RuleName = "access-count"

type ruleParams struct {
	// Limit is the number of approvals granted per profile before the rule
	// starts denying.
	Limit int `json:"limit" validate:"required,gt=0"`

	// Kinds optionally restricts the request kinds this rule handles and
	// meters. Outside of them the rule reports indeterminate and the
	// counter does not move.
	Kinds []string `json:"kinds,omitempty"`
}

// Rule counts decides per profile and denies once the count exceeds the
// configured limit. Counters are keyed by the profile's byte identity and
// survive until cleared by an administrator.
type Rule struct {
	raw   map[string]any
	limit int
	kinds map[models.RequestKind]struct{}

	mu     sync.Mutex
	counts map[string]int
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
		raw:    rules.CopyParams(params),
		limit:  cfg.Limit,
		counts: make(map[string]int),
	}
	if len(cfg.Kinds) > 0 {
		r.kinds = make(map[models.RequestKind]struct{}, len(cfg.Kinds))
		for _, k := range cfg.Kinds {
			kind, err := models.ParseRequestKind(k)
			if err != nil {
				return nil, fmt.Errorf("access-count: %w", err)
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

// Decide meters the profile and approves while it is within its limit.
func (r *Rule) Decide(_ context.Context, req *models.ApprovalRequest) (rules.Verdict, error) {
	if r.kinds != nil {
		if _, ok := r.kinds[req.Kind]; !ok {
			return rules.VerdictIndeterminate, nil
		}
	}

	key := profileKey(req.Profile)
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counts[key]++
	if r.counts[key] <= r.limit {
		return rules.VerdictApprove, nil
	}
	return rules.VerdictDeny, nil
}

// CheckQuota reports false once the profile has used up its limit.
func (r *Rule) CheckQuota(profile models.ProfileInfo) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[profileKey(profile)] < r.limit
}

// ClearQuota resets the profile's counter.
func (r *Rule) ClearQuota(profile models.ProfileInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.counts, profileKey(profile))
}

// Params returns the configuration this rule was built from.
func (r *Rule) Params() map[string]any {
	return rules.CopyParams(r.raw)
}

func profileKey(profile models.ProfileInfo) string {
	return hex.EncodeToString(profile.ProfileID)
}
