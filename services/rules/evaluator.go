package rules

import (
	"context"

	"github.com/keyward/keyward/models"
)

// Evaluator is the contract every pluggable policy unit implements.
//
// Decide returns the evaluator's authoritative verdict for a single request.
// A non-nil error is an evaluator fault; the enclosing group logs it and
// treats it as a denial. VerdictIndeterminate signals that the request kind
// is not handled by this evaluator; the group logs it as an error and treats
// it as a denial as well.
//
// Evaluators may mutate their own internal state (counters, caches) during
// Decide. Making that state safe under concurrent calls is the evaluator's
// own responsibility; the engine provides no locking around evaluator calls.
type Evaluator interface {
	// Name returns the stable name used in the "rule" field of a policy
	// document to look this evaluator up in the registry.
	Name() string

	// Decide produces the verdict for one request.
	Decide(ctx context.Context, req *models.ApprovalRequest) (Verdict, error)

	// Params returns the evaluator-specific configuration it was built from,
	// excluding the "rule" and "rule_id" keys, which the engine re-appends
	// when serializing the policy.
	Params() map[string]any
}

// QuotaReporter is the optional quota capability of an evaluator. The engine
// resolves it once at construction time via a type assertion and caches the
// result, so evaluators without quota state pay nothing per call.
type QuotaReporter interface {
	// CheckQuota reports false if the profile is at or over some limit and
	// would not currently be approved. It is a non-authoritative hint and
	// never denies a request by itself.
	CheckQuota(profile models.ProfileInfo) bool

	// ClearQuota resets any internal per-profile counters. It is invoked by
	// administrative tooling, possibly for profiles the evaluator has never
	// seen, and must tolerate that.
	ClearQuota(profile models.ProfileInfo)
}

// Factory constructs an evaluator instance from the evaluator-specific
// parameters of one rule configuration entry ("rule" and "rule_id" removed).
type Factory func(params map[string]any) (Evaluator, error)
