package rules

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/keyward/keyward/models"
)

// boundRule is one constructed evaluator plus the identifier assigned to its
// configuration entry. The quota capability is resolved once here so the hot
// path never type-asserts.
type boundRule struct {
	id    string
	eval  Evaluator
	quota QuotaReporter
}

func bindRule(id string, eval Evaluator) boundRule {
	b := boundRule{id: id, eval: eval}
	if q, ok := eval.(QuotaReporter); ok {
		b.quota = q
	}
	return b
}

// RuleSet is an ordered AND-combination of evaluators: all must approve.
// An empty RuleSet approves.
type RuleSet struct {
	rules  []boundRule
	logger *zap.Logger
}

// NewRuleSet builds a RuleSet over the given evaluators, in order. Evaluators
// constructed outside a policy document get an empty rule id. A nil logger
// falls back to a no-op logger.
func NewRuleSet(logger *zap.Logger, evals ...Evaluator) *RuleSet {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &RuleSet{logger: logger}
	for _, e := range evals {
		s.rules = append(s.rules, bindRule("", e))
	}
	return s
}

// Decide evaluates member evaluators strictly in configured order and
// returns true only if every one approves. Evaluation stops at the first
// deny, indeterminate, or fault; evaluators after that point are never
// invoked, so their side effects do not occur for this request. An
// indeterminate verdict and a fault are both logged with the offending
// evaluator identified before the set returns false.
func (s *RuleSet) Decide(ctx context.Context, req *models.ApprovalRequest) bool {
	for i := range s.rules {
		r := &s.rules[i]
		verdict, err := safeDecide(ctx, r.eval, req)
		if err != nil {
			s.logger.Error("error in rule",
				zap.String("rule", r.eval.Name()),
				zap.String("rule_id", r.id),
				zap.String("request_kind", string(req.Kind)),
				zap.Error(err))
			return false
		}
		if verdict == VerdictIndeterminate {
			s.logger.Error("unknown request kind for rule",
				zap.String("rule", r.eval.Name()),
				zap.String("rule_id", r.id),
				zap.String("request_kind", string(req.Kind)))
			return false
		}
		if verdict != VerdictApprove {
			return false
		}
	}
	return true
}

// safeDecide invokes an evaluator, converting a panic into a fault so no
// evaluator can take down the engine.
func safeDecide(ctx context.Context, eval Evaluator, req *models.ApprovalRequest) (verdict Verdict, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			verdict = VerdictIndeterminate
			err = fmt.Errorf("rule panicked: %v", rec)
		}
	}()
	return eval.Decide(ctx, req)
}

// RuleTree is an ordered OR-combination of RuleSets: any one approving is
// sufficient. An empty RuleTree denies; an explicitly configured but empty
// alternative list means "no path to approval".
type RuleTree struct {
	sets []*RuleSet
}

// NewRuleTree builds a RuleTree over the given RuleSets, in order.
func NewRuleTree(sets ...*RuleSet) *RuleTree {
	return &RuleTree{sets: sets}
}

// Decide evaluates member RuleSets strictly in configured order and returns
// true on the first set that approves, short-circuiting the rest.
func (t *RuleTree) Decide(ctx context.Context, req *models.ApprovalRequest) bool {
	for _, set := range t.sets {
		if set.Decide(ctx, req) {
			return true
		}
	}
	return false
}
