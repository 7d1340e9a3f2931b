package rules

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/keyward/keyward/models"
)

// Engine is the top-level policy object: a mapping from request kind to its
// rule tree. It is built once from a declarative policy document and is
// read-only thereafter, so concurrent Decide calls need no locking. The only
// mutable shared state lives inside individual evaluator instances.
type Engine struct {
	order  []models.RequestKind
	trees  map[models.RequestKind]*RuleTree
	logger *zap.Logger
}

// NewEngine builds an engine from a policy document. Construction is
// atomic: an unknown request kind, a malformed entry, or a rule name absent
// from the registry rejects the whole policy, and no partially built engine
// is returned.
//
// Identifier assignment runs once across the full nested structure in a
// single left-to-right, top-to-bottom traversal before any evaluator is
// constructed, so assignment is deterministic for a fixed document layout.
// Entries missing a rule_id are mutated in place to carry the assigned id.
//
// A nil logger falls back to a no-op logger.
func NewEngine(doc *PolicyDocument, registry *Registry, logger *zap.Logger) (*Engine, error) {
	if doc == nil {
		return nil, fmt.Errorf("policy document is nil")
	}
	if registry == nil {
		registry = DefaultRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		trees:  make(map[models.RequestKind]*RuleTree),
		logger: logger,
	}

	// Validate every kind against the closed enumeration up front.
	for _, kp := range doc.Kinds {
		kind, err := models.ParseRequestKind(kp.Kind)
		if err != nil {
			return nil, fmt.Errorf("invalid policy: %w", err)
		}
		if _, dup := e.trees[kind]; dup {
			return nil, fmt.Errorf("invalid policy: request kind %q configured twice", kp.Kind)
		}
		e.trees[kind] = nil
		e.order = append(e.order, kind)
	}

	// Assign identifiers across the whole document before constructing
	// anything.
	assigner := NewIDAssigner()
	for _, kp := range doc.Kinds {
		for _, group := range kp.Groups {
			for _, entry := range group {
				if entry == nil {
					return nil, fmt.Errorf("invalid policy: nil rule entry under %q", kp.Kind)
				}
				if _, err := assigner.Assign(entry); err != nil {
					return nil, fmt.Errorf("invalid policy under %q: %w", kp.Kind, err)
				}
			}
		}
	}

	// Construct evaluator instances and build the trees.
	for i, kp := range doc.Kinds {
		kind := e.order[i]
		tree := &RuleTree{}
		for _, group := range kp.Groups {
			set := &RuleSet{logger: logger}
			for _, entry := range group {
				bound, err := buildRule(entry, registry)
				if err != nil {
					return nil, fmt.Errorf("invalid policy under %q: %w", kp.Kind, err)
				}
				set.rules = append(set.rules, bound)
			}
			tree.sets = append(tree.sets, set)
		}
		e.trees[kind] = tree
	}

	return e, nil
}

// buildRule turns one configuration entry into a bound evaluator via the
// registry. The entry already carries its rule_id.
func buildRule(entry RuleConfig, registry *Registry) (boundRule, error) {
	rawName, ok := entry["rule"]
	if !ok {
		return boundRule{}, fmt.Errorf("rule entry is missing a rule name")
	}
	name, ok := rawName.(string)
	if !ok || name == "" {
		return boundRule{}, fmt.Errorf("rule name must be a non-empty string, got %v", rawName)
	}
	id, _ := entry["rule_id"].(string)

	factory, err := registry.Lookup(name)
	if err != nil {
		return boundRule{}, fmt.Errorf("rule %q: %w", name, err)
	}

	params := make(map[string]any, len(entry))
	for k, v := range entry {
		if k == "rule" || k == "rule_id" {
			continue
		}
		params[k] = v
	}

	eval, err := factory(params)
	if err != nil {
		return boundRule{}, fmt.Errorf("rule %q: %w", name, err)
	}
	if eval == nil {
		return boundRule{}, fmt.Errorf("rule %q: factory returned nil evaluator", name)
	}
	return bindRule(id, eval), nil
}

// NewEngineWithTrees builds an engine directly from constructed trees,
// bypassing the policy document. Intended for embedding and tests; such an
// engine serializes with empty rule ids.
func NewEngineWithTrees(trees map[models.RequestKind]*RuleTree, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		trees:  make(map[models.RequestKind]*RuleTree, len(trees)),
		logger: logger,
	}
	for _, kind := range models.RequestKinds() {
		if tree, ok := trees[kind]; ok {
			e.trees[kind] = tree
			e.order = append(e.order, kind)
		}
	}
	return e
}

// Decide looks up the tree for the request's kind and returns its verdict.
// When no tree is configured for the kind it returns VerdictIndeterminate,
// leaving the default-policy choice to the caller. No fault ever escapes
// Decide; evaluator faults are absorbed at the rule set boundary.
func (e *Engine) Decide(ctx context.Context, req *models.ApprovalRequest) Verdict {
	tree, ok := e.trees[req.Kind]
	if !ok {
		return VerdictIndeterminate
	}
	return fromBool(tree.Decide(ctx, req))
}

// CheckQuota reports whether the profile is clear of every quota-tracking
// evaluator's limits. It is advisory only; false means at least one
// evaluator would not currently approve the profile.
func (e *Engine) CheckQuota(profile models.ProfileInfo) bool {
	clear := true
	e.eachRule(func(r *boundRule) {
		if r.quota != nil && !r.quota.CheckQuota(profile) {
			clear = false
		}
	})
	return clear
}

// ClearQuota fans out an administrative quota reset to every evaluator
// across every group across every kind's tree. Order is unspecified.
func (e *Engine) ClearQuota(profile models.ProfileInfo) {
	e.eachRule(func(r *boundRule) {
		if r.quota != nil {
			r.quota.ClearQuota(profile)
		}
	})
}

func (e *Engine) eachRule(fn func(r *boundRule)) {
	for _, tree := range e.trees {
		for _, set := range tree.sets {
			for i := range set.rules {
				fn(&set.rules[i])
			}
		}
	}
}

// Serialize is the inverse of NewEngine: it emits the policy document the
// engine was built from, including the identifiers assigned or preserved
// during build. Building the result again yields trees with identical
// decision behavior and identifiers.
func (e *Engine) Serialize() *PolicyDocument {
	doc := &PolicyDocument{}
	for _, kind := range e.order {
		tree := e.trees[kind]
		kp := KindPolicy{Kind: string(kind), Groups: make([][]RuleConfig, 0, len(tree.sets))}
		for _, set := range tree.sets {
			group := make([]RuleConfig, 0, len(set.rules))
			for i := range set.rules {
				r := &set.rules[i]
				entry := RuleConfig{}
				for k, v := range r.eval.Params() {
					entry[k] = v
				}
				entry["rule"] = r.eval.Name()
				if r.id != "" {
					entry["rule_id"] = r.id
				}
				group = append(group, entry)
			}
			kp.Groups = append(kp.Groups, group)
		}
		doc.Kinds = append(doc.Kinds, kp)
	}
	return doc
}
