// Package pathmatch provides a built-in rule evaluator that matches the
// authenticated metadata paths of a request against a glob or regular
// expression pattern.
package pathmatch

import (
	"context"
	"fmt"
	"path"
	"regexp"

	"github.com/keyward/keyward/models"
	"github.com/keyward/keyward/services/rules"
	"github.com/keyward/keyward/utils"
)

// RuleName is the name this evaluator registers under.
const RuleName = "path-match"

const (
	matchGlob  = "glob"
	matchRegex = "regex"
	matchAny   = "any"
)

type ruleParams struct {
	// Type selects how Pattern is interpreted: "glob", "regex", or "any".
	Type string `json:"type" validate:"required,oneof=glob regex any"`

	// Pattern is the pattern to match against. Ignored when Type is "any".
	Pattern string `json:"pattern,omitempty" validate:"required_unless=Type any"`

	// Invert selects paths that do not match the pattern. Ignored when
	// Type is "any".
	Invert bool `json:"invert,omitempty"`

	// RequireComplete skips metadata entries that are not fully verified.
	RequireComplete bool `json:"require_complete,omitempty"`
}

// Rule approves a request when at least one of its authenticated metadata
// entries matches the configured pattern. A glob must match the whole path;
// a regex matches anywhere in it.
type Rule struct {
	raw             map[string]any
	matchFn         func(string) bool
	requireComplete bool
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
		raw:             rules.CopyParams(params),
		requireComplete: cfg.RequireComplete,
	}

	switch cfg.Type {
	case matchAny:
		r.matchFn = func(string) bool { return true }
	case matchGlob:
		pattern := cfg.Pattern
		if _, err := path.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("path-match: bad glob pattern %q: %w", pattern, err)
		}
		match := func(p string) bool {
			ok, _ := path.Match(pattern, p)
			return ok
		}
		r.matchFn = invertIf(cfg.Invert, match)
	case matchRegex:
		re, err := regexp.Compile(cfg.Pattern)
		if err != nil {
			return nil, fmt.Errorf("path-match: bad regex pattern %q: %w", cfg.Pattern, err)
		}
		r.matchFn = invertIf(cfg.Invert, re.MatchString)
	}
	return r, nil
}

func invertIf(invert bool, fn func(string) bool) func(string) bool {
	if !invert {
		return fn
	}
	return func(p string) bool { return !fn(p) }
}

// Register registers the evaluator in a registry.
func Register(reg *rules.Registry) error {
	return reg.Register(RuleName, New)
}

// Name returns the rule name.
func (r *Rule) Name() string { return RuleName }

// Decide approves when any metadata entry matches.
func (r *Rule) Decide(_ context.Context, req *models.ApprovalRequest) (rules.Verdict, error) {
	for _, m := range req.AuthMeta {
		if r.requireComplete && !m.Complete {
			continue
		}
		if r.matchFn(m.Meta) {
			return rules.VerdictApprove, nil
		}
	}
	return rules.VerdictDeny, nil
}

// Params returns the configuration this rule was built from.
func (r *Rule) Params() map[string]any {
	return rules.CopyParams(r.raw)
}
