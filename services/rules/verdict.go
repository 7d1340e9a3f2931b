package rules

// Verdict is the tri-state result of a rule evaluation. Indeterminate means
// "not applicable", not "denied": an evaluator returns it when the request
// kind is outside what it handles, and the engine returns it when no tree is
// configured for the request's kind at all, so the caller can distinguish an
// explicit denial from the absence of policy.
type Verdict int

const (
	// VerdictIndeterminate is the zero value on purpose: anything that fails
	// to produce a verdict reads as "no decision", never as approval.
	VerdictIndeterminate Verdict = iota
	VerdictDeny
	VerdictApprove
)

// String returns the wire name of the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictApprove:
		return "approve"
	case VerdictDeny:
		return "deny"
	default:
		return "indeterminate"
	}
}

// fromBool maps a combinator's boolean outcome to a verdict.
func fromBool(b bool) Verdict {
	if b {
		return VerdictApprove
	}
	return VerdictDeny
}
