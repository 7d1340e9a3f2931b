package rules

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
)

// IDAssigner injects a stable, content-derived rule_id into every rule
// configuration entry that lacks one, so a saved policy is reproducible and
// individual rules stay addressable by id across edits.
//
// Each entry that carries no rule_id is canonicalized (sorted keys, compact
// separators) and digested; the hex digest becomes the id, which makes the id
// relocatable: it survives the entry being moved or re-indented. When the same
// digest has already been assigned earlier in the same load, the current
// global sequence number is appended to disambiguate. A disambiguated id is
// therefore only stable for a fixed file layout: inserting or reordering
// unrelated entries between reloads can change it even though its own content
// did not. That divergence is deliberate, matching the long-observed behavior
// of saved policies in the field.
type IDAssigner struct {
	seen map[string]int
	seq  int
}

// NewIDAssigner creates an assigner for one policy load. A fresh assigner
// must be used per load so sequence numbers stay deterministic.
func NewIDAssigner() *IDAssigner {
	return &IDAssigner{seen: make(map[string]int)}
}

// Assign injects a rule_id into the entry if it has none and returns the
// entry's id. Entries that already carry a rule_id are recorded but never
// modified, which is what makes a save-then-reload idempotent.
func (a *IDAssigner) Assign(entry RuleConfig) (string, error) {
	a.seq++

	if raw, ok := entry["rule_id"]; ok && raw != nil {
		id, ok := raw.(string)
		if !ok {
			return "", fmt.Errorf("rule_id must be a string, got %T", raw)
		}
		if id != "" {
			a.seen[id]++
			return id, nil
		}
	}

	data, err := canonicalJSON(map[string]any(entry))
	if err != nil {
		return "", fmt.Errorf("canonicalize rule entry: %w", err)
	}
	sum := md5.Sum(data)
	id := hex.EncodeToString(sum[:])
	if _, dup := a.seen[id]; dup {
		id = id + "." + strconv.Itoa(a.seq)
	}
	entry["rule_id"] = id
	a.seen[id]++
	return id, nil
}

// canonicalJSON encodes a value deterministically: JSON with sorted object
// keys, compact separators, and no HTML escaping.
func canonicalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
