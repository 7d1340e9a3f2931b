package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeParams decodes an entry's evaluator-specific parameters into a typed
// struct via a JSON round-trip. Unknown keys are rejected so a misspelled
// parameter fails the whole policy load instead of being silently ignored.
// Validation of the decoded struct is the evaluator's job.
func DecodeParams(params map[string]any, out any) error {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode rule params: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode rule params: %w", err)
	}
	return nil
}

// CopyParams returns a shallow copy of an entry's parameter map, for
// evaluators that keep the raw map around to satisfy Params round-tripping.
func CopyParams(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}
