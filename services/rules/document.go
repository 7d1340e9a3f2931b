package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RuleConfig is one rule configuration entry from a policy document: a
// mapping with a required "rule" key naming the evaluator, an optional
// "rule_id", and arbitrary evaluator-specific parameters. Entries are
// mutated in place only to inject a missing rule_id.
type RuleConfig map[string]any

// KindPolicy is the tree definition for one request kind: an ordered
// sequence of rule groups, each an ordered sequence of entries. Order is
// evaluation order and is significant.
type KindPolicy struct {
	Kind   string
	Groups [][]RuleConfig
}

// PolicyDocument is the declarative policy configuration: a mapping from
// request kind name to tree definition. Kind order follows the document so
// identifier assignment stays deterministic for a fixed file layout, which
// is why this is not a plain Go map.
type PolicyDocument struct {
	Kinds []KindPolicy
}

// UnmarshalYAML decodes the top-level policy mapping, preserving key order.
func (d *PolicyDocument) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("policy document must be a mapping, got %s at line %d", nodeKind(node), node.Line)
	}
	d.Kinds = d.Kinds[:0]
	for i := 0; i < len(node.Content)-1; i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]

		var kind string
		if err := keyNode.Decode(&kind); err != nil {
			return fmt.Errorf("policy document key at line %d: %w", keyNode.Line, err)
		}
		var groups [][]RuleConfig
		if err := valNode.Decode(&groups); err != nil {
			return fmt.Errorf("policy for %q: %w", kind, err)
		}
		d.Kinds = append(d.Kinds, KindPolicy{Kind: kind, Groups: groups})
	}
	return nil
}

// MarshalYAML encodes the document back to a mapping in kind order.
func (d PolicyDocument) MarshalYAML() (any, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, kp := range d.Kinds {
		keyNode := &yaml.Node{}
		if err := keyNode.Encode(kp.Kind); err != nil {
			return nil, err
		}
		valNode := &yaml.Node{}
		if err := valNode.Encode(kp.Groups); err != nil {
			return nil, err
		}
		root.Content = append(root.Content, keyNode, valNode)
	}
	return root, nil
}

// MarshalJSON encodes the document as a JSON object in kind order, for the
// admin API.
func (d PolicyDocument) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kp := range d.Kinds {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(kp.Kind)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(kp.Groups)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParsePolicyDocument parses YAML policy configuration data.
func ParsePolicyDocument(data []byte) (*PolicyDocument, error) {
	var doc PolicyDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse policy document: %w", err)
	}
	return &doc, nil
}

// LoadPolicyFile reads and parses a YAML policy file.
func LoadPolicyFile(path string) (*PolicyDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	return ParsePolicyDocument(data)
}

// Encode renders the document as YAML.
func (d PolicyDocument) Encode() ([]byte, error) {
	data, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode policy document: %w", err)
	}
	return data, nil
}

func nodeKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
