package pathmatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyward/keyward/models"
	"github.com/keyward/keyward/services/rules"
)

func decide(t *testing.T, params map[string]any, meta ...models.MetaInfo) rules.Verdict {
	t.Helper()
	eval, err := New(params)
	require.NoError(t, err)
	v, err := eval.Decide(context.Background(), &models.ApprovalRequest{
		Kind:     models.RequestDecrypt,
		AuthMeta: meta,
	})
	require.NoError(t, err)
	return v
}

func complete(meta string) models.MetaInfo { return models.MetaInfo{Meta: meta, Complete: true} }
func partial(meta string) models.MetaInfo  { return models.MetaInfo{Meta: meta, Complete: false} }

func TestGlobMatch(t *testing.T) {
	params := map[string]any{"type": "glob", "pattern": "/export/*.docx"}

	assert.Equal(t, rules.VerdictApprove, decide(t, params, complete("/export/q3.docx")))
	assert.Equal(t, rules.VerdictDeny, decide(t, params, complete("/export/q3.xlsx")))
	assert.Equal(t, rules.VerdictDeny, decide(t, params, complete("/other/q3.docx")))
}

func TestRegexMatchesAnywhere(t *testing.T) {
	params := map[string]any{"type": "regex", "pattern": `\.docx$`}

	assert.Equal(t, rules.VerdictApprove, decide(t, params, complete("/export/deep/q3.docx")))
	assert.Equal(t, rules.VerdictDeny, decide(t, params, complete("/export/q3.docx.bak")))
}

func TestAnyMatchesEverything(t *testing.T) {
	params := map[string]any{"type": "any"}
	assert.Equal(t, rules.VerdictApprove, decide(t, params, complete("/anything")))

	// Invert is ignored for "any", matching the historical behavior.
	params = map[string]any{"type": "any", "invert": true}
	assert.Equal(t, rules.VerdictApprove, decide(t, params, complete("/anything")))
}

func TestInvert(t *testing.T) {
	params := map[string]any{"type": "glob", "pattern": "/export/*", "invert": true}

	assert.Equal(t, rules.VerdictApprove, decide(t, params, complete("/home/doc")))
	assert.Equal(t, rules.VerdictDeny, decide(t, params, complete("/export/doc")))
}

func TestRequireComplete(t *testing.T) {
	params := map[string]any{"type": "glob", "pattern": "/meta", "require_complete": true}

	assert.Equal(t, rules.VerdictDeny, decide(t, params, partial("/meta")),
		"partial metadata must not satisfy a completeness-requiring rule")
	assert.Equal(t, rules.VerdictApprove, decide(t, params, partial("/other"), complete("/meta")))
}

func TestNoMetadataDenies(t *testing.T) {
	assert.Equal(t, rules.VerdictDeny, decide(t, map[string]any{"type": "glob", "pattern": "/meta"}))
}

func TestConstructionErrors(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
	}{
		{"missing type", map[string]any{"pattern": "/x"}},
		{"bad type", map[string]any{"type": "fuzzy", "pattern": "/x"}},
		{"missing pattern", map[string]any{"type": "glob"}},
		{"bad glob", map[string]any{"type": "glob", "pattern": "[unclosed"}},
		{"bad regex", map[string]any{"type": "regex", "pattern": "(unclosed"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.params)
			assert.Error(t, err)
		})
	}
}

func TestParamsRoundTrip(t *testing.T) {
	params := map[string]any{"type": "regex", "pattern": `^/vault/`, "invert": false}
	eval, err := New(params)
	require.NoError(t, err)
	assert.Equal(t, params, eval.Params())
	assert.Equal(t, RuleName, eval.Name())
}
