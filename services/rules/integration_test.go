package rules_test

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyward/keyward/models"
	"github.com/keyward/keyward/services/rules"
	"github.com/keyward/keyward/services/rules/accesscount"
	"github.com/keyward/keyward/services/rules/devicegrant"
	"github.com/keyward/keyward/services/rules/pathmatch"
)

func builtinRegistry(t *testing.T) *rules.Registry {
	t.Helper()
	reg := rules.NewRegistry()
	require.NoError(t, devicegrant.Register(reg))
	require.NoError(t, pathmatch.Register(reg))
	require.NoError(t, accesscount.Register(reg))
	return reg
}

func request(kind models.RequestKind, device string, meta string) *models.ApprovalRequest {
	return &models.ApprovalRequest{
		Kind:     kind,
		DeviceID: []byte(device),
		Profile: models.ProfileInfo{
			ProfileID:    []byte("pid"),
			ProfileWords: []string{"w1", "w2", "w3", "w4", "w5", "w6", "w7", "w8"},
		},
		AuthMeta: []models.MetaInfo{{Meta: meta, Complete: true}},
	}
}

func TestBuiltins_DeviceAndPathPolicy(t *testing.T) {
	// Either a known device presenting the right path, or the fallback
	// device, may decrypt. Search has its own path requirement.
	docYAML := `
decrypt:
  - - rule: device-grant
      device_ids: ["` + hex.EncodeToString([]byte("okwmeta")) + `"]
    - rule: path-match
      type: glob
      pattern: "/meta"
  - - rule: device-grant
      device_ids: ["` + hex.EncodeToString([]byte("okany")) + `"]
search:
  - - rule: device-grant
      device_ids: ["` + hex.EncodeToString([]byte("okwmeta")) + `"]
    - rule: path-match
      type: glob
      pattern: "/search"
  - - rule: device-grant
      device_ids: ["` + hex.EncodeToString([]byte("okany")) + `"]
`
	doc, err := rules.ParsePolicyDocument([]byte(docYAML))
	require.NoError(t, err)
	engine, err := rules.NewEngine(doc, builtinRegistry(t), nil)
	require.NoError(t, err)

	ctx := context.Background()
	assert.Equal(t, rules.VerdictApprove, engine.Decide(ctx, request(models.RequestDecrypt, "okany", "/x")))
	assert.Equal(t, rules.VerdictApprove, engine.Decide(ctx, request(models.RequestDecrypt, "okwmeta", "/meta")))
	assert.Equal(t, rules.VerdictApprove, engine.Decide(ctx, request(models.RequestSearch, "okwmeta", "/search")))
	assert.Equal(t, rules.VerdictDeny, engine.Decide(ctx, request(models.RequestDecrypt, "okwmeta", "/search")))
	assert.Equal(t, rules.VerdictDeny, engine.Decide(ctx, request(models.RequestDecrypt, "notok", "/meta")))
	assert.Equal(t, rules.VerdictIndeterminate,
		engine.Decide(ctx, request(models.RequestCreateProfile, "okany", "/x")))
}

func TestBuiltins_ProfileQuotaPolicy(t *testing.T) {
	docYAML := `
decrypt:
  - - rule: access-count
      limit: 2
      kinds: [decrypt]
`
	doc, err := rules.ParsePolicyDocument([]byte(docYAML))
	require.NoError(t, err)
	engine, err := rules.NewEngine(doc, builtinRegistry(t), nil)
	require.NoError(t, err)

	ctx := context.Background()
	req := request(models.RequestDecrypt, "did", "/meta")
	profile := req.Profile

	assert.True(t, engine.CheckQuota(profile))
	assert.Equal(t, rules.VerdictApprove, engine.Decide(ctx, req))
	assert.Equal(t, rules.VerdictApprove, engine.Decide(ctx, req))
	assert.False(t, engine.CheckQuota(profile))
	assert.Equal(t, rules.VerdictDeny, engine.Decide(ctx, req))

	engine.ClearQuota(profile)
	assert.Equal(t, rules.VerdictApprove, engine.Decide(ctx, req))
}

func TestBuiltins_SerializedPolicyIsStable(t *testing.T) {
	docYAML := `
decrypt:
  - - rule: path-match
      type: regex
      pattern: "^/vault/"
    - rule: access-count
      limit: 5
`
	doc, err := rules.ParsePolicyDocument([]byte(docYAML))
	require.NoError(t, err)
	engine, err := rules.NewEngine(doc, builtinRegistry(t), nil)
	require.NoError(t, err)

	out := engine.Serialize()
	rebuilt, err := rules.NewEngine(out, builtinRegistry(t), nil)
	require.NoError(t, err)
	assert.Equal(t, out, rebuilt.Serialize())
}
