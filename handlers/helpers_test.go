package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/keyward/keyward/services/rules"
	"github.com/keyward/keyward/services/rules/accesscount"
	"github.com/keyward/keyward/services/rules/devicegrant"
	"github.com/keyward/keyward/services/rules/pathmatch"
)

func newTestRegistry(t *testing.T) *rules.Registry {
	t.Helper()
	reg := rules.NewRegistry()
	require.NoError(t, devicegrant.Register(reg))
	require.NoError(t, pathmatch.Register(reg))
	require.NoError(t, accesscount.Register(reg))
	return reg
}

func newTestHandle(t *testing.T, policy string) (*rules.Handle, *rules.Registry) {
	t.Helper()
	reg := newTestRegistry(t)
	doc, err := rules.ParsePolicyDocument([]byte(policy))
	require.NoError(t, err)
	engine, err := rules.NewEngine(doc, reg, zap.NewNop())
	require.NoError(t, err)
	return rules.NewHandle(engine), reg
}

const testPolicy = `
decrypt:
  - - rule: device-grant
      device_ids: ["abcd1234"]
    - rule: access-count
      limit: 2
search:
  - - rule: device-grant
      device_ids: ["abcd1234"]
`
