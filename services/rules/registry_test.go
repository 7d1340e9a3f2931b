package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubFactory(params map[string]any) (Evaluator, error) {
	return &stubRule{name: "stub", verdict: VerdictApprove}, nil
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register("stub", stubFactory))

	factory, err := reg.Lookup("stub")
	require.NoError(t, err)
	eval, err := factory(nil)
	require.NoError(t, err)
	assert.Equal(t, "stub", eval.Name())
}

func TestRegistry_LookupUnknownFailsClosed(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Lookup("geofence")
	assert.ErrorIs(t, err, ErrRuleNotFound)
}

func TestRegistry_DuplicateName(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("stub", stubFactory))
	assert.ErrorIs(t, reg.Register("stub", stubFactory), ErrRuleAlreadyRegistered)
}

func TestRegistry_InvalidRegistrations(t *testing.T) {
	reg := NewRegistry()
	assert.Error(t, reg.Register("", stubFactory))
	assert.Error(t, reg.Register("stub", nil))
}

func TestRegistry_NamesSorted(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("zeta", stubFactory))
	require.NoError(t, reg.Register("alpha", stubFactory))
	assert.Equal(t, []string{"alpha", "zeta"}, reg.Names())
}
