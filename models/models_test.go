package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequestKind(t *testing.T) {
	for _, k := range RequestKinds() {
		parsed, err := ParseRequestKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	_, err := ParseRequestKind("format_disk")
	assert.Error(t, err)

	_, err = ParseRequestKind("")
	assert.Error(t, err)
}

func TestRequestKindsIsACopy(t *testing.T) {
	kinds := RequestKinds()
	kinds[0] = RequestKind("mutated")
	assert.Equal(t, RequestDecrypt, RequestKinds()[0])
}
