package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_PrefixAndUniqueness(t *testing.T) {
	a, err := Generate("sse")
	require.NoError(t, err)
	b, err := Generate("sse")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(a, "sse-"))
	assert.Len(t, a, len("sse-")+21)
	assert.NotEqual(t, a, b)
}
