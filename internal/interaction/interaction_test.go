package interaction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripURL(t *testing.T) {
	for _, i := range All {
		url := i.ToURL()
		got, ok := FromURL(url)
		require.True(t, ok)
		assert.Equal(t, i, got)
	}
}

func TestFromURLCaseInsensitive(t *testing.T) {
	got, ok := FromURL(strings.ToUpper(Transport.ToURL()))
	require.True(t, ok)
	assert.Equal(t, Transport, got)
}

func TestFromURLUnknownRejected(t *testing.T) {
	_, ok := FromURL("https://example.com/not-a-real-interaction")
	assert.False(t, ok)
}
