package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{name: "non-positive limit", input: "golang developer", limit: 0, expect: ""},
		{name: "shorter than limit", input: "golang", limit: 10, expect: "golang"},
		{name: "truncates with ellipsis", input: "golang developer", limit: 6, expect: "golang..."},
		{name: "trims whitespace first", input: "  senior  ", limit: 6, expect: "senior"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expect, Truncate(tt.input, tt.limit))
		})
	}
}

func TestNew(t *testing.T) {
	l, err := New(true, true)
	require.NoError(t, err)
	assert.NotNil(t, l)

	assert.NotNil(t, OrNop(nil))
	assert.Same(t, l, OrNop(l))
}
