package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePosition(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"C", "C", true},
		{" g ", "G", true},
		{"Center", "C", true},
		{"forward", "F", true},
		{"GUARD", "G", true},
		{"C-F", "F-C", true},
		{"F-G", "G-F", true},
		{"Forward-Center", "F-C", true},
		{"Center-Forward", "F-C", true},
		{"Guard-Forward", "G-F", true},
		{"Forward-Guard", "G-F", true},
		{"F-C", "F-C", true},
		{"G-F", "G-F", true},
		{"", "", false},
		{"PG", "", false},
		{"Point Guard", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := NormalizePosition(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizePosition_Idempotent(t *testing.T) {
	for _, p := range []string{"C", "F", "G", "F-C", "G-F", "C-F", "F-G", "center"} {
		once, ok := NormalizePosition(p)
		assert.True(t, ok)
		twice, ok := NormalizePosition(once)
		assert.True(t, ok)
		assert.Equal(t, once, twice, "normalizing %q twice should be stable", p)
	}
}

func TestNullPosition(t *testing.T) {
	assert.Equal(t, "G-F", NullPosition("f-g").String)
	assert.True(t, NullPosition("f-g").Valid)
	assert.False(t, NullPosition("unknown").Valid)
}
