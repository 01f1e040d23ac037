package pane

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_String(t *testing.T) {
	assert.Equal(t, "main", Main.String())
	assert.Equal(t, "left", Left.String())
	assert.Equal(t, "right", Right.String())
	assert.Equal(t, "unknown", Kind(9).String())
}

func TestKind_IsFrozen(t *testing.T) {
	assert.False(t, Main.IsFrozen())
	assert.True(t, Left.IsFrozen())
	assert.True(t, Right.IsFrozen())
}

func TestParseAlign(t *testing.T) {
	tests := []struct {
		in   string
		want Align
	}{
		{"smart", AlignSmart},
		{"center", AlignCenter},
		{"start", AlignStart},
		{"end", AlignEnd},
		{"auto", AlignAuto},
		{"", AlignAuto},
		{"bogus", AlignAuto},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAlign(tt.in))
		})
	}
}
