package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitJunction(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		upstream   string
		downstream string
	}{
		{"typical", "gcagttcatcATGACCGCG", "gcagttcatc", "ATGACCGCG"},
		{"absent", "", "", ""},
		{"all lower case", "gcagttcatc", "gcagttcatc", ""},
		{"all upper case", "ATGACCGCG", "", "ATGACCGCG"},
		{"single boundary", "aT", "a", "T"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up, down := SplitJunction(tt.input)
			assert.Equal(t, tt.upstream, up)
			assert.Equal(t, tt.downstream, down)
		})
	}
}

func TestOptionalField(t *testing.T) {
	fields := []string{"TMPRSS2--ERG", "0.8364", ".", ""}

	v, ok := OptionalField(fields, 0)
	assert.True(t, ok)
	assert.Equal(t, "TMPRSS2--ERG", v)

	v, ok = OptionalField(fields, 1)
	assert.True(t, ok)
	assert.Equal(t, "0.8364", v)

	// "." and "" are absent markers
	_, ok = OptionalField(fields, 2)
	assert.False(t, ok)
	_, ok = OptionalField(fields, 3)
	assert.False(t, ok)

	// Column not resolved in header, or row too short
	_, ok = OptionalField(fields, -1)
	assert.False(t, ok)
	_, ok = OptionalField(fields, 4)
	assert.False(t, ok)
}
