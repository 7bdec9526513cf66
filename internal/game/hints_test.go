package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyHints_Upgrade(t *testing.T) {
	h := KeyHints{}

	assert.True(t, h.Upgrade('a', Absent))
	assert.True(t, h.Upgrade('a', Present))
	assert.True(t, h.Upgrade('a', Exact))
	assert.False(t, h.Upgrade('a', Present))
	assert.False(t, h.Upgrade('a', Absent))

	r, ok := h.Get('a')
	assert.True(t, ok)
	assert.Equal(t, Exact, r)

	_, ok = h.Get('b')
	assert.False(t, ok)
}

func TestKeyHints_MergeAndClone(t *testing.T) {
	h := KeyHints{}
	h.Merge("alloy", Evaluate("llama", "alloy"))

	assert.Equal(t, KeyHints{"a": Present, "l": Exact, "o": Absent, "y": Absent}, h)

	cp := h.Clone()
	cp.Upgrade('o', Exact)
	r, _ := h.Get('o')
	assert.Equal(t, Absent, r)
}
