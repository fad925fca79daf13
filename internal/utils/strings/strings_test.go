package strings

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapString(t *testing.T) {
	original := "1234567890"
	maxLength := 7

	strs := strings.Split(WrapString(original, maxLength), "\n")
	require.Len(t, strs[0], 7)
	require.Len(t, strs[1], 3)
}

func TestWrapLines(t *testing.T) {
	assert.Equal(t, []string{"Resistor", "0402 10k"}, WrapLines("Resistor 0402 10k", 8))
	assert.Equal(t, []string{"部品番", "号"}, WrapLines("部品番号", 6))
	assert.Equal(t, []string{"a", "b"}, WrapLines("a\nb", 0))
}
