package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryColorKnownPalette(t *testing.T) {
	assert.Equal(t, "#10b981", CategoryColor("Groceries"))
	assert.Equal(t, "#6b7280", CategoryColor("Uncategorized"))
}

func TestCategoryColorStableForUnknown(t *testing.T) {
	first := CategoryColor("Alpaca Supplies")
	second := CategoryColor("Alpaca Supplies")
	assert.Equal(t, first, second)
	assert.Contains(t, first, "hsl(")
}

func TestCategoryColorDistinguishesNames(t *testing.T) {
	// Not guaranteed for arbitrary pairs, but these should differ.
	assert.NotEqual(t, CategoryColor("Books"), CategoryColor("Garden"))
}
