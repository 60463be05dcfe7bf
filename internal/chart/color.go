package chart

import "fmt"

// palette fixes the colors of common categories so they stay recognizable
// across sessions and view toggles.
var palette = map[string]string{
	"Groceries":     "#10b981",
	"Dining":        "#f59e0b",
	"Transport":     "#3b82f6",
	"Rent":          "#ef4444",
	"Utilities":     "#8b5cf6",
	"Entertainment": "#ec4899",
	"Shopping":      "#06b6d4",
	"Health":        "#84cc16",
	"Income":        "#22c55e",
	"Uncategorized": "#6b7280",
}

// CategoryColor returns the plot color for a category. Known categories
// come from the fixed palette; anything else gets a hue derived from a
// rolling hash of the name, so the same label always renders the same.
func CategoryColor(name string) string {
	if c, ok := palette[name]; ok {
		return c
	}
	var h uint32
	for _, r := range name {
		h = h*31 + uint32(r)
	}
	return fmt.Sprintf("hsl(%d, 65%%, 50%%)", h%360)
}
