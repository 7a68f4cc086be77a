package fund

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStandardizeCategory(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"large cap", "Equity Scheme - Large Cap Fund", "Large Cap"},
		{"mid cap", "Equity Scheme - Mid Cap Fund", "Mid Cap"},
		{"small cap", "Equity Scheme - Small Cap Fund", "Small Cap"},
		{"multi cap", "Equity Scheme - Multi Cap Fund", "Multi Cap"},
		{"flexi cap", "Equity Scheme - Flexi Cap Fund", "Flexi Cap"},
		{"elss", "Equity Scheme - ELSS", "ELSS"},
		{"hybrid", "Hybrid Scheme - Aggressive Hybrid Fund", "Hybrid"},
		{"balanced maps to hybrid", "Balanced Advantage Fund", "Hybrid"},
		{"sectoral", "Equity Scheme - Sectoral / Thematic", "Sectoral"},
		{"thematic maps to sectoral", "Thematic - Consumption", "Sectoral"},
		{"value", "Equity Scheme - Value Fund", "Value/Contra"},
		{"contra", "Equity Scheme - Contra Fund", "Value/Contra"},
		{"focused", "Equity Scheme - Focused Fund", "Focused"},
		{"index", "Other Scheme - Index Funds", "Index"},
		{"gold", "Gold ETF FoF", "Gold"},
		{"no match passes through", "Debt Scheme - Liquid Fund", "Debt Scheme - Liquid Fund"},
		{"empty becomes unknown", "", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StandardizeCategory(tt.raw))
		})
	}
}

// Table order is observable behavior: a string containing keywords from two
// entries must resolve to the entry that appears first in the table.
func TestStandardizeCategoryTableOrder(t *testing.T) {
	// "Balanced" (Hybrid) appears before "Sectoral" in the table.
	assert.Equal(t, "Hybrid", StandardizeCategory("Balanced Sectoral Fund"))
	assert.Equal(t, "Hybrid", StandardizeCategory("Sectoral Balanced Fund"))

	// "Large Cap" wins over "Index" regardless of position in the string.
	assert.Equal(t, "Large Cap", StandardizeCategory("Index - Large Cap"))

	// Deterministic across invocations.
	for i := 0; i < 100; i++ {
		assert.Equal(t, "Hybrid", StandardizeCategory("Balanced Sectoral Fund"))
	}
}

func TestCleanFundHouse(t *testing.T) {
	assert.Equal(t, "Axis", CleanFundHouse("Axis Mutual Fund"))
	assert.Equal(t, "HDFC", CleanFundHouse("HDFC Mutual Fund"))
	assert.Equal(t, "Quant", CleanFundHouse("Quant"))
}
