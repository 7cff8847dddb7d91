// internal/pricing/pricing_test.go
package pricing

import (
	"math"
	"testing"

	"custom-pricing-service/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helpers
// ==========================

func newDefaultCalculator() *Calculator {
	return NewCalculator(DefaultConfig())
}

// ==========================
// Compute Tests
// ==========================

func TestCalculator_Compute(t *testing.T) {
	calc := newDefaultCalculator()

	quote, err := calc.Compute(100, 80, "wood")
	require.NoError(t, err)

	assert.InDelta(t, 0.8, quote.Area, 1e-9)
	assert.InDelta(t, 1.2, quote.Coefficient, 1e-9)
	assert.InDelta(t, 48.00, quote.Price, 1e-9)
	assert.Equal(t, "Wood", quote.MaterialLabel)
	assert.Equal(t, "wood", quote.MaterialKey)
	assert.Equal(t, "USD", quote.Currency)
}

func TestCalculator_Compute_Materials(t *testing.T) {
	calc := newDefaultCalculator()

	tests := []struct {
		name      string
		material  string
		wantPrice float64
	}{
		{name: "wood", material: "wood", wantPrice: 48.00},
		{name: "metal", material: "metal", wantPrice: 115.20},
		{name: "plastic", material: "plastic", wantPrice: 28.80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := calc.Compute(100, 80, tt.material)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantPrice, quote.Price, 1e-9)
		})
	}
}

func TestCalculator_Compute_CoefficientBuckets(t *testing.T) {
	calc := newDefaultCalculator()

	tests := []struct {
		name     string
		boy, en  float64
		wantCoef float64
	}{
		{name: "small area uses base coefficient", boy: 50, en: 50, wantCoef: 1.0},
		{name: "boundary area stays in lower bucket", boy: 100, en: 50, wantCoef: 1.0},
		{name: "mid area", boy: 100, en: 70, wantCoef: 1.1},
		{name: "large area", boy: 100, en: 80, wantCoef: 1.2},
		{name: "area beyond last bounded row", boy: 200, en: 150, wantCoef: 1.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := calc.Compute(tt.boy, tt.en, "wood")
			require.NoError(t, err)
			assert.InDelta(t, tt.wantCoef, quote.Coefficient, 1e-9)
		})
	}
}

func TestCalculator_Compute_RoundsToCents(t *testing.T) {
	calc := NewCalculator(Config{
		Currency: "USD",
		Materials: map[string]Material{
			"wood": {Key: "wood", Label: "Wood", BasePricePerM2: 33.33},
		},
		Breakpoints: []Breakpoint{{MaxArea: 0, Coefficient: 1.0}},
	})

	quote, err := calc.Compute(100, 100, "wood")
	require.NoError(t, err)
	assert.Equal(t, 33.33, quote.Price)

	quote, err = calc.Compute(33, 10, "wood")
	require.NoError(t, err)
	assert.Equal(t, math.Round(quote.Price*100)/100, quote.Price)
}

func TestCalculator_Compute_Unavailable(t *testing.T) {
	calc := newDefaultCalculator()

	tests := []struct {
		name     string
		boy, en  float64
		material string
	}{
		{name: "zero height", boy: 0, en: 80, material: "wood"},
		{name: "negative width", boy: 100, en: -5, material: "wood"},
		{name: "NaN dimension", boy: math.NaN(), en: 80, material: "wood"},
		{name: "infinite dimension", boy: math.Inf(1), en: 80, material: "wood"},
		{name: "unknown material", boy: 100, en: 80, material: "granite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.Compute(tt.boy, tt.en, tt.material)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodePriceUnavailable))
		})
	}
}

func TestCalculator_Compute_Monotonic(t *testing.T) {
	calc := newDefaultCalculator()

	prev := 0.0
	for _, dims := range [][2]float64{{40, 40}, {70, 70}, {90, 90}, {120, 120}, {200, 200}} {
		quote, err := calc.Compute(dims[0], dims[1], "metal")
		require.NoError(t, err)
		assert.Greater(t, quote.Price, prev)
		prev = quote.Price
	}
}

// ==========================
// Configuration Tests
// ==========================

func TestCalculator_UnsortedBreakpoints(t *testing.T) {
	calc := NewCalculator(Config{
		Currency: "USD",
		Materials: map[string]Material{
			"wood": {Key: "wood", Label: "Wood", BasePricePerM2: 50},
		},
		Breakpoints: []Breakpoint{
			{MaxArea: 0, Coefficient: 1.3},
			{MaxArea: 2.0, Coefficient: 1.2},
			{MaxArea: 0.5, Coefficient: 1.0},
			{MaxArea: 0.75, Coefficient: 1.1},
		},
	})

	quote, err := calc.Compute(100, 80, "wood")
	require.NoError(t, err)
	assert.InDelta(t, 1.2, quote.Coefficient, 1e-9)
}

func TestCalculator_NoUnboundedRow(t *testing.T) {
	calc := NewCalculator(Config{
		Currency: "USD",
		Materials: map[string]Material{
			"wood": {Key: "wood", Label: "Wood", BasePricePerM2: 50},
		},
		Breakpoints: []Breakpoint{{MaxArea: 0.5, Coefficient: 1.0}},
	})

	quote, err := calc.Compute(300, 300, "wood")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, quote.Coefficient, 1e-9)
}

func TestCalculator_Materials_SortedByKey(t *testing.T) {
	calc := newDefaultCalculator()

	materials := calc.Materials()
	require.Len(t, materials, 3)
	assert.Equal(t, "metal", materials[0].Key)
	assert.Equal(t, "plastic", materials[1].Key)
	assert.Equal(t, "wood", materials[2].Key)
}
