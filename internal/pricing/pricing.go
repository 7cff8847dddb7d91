// internal/pricing/pricing.go
package pricing

import (
	"fmt"
	"math"
	"sort"

	"custom-pricing-service/internal/common/config"
	"custom-pricing-service/internal/common/errors"
)

// Material holds the pricing inputs for one selectable material.
type Material struct {
	Key            string
	Label          string
	BasePricePerM2 float64
}

// Breakpoint maps an area ceiling to a multiplier. MaxArea <= 0 marks
// the unbounded tail row.
type Breakpoint struct {
	MaxArea     float64
	Coefficient float64
}

type Config struct {
	Currency    string
	Materials   map[string]Material
	Breakpoints []Breakpoint
}

// Quote is the result of a price computation.
type Quote struct {
	Price         float64 `json:"price"`
	Area          float64 `json:"area"`
	Coefficient   float64 `json:"coefficient"`
	BasePrice     float64 `json:"basePrice"`
	MaterialKey   string  `json:"materialKey"`
	MaterialLabel string  `json:"materialLabel"`
	Currency      string  `json:"currency"`
}

// DefaultConfig returns the built-in material and coefficient tables.
func DefaultConfig() Config {
	return Config{
		Currency: "USD",
		Materials: map[string]Material{
			"wood":    {Key: "wood", Label: "Wood", BasePricePerM2: 50},
			"metal":   {Key: "metal", Label: "Metal", BasePricePerM2: 120},
			"plastic": {Key: "plastic", Label: "Plastic", BasePricePerM2: 30},
		},
		Breakpoints: []Breakpoint{
			{MaxArea: 0.5, Coefficient: 1.0},
			{MaxArea: 0.75, Coefficient: 1.1},
			{MaxArea: 2.0, Coefficient: 1.2},
			{MaxArea: 0, Coefficient: 1.3},
		},
	}
}

// FromConfig builds a calculator config from the loaded service
// configuration, falling back to the defaults for empty tables.
func FromConfig(cfg config.PricingConfig) Config {
	out := DefaultConfig()
	if cfg.Currency != "" {
		out.Currency = cfg.Currency
	}
	if len(cfg.Materials) > 0 {
		out.Materials = make(map[string]Material, len(cfg.Materials))
		for key, m := range cfg.Materials {
			out.Materials[key] = Material{Key: key, Label: m.Label, BasePricePerM2: m.BasePricePerM2}
		}
	}
	if len(cfg.Coefficients) > 0 {
		out.Breakpoints = make([]Breakpoint, len(cfg.Coefficients))
		for i, b := range cfg.Coefficients {
			out.Breakpoints[i] = Breakpoint{MaxArea: b.MaxArea, Coefficient: b.Coefficient}
		}
	}
	return out
}

type Calculator struct {
	config Config
}

func NewCalculator(cfg Config) *Calculator {
	// Bounded rows sorted ascending, unbounded rows pushed to the tail.
	sorted := make([]Breakpoint, len(cfg.Breakpoints))
	copy(sorted, cfg.Breakpoints)
	sort.SliceStable(sorted, func(i, j int) bool {
		bi, bj := sorted[i], sorted[j]
		if bi.MaxArea <= 0 {
			return false
		}
		if bj.MaxArea <= 0 {
			return true
		}
		return bi.MaxArea < bj.MaxArea
	})
	cfg.Breakpoints = sorted
	return &Calculator{config: cfg}
}

func (c *Calculator) Currency() string {
	return c.config.Currency
}

// Materials returns the configured materials in key order.
func (c *Calculator) Materials() []Material {
	keys := make([]string, 0, len(c.config.Materials))
	for key := range c.config.Materials {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]Material, 0, len(keys))
	for _, key := range keys {
		out = append(out, c.config.Materials[key])
	}
	return out
}

// Compute prices a custom-dimension item. Dimensions are in
// centimeters; the area is converted to square meters before the
// coefficient lookup.
func (c *Calculator) Compute(heightCm, widthCm float64, materialKey string) (*Quote, error) {
	if !validDimension(heightCm) || !validDimension(widthCm) {
		return nil, errors.NewPriceUnavailableError(
			fmt.Sprintf("invalid dimensions: boy=%v, en=%v", heightCm, widthCm))
	}

	material, ok := c.config.Materials[materialKey]
	if !ok {
		return nil, errors.NewPriceUnavailableError("unknown material: " + materialKey)
	}

	area := heightCm * widthCm / 10000
	coefficient := c.coefficientFor(area)

	basePrice := area * material.BasePricePerM2
	price := math.Round(basePrice*coefficient*100) / 100

	return &Quote{
		Price:         price,
		Area:          area,
		Coefficient:   coefficient,
		BasePrice:     basePrice,
		MaterialKey:   material.Key,
		MaterialLabel: material.Label,
		Currency:      c.config.Currency,
	}, nil
}

func (c *Calculator) coefficientFor(area float64) float64 {
	for _, b := range c.config.Breakpoints {
		if b.MaxArea <= 0 || area <= b.MaxArea {
			return b.Coefficient
		}
	}
	return 1.0
}

func validDimension(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
