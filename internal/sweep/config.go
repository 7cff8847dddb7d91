// internal/sweep/config.go
package sweep

import (
	"time"

	"custom-pricing-service/internal/common/config"
)

type Config struct {
	ListLimit     int
	MaxVariantAge time.Duration
}

func NewConfig(cfg config.LifecycleConfig) Config {
	out := Config{
		ListLimit:     cfg.SweepListLimit,
		MaxVariantAge: cfg.MaxVariantAge,
	}
	if out.ListLimit <= 0 {
		out.ListLimit = 250
	}
	if out.MaxVariantAge <= 0 {
		out.MaxVariantAge = 24 * time.Hour
	}
	return out
}
