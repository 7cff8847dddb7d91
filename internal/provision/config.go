// internal/provision/config.go
package provision

import (
	"time"

	"custom-pricing-service/internal/common/config"
)

type Config struct {
	RetentionWindow   time.Duration
	ListLimit         int
	ReservationTTL    time.Duration
	DefaultOptionName string
}

func NewConfig(cfg config.LifecycleConfig) Config {
	out := Config{
		RetentionWindow:   cfg.RetentionWindow,
		ListLimit:         cfg.ProvisionListLimit,
		ReservationTTL:    cfg.ReservationTTL,
		DefaultOptionName: "Title",
	}
	if out.RetentionWindow <= 0 {
		out.RetentionWindow = 2 * time.Hour
	}
	if out.ListLimit <= 0 {
		out.ListLimit = 100
	}
	if out.ReservationTTL <= 0 {
		out.ReservationTTL = 15 * time.Second
	}
	return out
}
