// internal/sweep/service.go
package sweep

import (
	"context"
	"time"

	"custom-pricing-service/internal/common/errors"
	"custom-pricing-service/internal/common/logger"
	"custom-pricing-service/internal/common/metrics"
	"custom-pricing-service/internal/eventlog"
	"custom-pricing-service/internal/shopify"
)

// Predicate decides whether a temporary variant is due for deletion and
// names the reason when it is.
type Predicate func(now time.Time, v shopify.Variant) (bool, string)

// DeleteAtElapsed expires variants whose delete_at metafield has passed.
func DeleteAtElapsed() Predicate {
	return func(now time.Time, v shopify.Variant) (bool, string) {
		deleteAt, err := time.Parse(time.RFC3339, v.Metafields[shopify.KeyDeleteAt])
		if err != nil {
			return false, ""
		}
		if !deleteAt.After(now) {
			return true, "delete_at elapsed"
		}
		return false, ""
	}
}

// OlderThan expires variants whose created_at metafield is older than
// maxAge, regardless of their delete_at. It catches variants whose
// scheduled deletion never ran.
func OlderThan(maxAge time.Duration) Predicate {
	return func(now time.Time, v shopify.Variant) (bool, string) {
		createdAt, err := time.Parse(time.RFC3339, v.Metafields[shopify.KeyCreatedAt])
		if err != nil {
			return false, ""
		}
		if now.Sub(createdAt) > maxAge {
			return true, "max age exceeded"
		}
		return false, ""
	}
}

// Service deletes expired temporary variants. A variant is deleted when
// any predicate matches; variants without parseable lifecycle metadata
// are always skipped.
type Service struct {
	config     Config
	admin      shopify.AdminAPI
	predicates []Predicate
	events     *eventlog.Log
	logger     logger.Logger
	now        func() time.Time
}

func NewService(cfg Config, admin shopify.AdminAPI, events *eventlog.Log, log logger.Logger) *Service {
	return &Service{
		config: cfg,
		admin:  admin,
		predicates: []Predicate{
			DeleteAtElapsed(),
			OlderThan(cfg.MaxVariantAge),
		},
		events: events,
		logger: log,
		now:    time.Now,
	}
}

// Sweep runs one cleanup pass over all temporary variants. A listing
// failure aborts the pass; per-variant delete failures are collected
// and the pass continues.
func (s *Service) Sweep(ctx context.Context) (*Summary, error) {
	start := time.Now()
	defer func() {
		metrics.SweepDuration.Observe(time.Since(start).Seconds())
	}()

	now := s.now()

	s.events.Record(eventlog.LevelInfo, "cleanup_started", nil)

	variants, err := s.admin.ListTemporaryVariants(ctx, s.config.ListLimit)
	if err != nil {
		listErr := errors.NewSweepListError(err)
		s.events.Record(eventlog.LevelError, "cleanup_list_failed", map[string]interface{}{
			"error": err.Error(),
		})
		s.events.CheckErrorAlarm(ctx)
		return nil, listErr
	}

	summary := &Summary{
		TotalFound: len(variants),
		Errors:     []ItemError{},
		Timestamp:  now.UTC(),
	}

	for _, v := range variants {
		expired, reason := s.expired(now, v)
		if !expired {
			summary.SkippedCount++
			metrics.SweepSkipped.Inc()
			continue
		}

		if err := s.admin.DeleteVariants(ctx, v.ProductGID, []string{v.GID}); err != nil {
			summary.Errors = append(summary.Errors, ItemError{
				VariantGID: v.GID,
				Message:    err.Error(),
			})
			metrics.SweepErrors.Inc()
			s.events.Record(eventlog.LevelError, "variant_delete_failed", map[string]interface{}{
				"variantGid": v.GID,
				"productGid": v.ProductGID,
				"error":      err.Error(),
			})
			continue
		}

		summary.DeletedCount++
		metrics.SweepDeleted.Inc()
		s.events.Record(eventlog.LevelInfo, "variant_deleted", map[string]interface{}{
			"variantGid": v.GID,
			"productGid": v.ProductGID,
			"reason":     reason,
		})
	}

	s.events.Record(eventlog.LevelInfo, "cleanup_finished", map[string]interface{}{
		"deletedCount": summary.DeletedCount,
		"skippedCount": summary.SkippedCount,
		"totalFound":   summary.TotalFound,
		"errorCount":   len(summary.Errors),
	})

	if len(summary.Errors) > 0 {
		s.events.CheckErrorAlarm(ctx)
	}

	return summary, nil
}

func (s *Service) expired(now time.Time, v shopify.Variant) (bool, string) {
	for _, p := range s.predicates {
		if expired, reason := p(now, v); expired {
			return true, reason
		}
	}
	return false, ""
}
