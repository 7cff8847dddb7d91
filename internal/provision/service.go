// internal/provision/service.go
package provision

import (
	"context"
	"fmt"
	"time"

	"custom-pricing-service/internal/common/database"
	"custom-pricing-service/internal/common/errors"
	"custom-pricing-service/internal/common/logger"
	"custom-pricing-service/internal/common/metrics"
	"custom-pricing-service/internal/eventlog"
	"custom-pricing-service/internal/shopify"
)

// Service provisions temporary product variants. A short-lived Redis
// reservation guards against two concurrent requests creating the same
// dimension signature twice; without Redis the service still works but
// loses that guard.
type Service struct {
	config Config
	admin  shopify.AdminAPI
	redis  *database.RedisClient
	events *eventlog.Log
	logger logger.Logger
	now    func() time.Time
}

func NewService(cfg Config, admin shopify.AdminAPI, redis *database.RedisClient, events *eventlog.Log, log logger.Logger) *Service {
	return &Service{
		config: cfg,
		admin:  admin,
		redis:  redis,
		events: events,
		logger: log,
		now:    time.Now,
	}
}

func reservationKey(productGID, signature string) string {
	return fmt.Sprintf("variant-reservation:%s:%s", productGID, signature)
}

// Provision returns an existing temporary variant matching the request's
// dimension signature, or creates a new one with lifecycle metadata.
func (s *Service) Provision(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	defer func() {
		metrics.ProvisionDuration.Observe(time.Since(start).Seconds())
	}()

	if req.ProductID == "" {
		return nil, errors.NewInvalidRequestError("productId is required")
	}

	productGID := shopify.NormalizeProductGID(req.ProductID)
	signature := Signature(req.Boy, req.En, req.MaterialLabel)

	s.events.Record(eventlog.LevelInfo, "create_variant_started", map[string]interface{}{
		"productId": productGID,
		"signature": signature,
	})

	release, err := s.reserve(ctx, productGID, signature)
	if err != nil {
		metrics.ProvisionTotal.WithLabelValues("conflict").Inc()
		return nil, err
	}
	defer release()

	variants, err := s.admin.ListVariants(ctx, productGID, s.config.ListLimit)
	if err != nil {
		s.recordFailure(ctx, "variant_list_failed", productGID, signature, err)
		return nil, err
	}

	if existing := findBySignature(variants, signature); existing != nil {
		s.events.Record(eventlog.LevelInfo, "variant_reused", map[string]interface{}{
			"productId": productGID,
			"signature": signature,
			"variantId": existing.LegacyID,
		})
		metrics.ProvisionTotal.WithLabelValues("reused").Inc()
		return s.resultFromVariant(existing, signature, true), nil
	}

	s.events.Record(eventlog.LevelInfo, "variant_reuse_not_found", map[string]interface{}{
		"productId": productGID,
		"signature": signature,
	})

	optionName, err := s.resolveOptionName(ctx, productGID)
	if err != nil {
		s.recordFailure(ctx, "variant_create_failed", productGID, signature, err)
		return nil, err
	}

	createdAt := s.now().UTC()
	deleteAt := createdAt.Add(s.config.RetentionWindow)

	input := shopify.VariantInput{
		Price:           req.CalculatedPrice,
		OptionValues:    []shopify.OptionValueInput{{OptionName: optionName, Name: signature}},
		InventoryPolicy: "CONTINUE",
		Metafields: []shopify.MetafieldInput{
			{Namespace: shopify.MetafieldNamespace, Key: shopify.KeyTemporary, Value: "true", Type: "boolean"},
			{Namespace: shopify.MetafieldNamespace, Key: shopify.KeyCreatedAt, Value: createdAt.Format(time.RFC3339), Type: "date_time"},
			{Namespace: shopify.MetafieldNamespace, Key: shopify.KeyDeleteAt, Value: deleteAt.Format(time.RFC3339), Type: "date_time"},
			{Namespace: shopify.MetafieldNamespace, Key: shopify.KeyDimensions, Value: signature, Type: "single_line_text_field"},
		},
	}

	created, err := s.admin.CreateVariant(ctx, productGID, input)
	if err != nil {
		s.recordFailure(ctx, "variant_create_failed", productGID, signature, err)
		return nil, err
	}

	s.events.Record(eventlog.LevelInfo, "variant_created", map[string]interface{}{
		"productId": productGID,
		"signature": signature,
		"variantId": created.LegacyID,
		"deleteAt":  deleteAt.Format(time.RFC3339),
	})
	metrics.ProvisionTotal.WithLabelValues("created").Inc()

	price := created.Price
	if price == "" {
		price = req.CalculatedPrice
	}

	return &Result{
		VariantID:  created.LegacyID,
		VariantGID: created.GID,
		Title:      signature,
		Price:      price,
		Reused:     false,
		CreatedAt:  &createdAt,
		DeleteAt:   &deleteAt,
	}, nil
}

// reserve takes the per-signature creation lock. Redis being down
// degrades to an unguarded create rather than failing the request.
func (s *Service) reserve(ctx context.Context, productGID, signature string) (func(), error) {
	if s.redis == nil {
		return func() {}, nil
	}

	key := reservationKey(productGID, signature)
	ok, err := s.redis.SetNX(ctx, key, "1", s.config.ReservationTTL)
	if err != nil {
		s.logger.Warn("variant reservation unavailable, proceeding without lock", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return func() {}, nil
	}
	if !ok {
		return nil, errors.NewReservationHeldError(productGID, signature)
	}

	return func() {
		if err := s.redis.Del(context.Background(), key); err != nil {
			s.logger.Warn("failed to release variant reservation", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}, nil
}

func (s *Service) resolveOptionName(ctx context.Context, productGID string) (string, error) {
	options, err := s.admin.GetProductOptions(ctx, productGID)
	if err != nil {
		return "", err
	}
	if len(options) == 0 || options[0].Name == "" {
		return s.config.DefaultOptionName, nil
	}
	return options[0].Name, nil
}

func (s *Service) recordFailure(ctx context.Context, action, productGID, signature string, err error) {
	s.events.Record(eventlog.LevelError, action, map[string]interface{}{
		"productId": productGID,
		"signature": signature,
		"error":     err.Error(),
	})
	metrics.ProvisionTotal.WithLabelValues("error").Inc()
	s.events.CheckErrorAlarm(ctx)
}

func (s *Service) resultFromVariant(v *shopify.Variant, signature string, reused bool) *Result {
	result := &Result{
		VariantID:  v.LegacyID,
		VariantGID: v.GID,
		Title:      signature,
		Price:      v.Price,
		Reused:     reused,
	}
	if ts, err := time.Parse(time.RFC3339, v.Metafields[shopify.KeyCreatedAt]); err == nil {
		result.CreatedAt = &ts
	}
	if ts, err := time.Parse(time.RFC3339, v.Metafields[shopify.KeyDeleteAt]); err == nil {
		result.DeleteAt = &ts
	}
	return result
}

func findBySignature(variants []shopify.Variant, signature string) *shopify.Variant {
	for i := range variants {
		v := &variants[i]
		if v.IsTemporary() && v.Metafields[shopify.KeyDimensions] == signature {
			return v
		}
	}
	return nil
}
