// internal/sweep/service_test.go
package sweep

import (
	"context"
	"testing"
	"time"

	"custom-pricing-service/internal/common/config"
	"custom-pricing-service/internal/common/errors"
	"custom-pricing-service/internal/common/logger"
	"custom-pricing-service/internal/eventlog"
	"custom-pricing-service/internal/shopify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Fake Admin API
// ==========================

type fakeAdmin struct {
	variants  []shopify.Variant
	listErr   error
	deleteErr map[string]error
	deleted   []string
}

func (f *fakeAdmin) ListVariants(ctx context.Context, productGID string, limit int) ([]shopify.Variant, error) {
	return f.variants, nil
}

func (f *fakeAdmin) ListTemporaryVariants(ctx context.Context, limit int) ([]shopify.Variant, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	remaining := make([]shopify.Variant, 0, len(f.variants))
	for _, v := range f.variants {
		if !f.isDeleted(v.GID) {
			remaining = append(remaining, v)
		}
	}
	return remaining, nil
}

func (f *fakeAdmin) GetProductOptions(ctx context.Context, productGID string) ([]shopify.ProductOption, error) {
	return nil, nil
}

func (f *fakeAdmin) CreateVariant(ctx context.Context, productGID string, input shopify.VariantInput) (*shopify.Variant, error) {
	return nil, nil
}

func (f *fakeAdmin) DeleteVariants(ctx context.Context, productGID string, variantGIDs []string) error {
	for _, gid := range variantGIDs {
		if err, ok := f.deleteErr[gid]; ok {
			return err
		}
		f.deleted = append(f.deleted, gid)
	}
	return nil
}

func (f *fakeAdmin) isDeleted(gid string) bool {
	for _, d := range f.deleted {
		if d == gid {
			return true
		}
	}
	return false
}

// ==========================
// Test Helpers
// ==========================

var sweepNow = time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)

func tempVariant(gid string, createdAt, deleteAt time.Time) shopify.Variant {
	return shopify.Variant{
		GID:        gid,
		ProductGID: "gid://shopify/Product/1",
		Metafields: map[string]string{
			shopify.KeyTemporary:  "true",
			shopify.KeyCreatedAt:  createdAt.Format(time.RFC3339),
			shopify.KeyDeleteAt:   deleteAt.Format(time.RFC3339),
			shopify.KeyDimensions: "100cm × 80cm - Wood",
		},
	}
}

func newTestService(t *testing.T, admin shopify.AdminAPI) (*Service, *eventlog.Log) {
	t.Helper()
	events := eventlog.New(config.EventLogConfig{Capacity: 100, AlarmThreshold: 5, AlarmWindow: 10 * time.Minute})
	svc := NewService(NewConfig(config.LifecycleConfig{}), admin, events, logger.NewTestLogger(t))
	svc.now = func() time.Time { return sweepNow }
	return svc, events
}

// ==========================
// Sweep Tests
// ==========================

func TestService_Sweep(t *testing.T) {
	noMetadata := shopify.Variant{
		GID:        "gid://shopify/ProductVariant/4",
		ProductGID: "gid://shopify/Product/1",
		Metafields: map[string]string{shopify.KeyTemporary: "true"},
	}

	admin := &fakeAdmin{
		variants: []shopify.Variant{
			// delete_at already passed
			tempVariant("gid://shopify/ProductVariant/1", sweepNow.Add(-3*time.Hour), sweepNow.Add(-time.Hour)),
			// delete_at in the future but created 30h ago
			tempVariant("gid://shopify/ProductVariant/2", sweepNow.Add(-30*time.Hour), sweepNow.Add(time.Hour)),
			// fresh variant, nothing elapsed
			tempVariant("gid://shopify/ProductVariant/3", sweepNow.Add(-time.Hour), sweepNow.Add(time.Hour)),
			noMetadata,
		},
	}
	svc, events := newTestService(t, admin)

	summary, err := svc.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.DeletedCount)
	assert.Equal(t, 2, summary.SkippedCount)
	assert.Equal(t, 4, summary.TotalFound)
	assert.Empty(t, summary.Errors)
	assert.Equal(t, sweepNow, summary.Timestamp)

	assert.ElementsMatch(t, []string{
		"gid://shopify/ProductVariant/1",
		"gid://shopify/ProductVariant/2",
	}, admin.deleted)

	entries := events.Recent(100)
	assert.Equal(t, "cleanup_finished", entries[len(entries)-1].Action)
}

func TestService_Sweep_Idempotent(t *testing.T) {
	admin := &fakeAdmin{
		variants: []shopify.Variant{
			tempVariant("gid://shopify/ProductVariant/1", sweepNow.Add(-3*time.Hour), sweepNow.Add(-time.Hour)),
		},
	}
	svc, _ := newTestService(t, admin)

	first, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.DeletedCount)

	second, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.DeletedCount)
	assert.Equal(t, 0, second.TotalFound)
}

func TestService_Sweep_ItemFailureContinues(t *testing.T) {
	admin := &fakeAdmin{
		variants: []shopify.Variant{
			tempVariant("gid://shopify/ProductVariant/1", sweepNow.Add(-3*time.Hour), sweepNow.Add(-time.Hour)),
			tempVariant("gid://shopify/ProductVariant/2", sweepNow.Add(-3*time.Hour), sweepNow.Add(-time.Hour)),
		},
		deleteErr: map[string]error{
			"gid://shopify/ProductVariant/1": errors.NewAdminStatusError("deleteVariants", 500, "boom"),
		},
	}
	svc, _ := newTestService(t, admin)

	summary, err := svc.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.DeletedCount)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, "gid://shopify/ProductVariant/1", summary.Errors[0].VariantGID)
	assert.Equal(t, []string{"gid://shopify/ProductVariant/2"}, admin.deleted)
}

func TestService_Sweep_ListFailureAborts(t *testing.T) {
	admin := &fakeAdmin{listErr: errors.NewAdminTransportError("listTemporaryVariants", assert.AnError)}
	svc, events := newTestService(t, admin)

	_, err := svc.Sweep(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeSweepListFailed))

	entries := events.Recent(100)
	assert.Equal(t, "cleanup_list_failed", entries[len(entries)-1].Action)
}

// ==========================
// Predicate Tests
// ==========================

func TestPredicates(t *testing.T) {
	tests := []struct {
		name        string
		variant     shopify.Variant
		wantExpired bool
		wantReason  string
	}{
		{
			name:        "delete_at exactly now is expired",
			variant:     tempVariant("gid://shopify/ProductVariant/1", sweepNow.Add(-time.Hour), sweepNow),
			wantExpired: true,
			wantReason:  "delete_at elapsed",
		},
		{
			name:        "created over 24h ago is expired",
			variant:     tempVariant("gid://shopify/ProductVariant/2", sweepNow.Add(-25*time.Hour), sweepNow.Add(time.Hour)),
			wantExpired: true,
			wantReason:  "max age exceeded",
		},
		{
			name:        "created exactly 24h ago is kept",
			variant:     tempVariant("gid://shopify/ProductVariant/3", sweepNow.Add(-24*time.Hour), sweepNow.Add(time.Hour)),
			wantExpired: false,
		},
		{
			name: "malformed timestamps are kept",
			variant: shopify.Variant{
				GID: "gid://shopify/ProductVariant/4",
				Metafields: map[string]string{
					shopify.KeyCreatedAt: "yesterday",
					shopify.KeyDeleteAt:  "not-a-time",
				},
			},
			wantExpired: false,
		},
	}

	svc, _ := newTestService(t, &fakeAdmin{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expired, reason := svc.expired(sweepNow, tt.variant)
			assert.Equal(t, tt.wantExpired, expired)
			if tt.wantExpired {
				assert.Equal(t, tt.wantReason, reason)
			}
		})
	}
}
