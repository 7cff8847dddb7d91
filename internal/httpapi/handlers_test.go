// internal/httpapi/handlers_test.go
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"custom-pricing-service/internal/cart"
	"custom-pricing-service/internal/common/config"
	"custom-pricing-service/internal/common/errors"
	"custom-pricing-service/internal/common/logger"
	"custom-pricing-service/internal/eventlog"
	"custom-pricing-service/internal/pricing"
	"custom-pricing-service/internal/provision"
	"custom-pricing-service/internal/sweep"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Fakes
// ==========================

type fakeProvisioner struct {
	result  *provision.Result
	err     error
	lastReq provision.Request
}

func (f *fakeProvisioner) Provision(ctx context.Context, req provision.Request) (*provision.Result, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeSweeper struct {
	summary *sweep.Summary
	err     error
	calls   int
}

func (f *fakeSweeper) Sweep(ctx context.Context) (*sweep.Summary, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.summary, nil
}

type fakeCart struct {
	addErr error
	getErr error
	state  *cart.Cart
	added  []cart.LineItem
}

func (f *fakeCart) AddItem(ctx context.Context, item cart.LineItem) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, item)
	return nil
}

func (f *fakeCart) GetCart(ctx context.Context) (*cart.Cart, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.state, nil
}

// ==========================
// Test Helpers
// ==========================

func provisionedResult() *provision.Result {
	createdAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	deleteAt := createdAt.Add(2 * time.Hour)
	return &provision.Result{
		VariantID:  "999",
		VariantGID: "gid://shopify/ProductVariant/999",
		Title:      "100cm × 80cm - Wood",
		Price:      "48.00",
		Reused:     false,
		CreatedAt:  &createdAt,
		DeleteAt:   &deleteAt,
	}
}

func newTestApp(t *testing.T, p Provisioner, s Sweeper, c CartGateway) (*App, http.Handler) {
	t.Helper()
	events := eventlog.New(config.EventLogConfig{Capacity: 100, AlarmThreshold: 5, AlarmWindow: 10 * time.Minute})
	calc := pricing.NewCalculator(pricing.DefaultConfig())
	app := NewApp(config.Config{}, p, s, c, calc, events, logger.NewTestLogger(t))
	return app, NewRouter(app)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func validPayload() map[string]interface{} {
	return map[string]interface{}{
		"productId":       "1234567890",
		"calculatedPrice": "48.00",
		"materyalLabel":   "Wood",
		"boy":             "100",
		"en":              "80",
	}
}

// ==========================
// Create Variant Tests
// ==========================

func TestCreateVariantHandler(t *testing.T) {
	p := &fakeProvisioner{result: provisionedResult()}
	_, handler := newTestApp(t, p, &fakeSweeper{}, &fakeCart{})

	rec := doJSON(t, handler, http.MethodPost, "/apps/create-variant", validPayload())
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, false, body["reused"])
	assert.Equal(t, "999", body["variantId"])
	assert.Equal(t, "gid://shopify/ProductVariant/999", body["variantGid"])
	assert.Equal(t, "100cm × 80cm - Wood", body["title"])
	assert.Equal(t, "48.00", body["price"])
	assert.NotEmpty(t, body["createdAt"])
	assert.NotEmpty(t, body["deleteAt"])

	assert.Equal(t, "1234567890", p.lastReq.ProductID)
	assert.Equal(t, "Wood", p.lastReq.MaterialLabel)
}

func TestCreateVariantHandler_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]interface{})
	}{
		{name: "missing productId", mutate: func(m map[string]interface{}) { delete(m, "productId") }},
		{name: "missing price", mutate: func(m map[string]interface{}) { delete(m, "calculatedPrice") }},
		{name: "non-numeric boy", mutate: func(m map[string]interface{}) { m["boy"] = "tall" }},
		{name: "empty material", mutate: func(m map[string]interface{}) { m["materyalLabel"] = "" }},
	}

	p := &fakeProvisioner{result: provisionedResult()}
	_, handler := newTestApp(t, p, &fakeSweeper{}, &fakeCart{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validPayload()
			tt.mutate(payload)

			rec := doJSON(t, handler, http.MethodPost, "/apps/create-variant", payload)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			body := decodeBody(t, rec)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["fieldErrors"])
		})
	}
}

func TestCreateVariantHandler_InvalidJSON(t *testing.T) {
	_, handler := newTestApp(t, &fakeProvisioner{}, &fakeSweeper{}, &fakeCart{})

	req := httptest.NewRequest(http.MethodPost, "/apps/create-variant", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateVariantHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantStage  string
	}{
		{
			name:       "reservation held maps to conflict",
			err:        errors.NewReservationHeldError("gid://shopify/Product/1", "100cm × 80cm - Wood"),
			wantStatus: http.StatusConflict,
			wantStage:  "variant",
		},
		{
			name:       "admin user errors map to bad request",
			err:        errors.NewAdminUserErrorsError("createVariant", []string{"Price must be positive"}),
			wantStatus: http.StatusBadRequest,
			wantStage:  "variant",
		},
		{
			name:       "transport failure maps to internal error",
			err:        errors.NewAdminTransportError("listVariants", assert.AnError),
			wantStatus: http.StatusInternalServerError,
			wantStage:  "variant",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvisioner{err: tt.err}
			_, handler := newTestApp(t, p, &fakeSweeper{}, &fakeCart{})

			rec := doJSON(t, handler, http.MethodPost, "/apps/create-variant", validPayload())
			require.Equal(t, tt.wantStatus, rec.Code)

			body := decodeBody(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantStage, body["stage"])
		})
	}
}

func TestCreateVariantHandler_MethodNotAllowed(t *testing.T) {
	_, handler := newTestApp(t, &fakeProvisioner{}, &fakeSweeper{}, &fakeCart{})

	rec := doJSON(t, handler, http.MethodGet, "/apps/create-variant", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// ==========================
// Add To Cart Tests
// ==========================

func TestAddToCartHandler(t *testing.T) {
	p := &fakeProvisioner{result: provisionedResult()}
	c := &fakeCart{state: &cart.Cart{ItemCount: 2}}
	_, handler := newTestApp(t, p, &fakeSweeper{}, c)

	rec := doJSON(t, handler, http.MethodPost, "/apps/add-to-cart", validPayload())
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, c.added, 1)
	item := c.added[0]
	assert.Equal(t, "999", item.ID)
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, "100 cm", item.Properties["Boy"])
	assert.Equal(t, "80 cm", item.Properties["En"])
	assert.Equal(t, "Wood", item.Properties["Materyal"])
	assert.Equal(t, "48.00", item.Properties["Fiyat"])

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	cartState := body["cart"].(map[string]interface{})
	assert.Equal(t, float64(2), cartState["itemCount"])
}

func TestAddToCartHandler_CartFailure(t *testing.T) {
	p := &fakeProvisioner{result: provisionedResult()}
	c := &fakeCart{addErr: errors.NewCartAddError(assert.AnError)}
	_, handler := newTestApp(t, p, &fakeSweeper{}, c)

	rec := doJSON(t, handler, http.MethodPost, "/apps/add-to-cart", validPayload())
	require.Equal(t, http.StatusBadGateway, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "cart", body["stage"])
	assert.Equal(t, true, body["retryable"])
}

func TestAddToCartHandler_CartStateBestEffort(t *testing.T) {
	p := &fakeProvisioner{result: provisionedResult()}
	c := &fakeCart{getErr: errors.NewCartFetchError(assert.AnError)}
	_, handler := newTestApp(t, p, &fakeSweeper{}, c)

	rec := doJSON(t, handler, http.MethodPost, "/apps/add-to-cart", validPayload())
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Nil(t, body["cart"])
}

// ==========================
// Cleanup Tests
// ==========================

func TestCleanupHandler(t *testing.T) {
	summary := &sweep.Summary{
		DeletedCount: 2,
		SkippedCount: 1,
		TotalFound:   3,
		Errors:       []sweep.ItemError{},
		Timestamp:    time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC),
	}

	for _, path := range []string{"/apps/cleanup-variants", "/apps/daily-cleanup"} {
		t.Run(path, func(t *testing.T) {
			s := &fakeSweeper{summary: summary}
			_, handler := newTestApp(t, &fakeProvisioner{}, s, &fakeCart{})

			rec := doJSON(t, handler, http.MethodGet, path, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, 1, s.calls)

			body := decodeBody(t, rec)
			assert.Equal(t, true, body["success"])
			assert.Equal(t, float64(2), body["deletedCount"])
			assert.Equal(t, float64(1), body["skippedCount"])
			assert.Equal(t, float64(3), body["totalFound"])
			assert.Equal(t, "2025-03-02T12:00:00Z", body["timestamp"])
		})
	}
}

func TestCleanupHandler_PartialFailure(t *testing.T) {
	s := &fakeSweeper{summary: &sweep.Summary{
		DeletedCount: 1,
		TotalFound:   2,
		Errors: []sweep.ItemError{
			{VariantGID: "gid://shopify/ProductVariant/1", Message: "boom"},
		},
		Timestamp: time.Now().UTC(),
	}}
	_, handler := newTestApp(t, &fakeProvisioner{}, s, &fakeCart{})

	rec := doJSON(t, handler, http.MethodGet, "/apps/cleanup-variants", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Len(t, body["errors"], 1)
}

func TestCleanupHandler_ListFailure(t *testing.T) {
	s := &fakeSweeper{err: errors.NewSweepListError(assert.AnError)}
	_, handler := newTestApp(t, &fakeProvisioner{}, s, &fakeCart{})

	rec := doJSON(t, handler, http.MethodGet, "/apps/cleanup-variants", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// ==========================
// Logs Tests
// ==========================

func TestLogsHandler(t *testing.T) {
	app, handler := newTestApp(t, &fakeProvisioner{}, &fakeSweeper{}, &fakeCart{})

	for i := 0; i < 7; i++ {
		app.Events.Record(eventlog.LevelInfo, "variant_created", nil)
	}

	rec := doJSON(t, handler, http.MethodGet, "/apps/logs?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(5), body["count"])
	assert.Len(t, body["logs"], 5)
}

func TestLogsHandler_DefaultLimit(t *testing.T) {
	app, handler := newTestApp(t, &fakeProvisioner{}, &fakeSweeper{}, &fakeCart{})
	app.Events.Record(eventlog.LevelInfo, "variant_created", nil)

	rec := doJSON(t, handler, http.MethodGet, "/apps/logs", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["count"])
}

func TestLogsHandler_InvalidLimit(t *testing.T) {
	_, handler := newTestApp(t, &fakeProvisioner{}, &fakeSweeper{}, &fakeCart{})

	rec := doJSON(t, handler, http.MethodGet, "/apps/logs?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ==========================
// Price Quote Tests
// ==========================

func TestPriceQuoteHandler(t *testing.T) {
	_, handler := newTestApp(t, &fakeProvisioner{}, &fakeSweeper{}, &fakeCart{})

	rec := doJSON(t, handler, http.MethodPost, "/apps/price-quote", map[string]interface{}{
		"materialKey": "wood",
		"boy":         100,
		"en":          80,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, 48.00, body["price"])
	assert.Equal(t, 0.8, body["area"])
	assert.Equal(t, 1.2, body["coefficient"])
	assert.Equal(t, "USD", body["currency"])
	assert.Equal(t, "Wood", body["materialLabel"])
}

func TestPriceQuoteHandler_UnknownMaterial(t *testing.T) {
	_, handler := newTestApp(t, &fakeProvisioner{}, &fakeSweeper{}, &fakeCart{})

	rec := doJSON(t, handler, http.MethodPost, "/apps/price-quote", map[string]interface{}{
		"materialKey": "granite",
		"boy":         100,
		"en":          80,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPriceQuoteHandler_Validation(t *testing.T) {
	_, handler := newTestApp(t, &fakeProvisioner{}, &fakeSweeper{}, &fakeCart{})

	rec := doJSON(t, handler, http.MethodPost, "/apps/price-quote", map[string]interface{}{
		"boy": 100,
		"en":  80,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ==========================
// Materials, Health, Middleware Tests
// ==========================

func TestMaterialsHandler(t *testing.T) {
	_, handler := newTestApp(t, &fakeProvisioner{}, &fakeSweeper{}, &fakeCart{})

	rec := doJSON(t, handler, http.MethodGet, "/apps/materials", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Len(t, body["materials"], 3)
}

func TestHealthHandler(t *testing.T) {
	_, handler := newTestApp(t, &fakeProvisioner{}, &fakeSweeper{}, &fakeCart{})

	rec := doJSON(t, handler, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "ok", body["status"])
}

func TestRequestIDHeader(t *testing.T) {
	_, handler := newTestApp(t, &fakeProvisioner{}, &fakeSweeper{}, &fakeCart{})

	rec := doJSON(t, handler, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "req-42")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-Id"))
}
