// internal/httpapi/handlers.go
package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"custom-pricing-service/internal/cart"
	"custom-pricing-service/internal/common/config"
	"custom-pricing-service/internal/common/errors"
	"custom-pricing-service/internal/common/logger"
	"custom-pricing-service/internal/common/observability"
	"custom-pricing-service/internal/common/validation"
	"custom-pricing-service/internal/eventlog"
	"custom-pricing-service/internal/pricing"
	"custom-pricing-service/internal/provision"
	"custom-pricing-service/internal/sweep"
)

const maxBodyBytes = 1 << 20

// Provisioner provisions temporary variants.
type Provisioner interface {
	Provision(ctx context.Context, req provision.Request) (*provision.Result, error)
}

// Sweeper runs a cleanup pass over expired temporary variants.
type Sweeper interface {
	Sweep(ctx context.Context) (*sweep.Summary, error)
}

// CartGateway talks to the storefront cart.
type CartGateway interface {
	AddItem(ctx context.Context, item cart.LineItem) error
	GetCart(ctx context.Context) (*cart.Cart, error)
}

type App struct {
	Cfg         config.Config
	Provisioner Provisioner
	Sweeper     Sweeper
	Cart        CartGateway
	Calculator  *pricing.Calculator
	Events      *eventlog.Log
	Logger      logger.Logger
	Obs         *observability.Observability
	started     time.Time
}

func NewApp(cfg config.Config, p Provisioner, s Sweeper, c CartGateway, calc *pricing.Calculator, events *eventlog.Log, log logger.Logger) *App {
	return &App{
		Cfg:         cfg,
		Provisioner: p,
		Sweeper:     s,
		Cart:        c,
		Calculator:  calc,
		Events:      events,
		Logger:      log,
		started:     time.Now(),
	}
}

type variantResponse struct {
	Success    bool       `json:"success"`
	Reused     bool       `json:"reused"`
	VariantID  string     `json:"variantId"`
	VariantGID string     `json:"variantGid"`
	Title      string     `json:"title"`
	Price      string     `json:"price"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
	DeleteAt   *time.Time `json:"deleteAt,omitempty"`
}

func variantResponseFrom(result *provision.Result) variantResponse {
	return variantResponse{
		Success:    true,
		Reused:     result.Reused,
		VariantID:  result.VariantID,
		VariantGID: result.VariantGID,
		Title:      result.Title,
		Price:      result.Price,
		CreatedAt:  result.CreatedAt,
		DeleteAt:   result.DeleteAt,
	}
}

// decodeProvisionRequest reads and schema-validates the create-variant
// payload shared by the create-variant and add-to-cart routes.
func (a *App) decodeProvisionRequest(w http.ResponseWriter, r *http.Request) (*provision.Request, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		WriteError(w, errors.NewInvalidRequestError("unreadable request body"), errors.StageUnknown)
		return nil, false
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		WriteError(w, errors.NewInvalidRequestError("invalid JSON: "+err.Error()), errors.StageUnknown)
		return nil, false
	}

	result, err := validation.ValidateCreateVariant(payload)
	if err != nil {
		WriteError(w, err, errors.StageUnknown)
		return nil, false
	}
	if !result.Valid {
		WriteValidationError(w, result.Errors)
		return nil, false
	}

	var req provision.Request
	if err := json.Unmarshal(body, &req); err != nil {
		WriteError(w, errors.NewInvalidRequestError(err.Error()), errors.StageUnknown)
		return nil, false
	}
	return &req, true
}

func (a *App) createVariantHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	req, ok := a.decodeProvisionRequest(w, r)
	if !ok {
		return
	}

	result, err := a.Provisioner.Provision(r.Context(), *req)
	if err != nil {
		WriteError(w, err, errors.StageVariant)
		return
	}

	WriteJSON(w, http.StatusOK, variantResponseFrom(result))
}

func (a *App) addToCartHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	req, ok := a.decodeProvisionRequest(w, r)
	if !ok {
		return
	}

	result, err := a.Provisioner.Provision(r.Context(), *req)
	if err != nil {
		WriteError(w, err, errors.StageVariant)
		return
	}

	item := cart.LineItem{
		ID:       result.VariantID,
		Quantity: 1,
		Properties: map[string]string{
			"Boy":      req.Boy + " cm",
			"En":       req.En + " cm",
			"Materyal": req.MaterialLabel,
			"Fiyat":    result.Price,
		},
	}
	if err := a.Cart.AddItem(r.Context(), item); err != nil {
		WriteError(w, err, errors.StageCart)
		return
	}

	resp := map[string]interface{}{
		"success": true,
		"variant": variantResponseFrom(result),
	}
	// Cart state is informational only, its absence must not fail the add.
	if state, err := a.Cart.GetCart(r.Context()); err == nil {
		resp["cart"] = map[string]interface{}{
			"itemCount": state.ItemCount,
		}
	}

	WriteJSON(w, http.StatusOK, resp)
}

func (a *App) cleanupHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	summary, err := a.Sweeper.Sweep(r.Context())
	if err != nil {
		WriteError(w, err, errors.StageVariant)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":      len(summary.Errors) == 0,
		"deletedCount": summary.DeletedCount,
		"skippedCount": summary.SkippedCount,
		"totalFound":   summary.TotalFound,
		"errors":       summary.Errors,
		"timestamp":    summary.Timestamp.Format(time.RFC3339),
	})
}

func (a *App) logsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			WriteError(w, errors.NewInvalidRequestError("limit must be an integer"), errors.StageUnknown)
			return
		}
		limit = parsed
	}

	entries := a.Events.Recent(limit)
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(entries),
		"logs":    entries,
	})
}

func (a *App) priceQuoteHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		WriteError(w, errors.NewInvalidRequestError("unreadable request body"), errors.StageUnknown)
		return
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		WriteError(w, errors.NewInvalidRequestError("invalid JSON: "+err.Error()), errors.StageUnknown)
		return
	}

	result, err := validation.ValidatePriceQuote(payload)
	if err != nil {
		WriteError(w, err, errors.StageUnknown)
		return
	}
	if !result.Valid {
		WriteValidationError(w, result.Errors)
		return
	}

	var req struct {
		MaterialKey string  `json:"materialKey"`
		Boy         float64 `json:"boy"`
		En          float64 `json:"en"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		WriteError(w, errors.NewInvalidRequestError(err.Error()), errors.StageUnknown)
		return
	}

	quote, err := a.Calculator.Compute(req.Boy, req.En, req.MaterialKey)
	if err != nil {
		WriteError(w, err, errors.StageUnknown)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"price":         quote.Price,
		"area":          quote.Area,
		"coefficient":   quote.Coefficient,
		"currency":      quote.Currency,
		"materialKey":   quote.MaterialKey,
		"materialLabel": quote.MaterialLabel,
	})
}

func (a *App) materialsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	materials := a.Calculator.Materials()
	out := make([]map[string]interface{}, 0, len(materials))
	for _, m := range materials {
		out = append(out, map[string]interface{}{
			"key":            m.Key,
			"label":          m.Label,
			"basePricePerM2": m.BasePricePerM2,
		})
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"currency":  a.Calculator.Currency(),
		"materials": out,
	})
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"service":    a.Cfg.App.Name,
		"version":    a.Cfg.App.Version,
		"uptime_sec": time.Since(a.started).Seconds(),
	})
}

func (a *App) readyHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
