// internal/httpapi/router.go
package httpapi

import (
	"expvar"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/apps/create-variant", app.createVariantHandler)
	mux.HandleFunc("/apps/add-to-cart", app.addToCartHandler)
	mux.HandleFunc("/apps/cleanup-variants", app.cleanupHandler)
	mux.HandleFunc("/apps/daily-cleanup", app.cleanupHandler)
	mux.HandleFunc("/apps/logs", app.logsHandler)
	mux.HandleFunc("/apps/price-quote", app.priceQuoteHandler)
	mux.HandleFunc("/apps/materials", app.materialsHandler)
	mux.HandleFunc("/health", app.healthHandler)
	mux.HandleFunc("/ready", app.readyHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/vars", expvar.Handler())
	return WithRequestID(WithLogging(app.Logger, WithMetrics(app.Obs, mux)))
}
