// internal/sweep/models.go
package sweep

import "time"

// ItemError records a per-variant delete failure. The sweep keeps going
// past individual failures so one stuck variant cannot block the rest.
type ItemError struct {
	VariantGID string `json:"variantGid"`
	Message    string `json:"message"`
}

// Summary is the outcome of one cleanup pass.
type Summary struct {
	DeletedCount int         `json:"deletedCount"`
	SkippedCount int         `json:"skippedCount"`
	TotalFound   int         `json:"totalFound"`
	Errors       []ItemError `json:"errors"`
	Timestamp    time.Time   `json:"timestamp"`
}
