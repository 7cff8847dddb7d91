// internal/provision/models.go
package provision

import "time"

// Request describes a temporary variant to provision. Dimensions and
// price arrive as strings exactly as submitted by the storefront form;
// they are embedded verbatim in the variant title and metadata.
type Request struct {
	ProductID       string `json:"productId"`
	CalculatedPrice string `json:"calculatedPrice"`
	MaterialLabel   string `json:"materyalLabel"`
	Boy             string `json:"boy"`
	En              string `json:"en"`
}

// Result is the outcome of a provisioning call. Reused is true when an
// existing temporary variant with the same dimension signature was
// returned instead of creating a new one.
type Result struct {
	VariantID  string     `json:"variantId"`
	VariantGID string     `json:"variantGid"`
	Title      string     `json:"title"`
	Price      string     `json:"price"`
	Reused     bool       `json:"reused"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
	DeleteAt   *time.Time `json:"deleteAt,omitempty"`
}
