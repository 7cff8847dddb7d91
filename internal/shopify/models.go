// internal/shopify/models.go
package shopify

// Metafield namespace and keys used to mark variants as temporary and
// to carry their lifecycle metadata.
const (
	MetafieldNamespace = "custom"
	KeyTemporary       = "temporary"
	KeyCreatedAt       = "created_at"
	KeyDeleteAt        = "delete_at"
	KeyDimensions      = "dimensions"
)

// Variant is a product variant as returned by the Admin API, with its
// lifecycle metafields flattened into a key/value map.
type Variant struct {
	GID         string
	LegacyID    string
	DisplayName string
	Price       string
	ProductGID  string
	Metafields  map[string]string
}

// IsTemporary reports whether the variant carries the temporary marker.
func (v Variant) IsTemporary() bool {
	return v.Metafields[KeyTemporary] == "true"
}

type ProductOption struct {
	Name   string
	Values []string
}

type MetafieldInput struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Type      string `json:"type"`
}

type OptionValueInput struct {
	OptionName string `json:"optionName"`
	Name       string `json:"name"`
}

// VariantInput is the payload for productVariantsBulkCreate.
type VariantInput struct {
	Price           string             `json:"price"`
	OptionValues    []OptionValueInput `json:"optionValues"`
	InventoryPolicy string             `json:"inventoryPolicy"`
	Metafields      []MetafieldInput   `json:"metafields"`
}
