// internal/common/validation/schema.go
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// createVariantSchema validates the create-variant and add-to-cart
// request payloads. Dimensions and price arrive as strings from the
// storefront form, so they are checked against numeric patterns.
var createVariantSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"productId", "calculatedPrice", "materyalLabel", "boy", "en"},
	"properties": map[string]interface{}{
		"productId": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"calculatedPrice": map[string]interface{}{
			"type":    "string",
			"pattern": `^[0-9]+(\.[0-9]+)?$`,
		},
		"materyalLabel": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"boy": map[string]interface{}{
			"type":    "string",
			"pattern": `^[0-9]+(\.[0-9]+)?$`,
		},
		"en": map[string]interface{}{
			"type":    "string",
			"pattern": `^[0-9]+(\.[0-9]+)?$`,
		},
	},
}

// priceQuoteSchema validates the price-quote request payload.
var priceQuoteSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"materialKey", "boy", "en"},
	"properties": map[string]interface{}{
		"materialKey": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
		"boy": map[string]interface{}{
			"type": "number",
		},
		"en": map[string]interface{}{
			"type": "number",
		},
	},
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Result struct {
	Valid  bool
	Errors []FieldError
}

func ValidateCreateVariant(payload map[string]interface{}) (*Result, error) {
	return validate(createVariantSchema, payload)
}

func ValidatePriceQuote(payload map[string]interface{}) (*Result, error) {
	return validate(priceQuoteSchema, payload)
}

func validate(schema, payload map[string]interface{}) (*Result, error) {
	schemaLoader := gojsonschema.NewGoLoader(schema)
	documentLoader := gojsonschema.NewGoLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &Result{Valid: result.Valid()}
	if !result.Valid() {
		out.Errors = make([]FieldError, len(result.Errors()))
		for i, desc := range result.Errors() {
			out.Errors[i] = FieldError{
				Field:   desc.Field(),
				Message: desc.Description(),
			}
		}
	}
	return out, nil
}
