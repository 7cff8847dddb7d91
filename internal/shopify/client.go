// internal/shopify/client.go
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"custom-pricing-service/internal/common/config"
	"custom-pricing-service/internal/common/errors"
)

// AdminAPI is the subset of the Shopify Admin GraphQL API the service
// needs. Implementations return *errors.StandardError on failure.
type AdminAPI interface {
	ListVariants(ctx context.Context, productGID string, limit int) ([]Variant, error)
	ListTemporaryVariants(ctx context.Context, limit int) ([]Variant, error)
	GetProductOptions(ctx context.Context, productGID string) ([]ProductOption, error)
	CreateVariant(ctx context.Context, productGID string, input VariantInput) (*Variant, error)
	DeleteVariants(ctx context.Context, productGID string, variantGIDs []string) error
}

type Client struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
}

func NewClient(cfg config.ShopifyConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint:    fmt.Sprintf("https://%s/admin/api/%s/graphql.json", cfg.ShopDomain, cfg.APIVersion),
		accessToken: cfg.AccessToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NormalizeProductGID accepts either a numeric product ID or a full GID
// and returns the GID form.
func NormalizeProductGID(id string) string {
	if strings.HasPrefix(id, "gid://") {
		return id
	}
	return "gid://shopify/Product/" + id
}

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

type gqlMetafield struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type gqlVariant struct {
	ID               string `json:"id"`
	LegacyResourceID string `json:"legacyResourceId"`
	DisplayName      string `json:"displayName"`
	Price            string `json:"price"`
	Product          struct {
		ID string `json:"id"`
	} `json:"product"`
	Metafields struct {
		Edges []struct {
			Node gqlMetafield `json:"node"`
		} `json:"edges"`
	} `json:"metafields"`
}

type userError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

func (v gqlVariant) toVariant() Variant {
	out := Variant{
		GID:         v.ID,
		LegacyID:    v.LegacyResourceID,
		DisplayName: v.DisplayName,
		Price:       v.Price,
		ProductGID:  v.Product.ID,
		Metafields:  make(map[string]string, len(v.Metafields.Edges)),
	}
	for _, e := range v.Metafields.Edges {
		out.Metafields[e.Node.Key] = e.Node.Value
	}
	return out
}

func (c *Client) do(ctx context.Context, op, query string, variables map[string]interface{}, out interface{}) error {
	jsonData, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return errors.NewAdminTransportError(op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return errors.NewAdminTransportError(op, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewAdminTransportError(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewAdminTransportError(op, err)
	}

	if resp.StatusCode != http.StatusOK {
		return errors.NewAdminStatusError(op, resp.StatusCode, string(body))
	}

	var envelope graphQLEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return errors.NewAdminParseError(op, err)
	}

	if len(envelope.Errors) > 0 {
		msgs := make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			msgs[i] = e.Message
		}
		return errors.NewAdminUserErrorsError(op, msgs)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return errors.NewAdminParseError(op, err)
		}
	}

	return nil
}

const variantFields = `
id
legacyResourceId
displayName
price
product { id }
metafields(namespace: "custom", first: 10) {
  edges {
    node {
      key
      value
    }
  }
}`

func (c *Client) ListVariants(ctx context.Context, productGID string, limit int) ([]Variant, error) {
	query := fmt.Sprintf(`query listVariants($id: ID!, $first: Int!) {
  product(id: $id) {
    variants(first: $first) {
      edges {
        node {%s
        }
      }
    }
  }
}`, variantFields)

	var result struct {
		Product *struct {
			Variants struct {
				Edges []struct {
					Node gqlVariant `json:"node"`
				} `json:"edges"`
			} `json:"variants"`
		} `json:"product"`
	}

	err := c.do(ctx, "listVariants", query, map[string]interface{}{
		"id":    productGID,
		"first": limit,
	}, &result)
	if err != nil {
		return nil, err
	}

	if result.Product == nil {
		return nil, errors.NewAdminMissingResultError("listVariants", "product not found: "+productGID)
	}

	variants := make([]Variant, 0, len(result.Product.Variants.Edges))
	for _, e := range result.Product.Variants.Edges {
		variants = append(variants, e.Node.toVariant())
	}
	return variants, nil
}

func (c *Client) ListTemporaryVariants(ctx context.Context, limit int) ([]Variant, error) {
	query := fmt.Sprintf(`query listTemporaryVariants($first: Int!) {
  productVariants(first: $first, query: "metafield.custom.temporary:true") {
    edges {
      node {%s
      }
    }
  }
}`, variantFields)

	var result struct {
		ProductVariants struct {
			Edges []struct {
				Node gqlVariant `json:"node"`
			} `json:"edges"`
		} `json:"productVariants"`
	}

	err := c.do(ctx, "listTemporaryVariants", query, map[string]interface{}{
		"first": limit,
	}, &result)
	if err != nil {
		return nil, err
	}

	variants := make([]Variant, 0, len(result.ProductVariants.Edges))
	for _, e := range result.ProductVariants.Edges {
		variants = append(variants, e.Node.toVariant())
	}
	return variants, nil
}

func (c *Client) GetProductOptions(ctx context.Context, productGID string) ([]ProductOption, error) {
	query := `query productOptions($id: ID!) {
  product(id: $id) {
    options {
      name
      values
    }
  }
}`

	var result struct {
		Product *struct {
			Options []struct {
				Name   string   `json:"name"`
				Values []string `json:"values"`
			} `json:"options"`
		} `json:"product"`
	}

	err := c.do(ctx, "productOptions", query, map[string]interface{}{
		"id": productGID,
	}, &result)
	if err != nil {
		return nil, err
	}

	if result.Product == nil {
		return nil, errors.NewAdminMissingResultError("productOptions", "product not found: "+productGID)
	}

	options := make([]ProductOption, 0, len(result.Product.Options))
	for _, o := range result.Product.Options {
		options = append(options, ProductOption{Name: o.Name, Values: o.Values})
	}
	return options, nil
}

func (c *Client) CreateVariant(ctx context.Context, productGID string, input VariantInput) (*Variant, error) {
	query := `mutation createVariant($productId: ID!, $variants: [ProductVariantsBulkInput!]!) {
  productVariantsBulkCreate(productId: $productId, variants: $variants) {
    productVariants {
      id
      legacyResourceId
      displayName
      price
      product { id }
    }
    userErrors {
      field
      message
    }
  }
}`

	var result struct {
		ProductVariantsBulkCreate *struct {
			ProductVariants []gqlVariant `json:"productVariants"`
			UserErrors      []userError  `json:"userErrors"`
		} `json:"productVariantsBulkCreate"`
	}

	err := c.do(ctx, "createVariant", query, map[string]interface{}{
		"productId": productGID,
		"variants":  []VariantInput{input},
	}, &result)
	if err != nil {
		return nil, err
	}

	if result.ProductVariantsBulkCreate == nil {
		return nil, errors.NewAdminMissingResultError("createVariant", "empty mutation result")
	}

	if len(result.ProductVariantsBulkCreate.UserErrors) > 0 {
		msgs := make([]string, len(result.ProductVariantsBulkCreate.UserErrors))
		for i, ue := range result.ProductVariantsBulkCreate.UserErrors {
			msgs[i] = ue.Message
		}
		return nil, errors.NewAdminUserErrorsError("createVariant", msgs)
	}

	if len(result.ProductVariantsBulkCreate.ProductVariants) == 0 {
		return nil, errors.NewAdminMissingResultError("createVariant", "no variant returned")
	}

	variant := result.ProductVariantsBulkCreate.ProductVariants[0].toVariant()
	return &variant, nil
}

func (c *Client) DeleteVariants(ctx context.Context, productGID string, variantGIDs []string) error {
	query := `mutation deleteVariants($productId: ID!, $variantsIds: [ID!]!) {
  productVariantsBulkDelete(productId: $productId, variantsIds: $variantsIds) {
    userErrors {
      field
      message
    }
  }
}`

	var result struct {
		ProductVariantsBulkDelete *struct {
			UserErrors []userError `json:"userErrors"`
		} `json:"productVariantsBulkDelete"`
	}

	err := c.do(ctx, "deleteVariants", query, map[string]interface{}{
		"productId":   productGID,
		"variantsIds": variantGIDs,
	}, &result)
	if err != nil {
		return err
	}

	if result.ProductVariantsBulkDelete == nil {
		return errors.NewAdminMissingResultError("deleteVariants", "empty mutation result")
	}

	if len(result.ProductVariantsBulkDelete.UserErrors) > 0 {
		msgs := make([]string, len(result.ProductVariantsBulkDelete.UserErrors))
		for i, ue := range result.ProductVariantsBulkDelete.UserErrors {
			msgs[i] = ue.Message
		}
		return errors.NewAdminUserErrorsError("deleteVariants", msgs)
	}

	return nil
}
