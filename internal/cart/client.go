// internal/cart/client.go
package cart

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

// LineItem is one item added to the storefront cart. Properties show up
// as line item properties on the order.
type LineItem struct {
	ID         string            `json:"id"`
	Quantity   int               `json:"quantity"`
	Properties map[string]string `json:"properties,omitempty"`
}

// Cart is the storefront cart state, trimmed to what the service needs.
type Cart struct {
	Token      string  `json:"token"`
	ItemCount  int     `json:"item_count"`
	TotalPrice float64 `json:"total_price"`
}

// Client talks to the storefront AJAX cart API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.CartConfig) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.StorefrontURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// AddItem adds a line item via /cart/add.js.
func (c *Client) AddItem(ctx context.Context, item LineItem) error {
	payload := map[string]interface{}{
		"items": []LineItem{item},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return errors.NewCartAddError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cart/add.js", bytes.NewBuffer(jsonData))
	if err != nil {
		return errors.NewCartAddError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewCartAddError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return errors.NewCartAddError(fmt.Errorf("cart add failed (status %d): %s", resp.StatusCode, string(body)))
	}

	return nil
}

// GetCart fetches the current cart state via /cart.js.
func (c *Client) GetCart(ctx context.Context) (*Cart, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/cart.js", nil)
	if err != nil {
		return nil, errors.NewCartFetchError(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewCartFetchError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.NewCartFetchError(fmt.Errorf("cart fetch failed (status %d): %s", resp.StatusCode, string(body)))
	}

	var cart Cart
	if err := json.NewDecoder(resp.Body).Decode(&cart); err != nil {
		return nil, errors.NewCartFetchError(err)
	}

	return &cart, nil
}
