package fivesim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// Client is a minimal HTTP client for the FiveSim JSON API.
// Guest endpoints (prices, countries) need no auth; user endpoints
// (buy, check, cancel, profile) carry a Bearer token.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	debug      bool
}

// NewClient constructs a new FiveSim client with sane defaults.
func NewClient(baseURL, token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		token:      token,
		debug:      os.Getenv("ENV") == "development",
	}
}

// GetCountries lists the provider's country directory.
func (c *Client) GetCountries(ctx context.Context) (CountriesResponse, error) {
	var resp CountriesResponse
	if err := c.get(ctx, "/guest/countries", false, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetPrices returns product offers for one country, keyed by product then
// operator. Costs are in RUB.
func (c *Client) GetPrices(ctx context.Context, country string) (PricesResponse, error) {
	var resp PricesResponse
	if err := c.get(ctx, "/guest/prices?country="+country, false, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// BuyActivation purchases a number for a product in a country using any operator.
func (c *Client) BuyActivation(ctx context.Context, country, product string) (*Order, error) {
	var resp Order
	path := fmt.Sprintf("/user/buy/activation/%s/any/%s", country, product)
	if err := c.get(ctx, path, true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CheckOrder fetches an order's current state including received SMS.
func (c *Client) CheckOrder(ctx context.Context, orderID string) (*Order, error) {
	var resp Order
	if err := c.get(ctx, "/user/check/"+orderID, true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CancelOrder cancels a pending order.
func (c *Client) CancelOrder(ctx context.Context, orderID string) (*Order, error) {
	var resp Order
	if err := c.get(ctx, "/user/cancel/"+orderID, true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetProfile returns the authenticated account, including its RUB balance.
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	var resp Profile
	if err := c.get(ctx, "/user/profile", true, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// get performs a GET request and decodes the JSON response into result.
func (c *Client) get(ctx context.Context, path string, authed bool, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if c.debug {
		log.Debug().
			Str("path", path).
			Int("status_code", resp.StatusCode).
			Msg("[FIVESIM] Response")
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fivesim api error: status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
