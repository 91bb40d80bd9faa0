package daisysms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Client is a minimal HTTP client for the DaisySMS API. The wire protocol is
// the handler_api convention: text responses for activation operations, JSON
// for the price list. All prices are USD and all numbers are US-based.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	debug      bool
}

// NewClient constructs a new DaisySMS client with sane defaults.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		debug:      os.Getenv("ENV") == "development",
	}
}

// GetPrices returns the verification price list keyed by service code.
func (c *Client) GetPrices(ctx context.Context) (PricesResponse, error) {
	body, err := c.do(ctx, url.Values{"action": {"getPricesVerification"}})
	if err != nil {
		return nil, err
	}
	var resp PricesResponse
	if err := decodeJSON(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode prices: %w", err)
	}
	return resp, nil
}

// GetNumber rents a number for a service.
// The API answers "ACCESS_NUMBER:<id>:<phone>" on success.
func (c *Client) GetNumber(ctx context.Context, service string) (*NumberResponse, error) {
	body, err := c.do(ctx, url.Values{
		"action":  {"getNumber"},
		"service": {service},
	})
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(string(body))
	parts := strings.SplitN(text, ":", 3)
	if len(parts) != 3 || parts[0] != "ACCESS_NUMBER" {
		return nil, apiError(text)
	}
	return &NumberResponse{ID: parts[1], Phone: parts[2]}, nil
}

// GetStatus polls a rental for its code. Empty string means still waiting.
func (c *Client) GetStatus(ctx context.Context, id string) (string, error) {
	body, err := c.do(ctx, url.Values{
		"action": {"getStatus"},
		"id":     {id},
	})
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(string(body))
	switch {
	case strings.HasPrefix(text, "STATUS_OK:"):
		return strings.TrimPrefix(text, "STATUS_OK:"), nil
	case text == "STATUS_WAIT_CODE":
		return "", nil
	default:
		return "", apiError(text)
	}
}

// Cancel releases a rental and refunds it when no code has arrived yet.
func (c *Client) Cancel(ctx context.Context, id string) (bool, error) {
	body, err := c.do(ctx, url.Values{
		"action": {"setStatus"},
		"status": {"8"},
		"id":     {id},
	})
	if err != nil {
		return false, err
	}
	text := strings.TrimSpace(string(body))
	if text == "ACCESS_CANCEL" {
		return true, nil
	}
	return false, apiError(text)
}

// GetBalance returns the account balance in USD.
func (c *Client) GetBalance(ctx context.Context) (float64, error) {
	body, err := c.do(ctx, url.Values{"action": {"getBalance"}})
	if err != nil {
		return 0, err
	}
	text := strings.TrimSpace(string(body))
	if !strings.HasPrefix(text, "ACCESS_BALANCE:") {
		return 0, apiError(text)
	}
	return parseAmount(strings.TrimPrefix(text, "ACCESS_BALANCE:")), nil
}

// do performs a GET against the handler endpoint with the API key attached.
func (c *Client) do(ctx context.Context, params url.Values) ([]byte, error) {
	params.Set("api_key", c.apiKey)
	endpoint := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if c.debug {
		log.Debug().
			Str("action", params.Get("action")).
			Int("status_code", resp.StatusCode).
			Msg("[DAISYSMS] Response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return body, nil
}

func apiError(text string) error {
	if text == "" {
		text = "empty response"
	}
	return fmt.Errorf("daisysms api error: %s", text)
}
