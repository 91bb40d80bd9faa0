package smslive

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

// Client is a minimal HTTP client for the SMSLive activation API. The API is
// a single handler endpoint driven by an `action` query parameter; most
// responses are plain text, prices and countries are JSON.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	debug      bool
}

// NewClient constructs a new SMSLive client with sane defaults.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		debug:      os.Getenv("ENV") == "development",
	}
}

// GetCountries returns the provider's country directory keyed by numeric ID.
func (c *Client) GetCountries(ctx context.Context) (CountriesResponse, error) {
	body, err := c.do(ctx, url.Values{"action": {"getCountries"}})
	if err != nil {
		return nil, err
	}
	var resp CountriesResponse
	if err := decodeJSON(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode countries: %w", err)
	}
	return resp, nil
}

// GetPrices returns offers for one country keyed by service code. Costs are
// denominated in RUB (the account currency) as reported by the API.
func (c *Client) GetPrices(ctx context.Context, countryID string) (PricesResponse, error) {
	body, err := c.do(ctx, url.Values{
		"action":  {"getPrices"},
		"country": {countryID},
	})
	if err != nil {
		return nil, err
	}
	var resp PricesResponse
	if err := decodeJSON(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode prices: %w", err)
	}
	return resp, nil
}

// GetNumber buys a number for a service. The API answers
// "ACCESS_NUMBER:<id>:<phone>" on success.
func (c *Client) GetNumber(ctx context.Context, service, countryID string) (*NumberResponse, error) {
	body, err := c.do(ctx, url.Values{
		"action":  {"getNumber"},
		"service": {service},
		"country": {countryID},
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

// GetStatus polls an activation. It returns the received code when the
// answer is "STATUS_OK:<code>", an empty string while waiting.
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
	case text == "STATUS_WAIT_CODE" || text == "STATUS_WAIT_RETRY":
		return "", nil
	default:
		return "", apiError(text)
	}
}

// CancelActivation cancels an activation (status 8 per the wire protocol).
func (c *Client) CancelActivation(ctx context.Context, id string) (bool, error) {
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

// GetBalance returns the account balance in RUB.
// The API answers "ACCESS_BALANCE:<amount>".
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

// do performs a GET against the handler endpoint with the API key attached
// and returns the raw response body.
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
			Str("response", truncate(string(body), 512)).
			Msg("[SMSLIVE] Response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return body, nil
}

// apiError maps the API's text error tokens (BAD_KEY, NO_NUMBERS, ...) to an error.
func apiError(text string) error {
	if text == "" {
		text = "empty response"
	}
	return fmt.Errorf("smslive api error: %s", text)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
