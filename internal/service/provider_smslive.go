package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/verinum/verinum-api/internal/models"
	"github.com/verinum/verinum-api/internal/utils"
	"github.com/verinum/verinum-api/pkg/smslive"
)

// smsliveCountryIDs maps ISO country codes to SMSLive numeric country IDs.
// The upstream directory is ID-keyed; only countries we resell are mapped.
var smsliveCountryIDs = map[string]string{
	"NG": "19",
	"US": "187",
	"GB": "16",
	"ID": "6",
	"IN": "22",
	"ZA": "31",
	"GH": "38",
	"KE": "8",
}

// SMSLiveProviderClient adapts the SMSLive wire format to SMSProviderClient.
type SMSLiveProviderClient struct {
	client   *smslive.Client
	healthy  bool
	healthMu sync.RWMutex
}

// NewSMSLiveProviderClient creates a new SMSLive adapter.
func NewSMSLiveProviderClient(client *smslive.Client) *SMSLiveProviderClient {
	return &SMSLiveProviderClient{client: client, healthy: true}
}

// Code returns the provider code.
func (c *SMSLiveProviderClient) Code() models.ProviderCode {
	return models.ProviderSMSLive
}

// ListCountries returns the resellable subset of the provider directory.
func (c *SMSLiveProviderClient) ListCountries(ctx context.Context) ([]Country, error) {
	resp, err := c.client.GetCountries(ctx)
	if err != nil {
		c.markUnhealthy()
		return nil, fmt.Errorf("%w: %v", utils.ErrProviderUnavailable, err)
	}
	c.markHealthy()

	// Invert the ISO -> ID map so directory entries resolve to ISO codes.
	idToISO := make(map[string]string, len(smsliveCountryIDs))
	for iso, id := range smsliveCountryIDs {
		idToISO[id] = iso
	}

	countries := make([]Country, 0, len(resp))
	for id, entry := range resp {
		iso, ok := idToISO[id]
		if !ok {
			continue
		}
		name := entry.Eng
		if name == "" {
			name = entry.Rus
		}
		countries = append(countries, Country{Code: iso, Name: name})
	}
	sort.Slice(countries, func(i, j int) bool { return countries[i].Code < countries[j].Code })
	return countries, nil
}

// ListServices returns RUB-denominated offers for one country.
func (c *SMSLiveProviderClient) ListServices(ctx context.Context, country string) ([]ServiceOffer, error) {
	id, ok := smsliveCountryIDs[strings.ToUpper(country)]
	if !ok {
		// Country not carried by this provider: an empty batch, not an error.
		return nil, nil
	}

	resp, err := c.client.GetPrices(ctx, id)
	if err != nil {
		c.markUnhealthy()
		return nil, fmt.Errorf("%w: %v", utils.ErrProviderUnavailable, err)
	}
	c.markHealthy()

	offers := make([]ServiceOffer, 0, len(resp))
	for svc, offer := range resp {
		offers = append(offers, ServiceOffer{
			Service: svc,
			Name:    svc,
			Cost:    float64(offer.Cost),
			Count:   int(offer.Count),
		})
	}
	return offers, nil
}

// CreateOrder buys an activation number.
func (c *SMSLiveProviderClient) CreateOrder(ctx context.Context, country, service string) (*Order, error) {
	id, ok := smsliveCountryIDs[strings.ToUpper(country)]
	if !ok {
		return nil, fmt.Errorf("%w: smslive does not carry country %s", utils.ErrNoOffer, country)
	}
	resp, err := c.client.GetNumber(ctx, service, id)
	if err != nil {
		c.markUnhealthy()
		return nil, fmt.Errorf("%w: %v", utils.ErrProviderUnavailable, err)
	}
	c.markHealthy()
	return &Order{
		OrderID:     resp.ID,
		PhoneNumber: resp.Phone,
		Status:      "pending",
	}, nil
}

// GetCode polls the activation for a received code.
func (c *SMSLiveProviderClient) GetCode(ctx context.Context, orderID string) (string, error) {
	code, err := c.client.GetStatus(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", utils.ErrProviderUnavailable, err)
	}
	return code, nil
}

// CancelOrder cancels the activation.
func (c *SMSLiveProviderClient) CancelOrder(ctx context.Context, orderID string) (bool, error) {
	ok, err := c.client.CancelActivation(ctx, orderID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", utils.ErrProviderUnavailable, err)
	}
	return ok, nil
}

// GetBalance returns the RUB account balance.
func (c *SMSLiveProviderClient) GetBalance(ctx context.Context) (float64, error) {
	balance, err := c.client.GetBalance(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", utils.ErrProviderUnavailable, err)
	}
	return balance, nil
}

// IsHealthy returns whether the provider is healthy.
func (c *SMSLiveProviderClient) IsHealthy() bool {
	c.healthMu.RLock()
	defer c.healthMu.RUnlock()
	return c.healthy
}

func (c *SMSLiveProviderClient) markHealthy() {
	c.healthMu.Lock()
	defer c.healthMu.Unlock()
	c.healthy = true
}

func (c *SMSLiveProviderClient) markUnhealthy() {
	c.healthMu.Lock()
	defer c.healthMu.Unlock()
	c.healthy = false
}
