package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/verinum/verinum-api/internal/models"
	"github.com/verinum/verinum-api/internal/utils"
	"github.com/verinum/verinum-api/pkg/daisysms"
)

// DaisySMSProviderClient adapts the DaisySMS API to SMSProviderClient.
// DaisySMS only rents US numbers, so every non-US country yields an empty
// batch instead of an error.
type DaisySMSProviderClient struct {
	client   *daisysms.Client
	healthy  bool
	healthMu sync.RWMutex
}

// NewDaisySMSProviderClient creates a new DaisySMS adapter.
func NewDaisySMSProviderClient(client *daisysms.Client) *DaisySMSProviderClient {
	return &DaisySMSProviderClient{client: client, healthy: true}
}

// Code returns the provider code.
func (c *DaisySMSProviderClient) Code() models.ProviderCode {
	return models.ProviderDaisySMS
}

// ListCountries returns the single country this provider carries.
func (c *DaisySMSProviderClient) ListCountries(ctx context.Context) ([]Country, error) {
	return []Country{{Code: "US", Name: "United States"}}, nil
}

// ListServices returns USD-denominated offers; empty outside the US.
func (c *DaisySMSProviderClient) ListServices(ctx context.Context, country string) ([]ServiceOffer, error) {
	if strings.ToUpper(country) != "US" {
		return nil, nil
	}

	resp, err := c.client.GetPrices(ctx)
	if err != nil {
		c.markUnhealthy()
		return nil, fmt.Errorf("%w: %v", utils.ErrProviderUnavailable, err)
	}
	c.markHealthy()

	offers := make([]ServiceOffer, 0, len(resp))
	for svc, entry := range resp {
		name := entry.Name
		if name == "" {
			name = svc
		}
		offers = append(offers, ServiceOffer{
			Service: svc,
			Name:    name,
			Cost:    float64(entry.Cost),
			Count:   int(entry.Count),
		})
	}
	return offers, nil
}

// CreateOrder rents a number for a service.
func (c *DaisySMSProviderClient) CreateOrder(ctx context.Context, country, service string) (*Order, error) {
	if strings.ToUpper(country) != "US" {
		return nil, fmt.Errorf("%w: daisysms only carries US numbers", utils.ErrNoOffer)
	}
	resp, err := c.client.GetNumber(ctx, service)
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

// GetCode polls the rental for a received code.
func (c *DaisySMSProviderClient) GetCode(ctx context.Context, orderID string) (string, error) {
	code, err := c.client.GetStatus(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", utils.ErrProviderUnavailable, err)
	}
	return code, nil
}

// CancelOrder releases the rental.
func (c *DaisySMSProviderClient) CancelOrder(ctx context.Context, orderID string) (bool, error) {
	ok, err := c.client.Cancel(ctx, orderID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", utils.ErrProviderUnavailable, err)
	}
	return ok, nil
}

// GetBalance returns the USD account balance.
func (c *DaisySMSProviderClient) GetBalance(ctx context.Context) (float64, error) {
	balance, err := c.client.GetBalance(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", utils.ErrProviderUnavailable, err)
	}
	return balance, nil
}

// IsHealthy returns whether the provider is healthy.
func (c *DaisySMSProviderClient) IsHealthy() bool {
	c.healthMu.RLock()
	defer c.healthMu.RUnlock()
	return c.healthy
}

func (c *DaisySMSProviderClient) markHealthy() {
	c.healthMu.Lock()
	defer c.healthMu.Unlock()
	c.healthy = true
}

func (c *DaisySMSProviderClient) markUnhealthy() {
	c.healthMu.Lock()
	defer c.healthMu.Unlock()
	c.healthy = false
}
