package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/verinum/verinum-api/internal/models"
	"github.com/verinum/verinum-api/internal/utils"
	"github.com/verinum/verinum-api/pkg/fivesim"
)

// fivesimCountrySlugs maps ISO country codes to FiveSim country slugs.
var fivesimCountrySlugs = map[string]string{
	"NG": "nigeria",
	"US": "usa",
	"GB": "england",
	"ID": "indonesia",
	"IN": "india",
	"ZA": "southafrica",
	"GH": "ghana",
	"KE": "kenya",
}

// FiveSimProviderClient adapts the FiveSim JSON API to SMSProviderClient.
type FiveSimProviderClient struct {
	client   *fivesim.Client
	healthy  bool
	healthMu sync.RWMutex
}

// NewFiveSimProviderClient creates a new FiveSim adapter.
func NewFiveSimProviderClient(client *fivesim.Client) *FiveSimProviderClient {
	return &FiveSimProviderClient{client: client, healthy: true}
}

// Code returns the provider code.
func (c *FiveSimProviderClient) Code() models.ProviderCode {
	return models.ProviderFiveSim
}

// ListCountries returns the resellable subset of the provider directory.
func (c *FiveSimProviderClient) ListCountries(ctx context.Context) ([]Country, error) {
	resp, err := c.client.GetCountries(ctx)
	if err != nil {
		c.markUnhealthy()
		return nil, fmt.Errorf("%w: %v", utils.ErrProviderUnavailable, err)
	}
	c.markHealthy()

	slugToISO := make(map[string]string, len(fivesimCountrySlugs))
	for iso, slug := range fivesimCountrySlugs {
		slugToISO[slug] = iso
	}

	countries := make([]Country, 0, len(fivesimCountrySlugs))
	for slug, entry := range resp {
		iso, ok := slugToISO[slug]
		if !ok {
			continue
		}
		name := entry.Text
		if name == "" {
			name = slug
		}
		countries = append(countries, Country{Code: iso, Name: name})
	}
	return countries, nil
}

// ListServices returns RUB-denominated offers for one country. FiveSim
// reports per-operator offers; the adapter keeps the cheapest operator with
// stock and sums counts across operators.
func (c *FiveSimProviderClient) ListServices(ctx context.Context, country string) ([]ServiceOffer, error) {
	slug, ok := fivesimCountrySlugs[strings.ToUpper(country)]
	if !ok {
		return nil, nil
	}

	resp, err := c.client.GetPrices(ctx, slug)
	if err != nil {
		c.markUnhealthy()
		return nil, fmt.Errorf("%w: %v", utils.ErrProviderUnavailable, err)
	}
	c.markHealthy()

	offers := make([]ServiceOffer, 0, len(resp))
	for product, operators := range resp {
		var (
			bestCost   float64
			totalCount int
			found      bool
		)
		for _, op := range operators {
			count := op.Count
			if count < 0 {
				count = 0
			}
			totalCount += count
			if count == 0 {
				continue
			}
			if !found || op.Cost < bestCost {
				bestCost = op.Cost
				found = true
			}
		}
		if !found {
			// No operator with stock; surface a zero-count row so the
			// catalog still learns the service exists.
			for _, op := range operators {
				if !found || op.Cost < bestCost {
					bestCost = op.Cost
					found = true
				}
			}
		}
		offers = append(offers, ServiceOffer{
			Service: product,
			Name:    product,
			Cost:    bestCost,
			Count:   totalCount,
		})
	}
	return offers, nil
}

// CreateOrder buys an activation using any operator.
func (c *FiveSimProviderClient) CreateOrder(ctx context.Context, country, service string) (*Order, error) {
	slug, ok := fivesimCountrySlugs[strings.ToUpper(country)]
	if !ok {
		return nil, fmt.Errorf("%w: fivesim does not carry country %s", utils.ErrNoOffer, country)
	}
	resp, err := c.client.BuyActivation(ctx, slug, service)
	if err != nil {
		c.markUnhealthy()
		return nil, fmt.Errorf("%w: %v", utils.ErrProviderUnavailable, err)
	}
	c.markHealthy()

	order := &Order{
		OrderID:     strconv.FormatInt(resp.ID, 10),
		PhoneNumber: resp.Phone,
		Cost:        resp.Price,
		Status:      strings.ToLower(resp.Status),
	}
	if !resp.Expires.IsZero() {
		expires := resp.Expires
		order.ExpiresAt = &expires
	}
	return order, nil
}

// GetCode returns the first received SMS code, empty while waiting.
func (c *FiveSimProviderClient) GetCode(ctx context.Context, orderID string) (string, error) {
	resp, err := c.client.CheckOrder(ctx, orderID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", utils.ErrProviderUnavailable, err)
	}
	for _, sms := range resp.SMS {
		if sms.Code != "" {
			return sms.Code, nil
		}
	}
	return "", nil
}

// CancelOrder cancels the activation.
func (c *FiveSimProviderClient) CancelOrder(ctx context.Context, orderID string) (bool, error) {
	resp, err := c.client.CancelOrder(ctx, orderID)
	if err != nil {
		return false, fmt.Errorf("%w: %v", utils.ErrProviderUnavailable, err)
	}
	return resp.Status == fivesim.StatusCanceled, nil
}

// GetBalance returns the RUB account balance.
func (c *FiveSimProviderClient) GetBalance(ctx context.Context) (float64, error) {
	profile, err := c.client.GetProfile(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", utils.ErrProviderUnavailable, err)
	}
	return profile.Balance, nil
}

// IsHealthy returns whether the provider is healthy.
func (c *FiveSimProviderClient) IsHealthy() bool {
	c.healthMu.RLock()
	defer c.healthMu.RUnlock()
	return c.healthy
}

func (c *FiveSimProviderClient) markHealthy() {
	c.healthMu.Lock()
	defer c.healthMu.Unlock()
	c.healthy = true
}

func (c *FiveSimProviderClient) markUnhealthy() {
	c.healthMu.Lock()
	defer c.healthMu.Unlock()
	c.healthy = false
}
