package service

import (
	"context"
	"time"

	"github.com/verinum/verinum-api/internal/models"
)

// Country is a normalized provider country entry.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// ServiceOffer is a normalized service price row for one country. Cost is in
// the provider's native currency, never pre-converted. A negative cost marks
// a row the adapter could not parse; normalization drops it as malformed.
type ServiceOffer struct {
	Service string  `json:"service"`
	Name    string  `json:"name"`
	Cost    float64 `json:"cost"`
	Count   int     `json:"count"`
}

// Order is a normalized activation order.
type Order struct {
	OrderID     string     `json:"orderId"`
	PhoneNumber string     `json:"phoneNumber"`
	Cost        float64    `json:"cost"`
	Status      string     `json:"status"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// SMSProviderClient is the capability set every provider adapter implements.
// Adapters are stateless translation layers over the upstream wire format and
// are safe to call concurrently.
type SMSProviderClient interface {
	// Code returns the provider code.
	Code() models.ProviderCode

	// ListCountries returns the provider's country directory. Decoding is
	// all-or-nothing: a transport or auth failure never yields partial data.
	ListCountries(ctx context.Context) ([]Country, error)

	// ListServices returns offers for one country with costs in the
	// provider's native currency. One malformed entry must not fail the
	// batch; counts coerce to >= 0.
	ListServices(ctx context.Context, country string) ([]ServiceOffer, error)

	// CreateOrder buys a number for a service in a country.
	CreateOrder(ctx context.Context, country, service string) (*Order, error)

	// GetCode polls for a received SMS code. Empty string means none yet.
	GetCode(ctx context.Context, orderID string) (string, error)

	// CancelOrder cancels a pending order.
	CancelOrder(ctx context.Context, orderID string) (bool, error)

	// GetBalance returns the native-currency balance, 0 when unsupported.
	GetBalance(ctx context.Context) (float64, error)

	// IsHealthy returns whether the provider is currently healthy.
	IsHealthy() bool
}

// ProviderRegistry holds the fixed set of registered provider adapters.
type ProviderRegistry struct {
	clients map[models.ProviderCode]SMSProviderClient
	order   []models.ProviderCode
}

// NewProviderRegistry creates an empty registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		clients: make(map[models.ProviderCode]SMSProviderClient),
	}
}

// Register adds a provider adapter. Registration order is preserved for
// stable iteration.
func (r *ProviderRegistry) Register(client SMSProviderClient) {
	code := client.Code()
	if _, exists := r.clients[code]; !exists {
		r.order = append(r.order, code)
	}
	r.clients[code] = client
}

// Get returns the adapter for a code, or nil when not registered.
func (r *ProviderRegistry) Get(code models.ProviderCode) SMSProviderClient {
	return r.clients[code]
}

// All returns the registered adapters in registration order.
func (r *ProviderRegistry) All() []SMSProviderClient {
	out := make([]SMSProviderClient, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.clients[code])
	}
	return out
}

// Codes returns the registered provider codes in registration order.
func (r *ProviderRegistry) Codes() []models.ProviderCode {
	out := make([]models.ProviderCode, len(r.order))
	copy(out, r.order)
	return out
}

// Len reports how many adapters are registered.
func (r *ProviderRegistry) Len() int {
	return len(r.clients)
}
