package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/verinum/verinum-api/internal/models"
	"github.com/verinum/verinum-api/internal/repository"
	"github.com/verinum/verinum-api/internal/utils"
)

// BestPriceFinder resolves the cheapest current offer for a service.
type BestPriceFinder interface {
	Best(ctx context.Context, service, country string) (*models.ServiceCountryPrice, error)
}

// OrderStore is the persistence surface for number orders.
type OrderStore interface {
	Create(ctx context.Context, order *models.NumberOrder) error
	GetByReferenceID(ctx context.Context, referenceID string) (*models.NumberOrder, error)
	UpdateStatus(ctx context.Context, id int, status models.OrderStatus) error
	SetCode(ctx context.Context, id int, code string) error
	List(ctx context.Context, limit int) ([]models.NumberOrder, error)
}

// OrderService buys numbers against the catalog's best price and tracks
// them until a code arrives or the order is cancelled. The customer is
// always charged the display price the catalog advertised, regardless of
// what the provider charged upstream.
type OrderService struct {
	registry *ProviderRegistry
	prices   BestPriceFinder
	orders   OrderStore
}

// NewOrderService creates a new OrderService.
func NewOrderService(registry *ProviderRegistry, prices BestPriceFinder, orders OrderStore) *OrderService {
	return &OrderService{
		registry: registry,
		prices:   prices,
		orders:   orders,
	}
}

// PlaceOrder buys a number for a service, routed to the cheapest fresh
// offer. An explicit country pins the purchase; empty means any country.
func (s *OrderService) PlaceOrder(ctx context.Context, service, country string) (*models.NumberOrder, error) {
	offer, err := s.prices.Best(ctx, service, country)
	if err != nil {
		return nil, err
	}

	client := s.registry.Get(offer.Provider)
	if client == nil {
		return nil, fmt.Errorf("%w: %s", utils.ErrUnknownProvider, offer.Provider)
	}

	providerOrder, err := client.CreateOrder(ctx, offer.CountryCode, offer.Service)
	if err != nil {
		return nil, err
	}

	order := &models.NumberOrder{
		ReferenceID:     uuid.New().String(),
		Provider:        offer.Provider,
		Service:         offer.Service,
		CountryCode:     offer.CountryCode,
		ProviderOrderID: providerOrder.OrderID,
		PhoneNumber:     providerOrder.PhoneNumber,
		PriceNGN:        offer.DisplayPriceNGN,
		Status:          models.OrderPending,
		ExpiresAt:       providerOrder.ExpiresAt,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		// The upstream purchase went through; release the number so the
		// deposit is not burned on an order we cannot track.
		if _, cancelErr := client.CancelOrder(ctx, providerOrder.OrderID); cancelErr != nil {
			log.Error().
				Err(cancelErr).
				Str("provider", string(offer.Provider)).
				Str("providerOrderId", providerOrder.OrderID).
				Msg("Failed to release number after order persist failure")
		}
		return nil, fmt.Errorf("%w: %v", utils.ErrPersistence, err)
	}

	log.Info().
		Str("referenceId", order.ReferenceID).
		Str("provider", string(order.Provider)).
		Str("service", order.Service).
		Str("country", order.CountryCode).
		Float64("priceNgn", order.PriceNGN).
		Msg("Number order placed")

	return order, nil
}

// GetOrder returns an order by reference. Pending orders poll the provider
// for a code first, so a received SMS is visible on the read that finds it.
func (s *OrderService) GetOrder(ctx context.Context, referenceID string) (*models.NumberOrder, error) {
	order, err := s.orders.GetByReferenceID(ctx, referenceID)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, utils.ErrOrderNotFound
		}
		return nil, err
	}

	if order.Status != models.OrderPending {
		return order, nil
	}

	client := s.registry.Get(order.Provider)
	if client == nil {
		return order, nil
	}

	code, err := client.GetCode(ctx, order.ProviderOrderID)
	if err != nil {
		log.Warn().
			Err(err).
			Str("referenceId", order.ReferenceID).
			Msg("Code poll failed")
		return order, nil
	}
	if code == "" {
		return order, nil
	}

	if err := s.orders.SetCode(ctx, order.ID, code); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrPersistence, err)
	}
	order.SMSCode = &code
	order.Status = models.OrderReceived
	return order, nil
}

// CancelOrder cancels a pending order upstream and locally.
func (s *OrderService) CancelOrder(ctx context.Context, referenceID string) (*models.NumberOrder, error) {
	order, err := s.orders.GetByReferenceID(ctx, referenceID)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, utils.ErrOrderNotFound
		}
		return nil, err
	}

	if order.Status != models.OrderPending {
		return order, nil
	}

	client := s.registry.Get(order.Provider)
	if client != nil {
		if _, err := client.CancelOrder(ctx, order.ProviderOrderID); err != nil {
			return nil, err
		}
	}

	if err := s.orders.UpdateStatus(ctx, order.ID, models.OrderCancelled); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrPersistence, err)
	}
	order.Status = models.OrderCancelled
	return order, nil
}

// ListOrders returns recent orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, limit int) ([]models.NumberOrder, error) {
	return s.orders.List(ctx, limit)
}
