package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/verinum/verinum-api/internal/cache"
	"github.com/verinum/verinum-api/internal/config"
	"github.com/verinum/verinum-api/internal/models"
	"github.com/verinum/verinum-api/internal/repository"
	"github.com/verinum/verinum-api/internal/utils"
)

// PriceService answers catalog queries. Best-price lookups go through the
// Redis cache first; every cache failure degrades to a database read.
type PriceService struct {
	repo        *repository.PriceRepository
	catalogRepo *repository.CatalogRepository
	priceCache  *cache.PriceCache
	staleWindow time.Duration
}

// NewPriceService creates a new PriceService.
func NewPriceService(
	repo *repository.PriceRepository,
	catalogRepo *repository.CatalogRepository,
	priceCache *cache.PriceCache,
	cfg config.RefreshConfig,
) *PriceService {
	return &PriceService{
		repo:        repo,
		catalogRepo: catalogRepo,
		priceCache:  priceCache,
		staleWindow: cfg.StaleWindow,
	}
}

// Best returns the cheapest fresh offer for a service, optionally pinned to
// one country. Freshness is bounded by the stale window: rows a provider has
// stopped listing age out of eligibility without being deleted.
func (s *PriceService) Best(ctx context.Context, service, country string) (*models.ServiceCountryPrice, error) {
	if s.priceCache != nil {
		if row, err := s.priceCache.GetBest(ctx, service, country); err == nil {
			return row, nil
		}
	}

	row, err := s.repo.BestPrice(ctx, service, country, s.staleWindow)
	if err != nil {
		if repository.IsNoRows(err) {
			return nil, utils.ErrNoOffer
		}
		return nil, err
	}

	if s.priceCache != nil {
		if err := s.priceCache.SetBest(ctx, service, country, row); err != nil {
			log.Debug().Err(err).Str("service", service).Msg("Best-price cache write failed")
		}
	}
	return row, nil
}

// Compare returns every fresh offer for a service across providers,
// cheapest first.
func (s *PriceService) Compare(ctx context.Context, service, country string) ([]models.ServiceCountryPrice, error) {
	return s.repo.ListForService(ctx, service, country, s.staleWindow)
}

// List returns fresh catalog rows with optional filters.
func (s *PriceService) List(ctx context.Context, provider, country, service string) ([]models.ServiceCountryPrice, error) {
	return s.repo.List(ctx, provider, country, service, s.staleWindow)
}

// Stale returns rows not seen within the stale window, oldest first.
func (s *PriceService) Stale(ctx context.Context) ([]models.ServiceCountryPrice, error) {
	return s.repo.StaleBefore(ctx, time.Now().Add(-s.staleWindow))
}

// Countries returns the synced country reference catalog.
func (s *PriceService) Countries(ctx context.Context, provider string) ([]models.ProviderCountry, error) {
	return s.catalogRepo.ListCountries(ctx, provider)
}

// Services returns the synced service name catalog.
func (s *PriceService) Services(ctx context.Context, provider string) ([]models.ProviderService, error) {
	return s.catalogRepo.ListServices(ctx, provider)
}
