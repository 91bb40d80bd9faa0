package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/verinum/verinum-api/internal/config"
	"github.com/verinum/verinum-api/internal/models"
	"github.com/verinum/verinum-api/internal/utils"
)

// PriceStore is the persistence surface the refresh pipeline writes to.
type PriceStore interface {
	UpsertBatch(ctx context.Context, rows []models.ServiceCountryPrice) models.BatchResult
}

// CatalogStore receives provider reference catalogs.
type CatalogStore interface {
	UpsertCountries(ctx context.Context, provider models.ProviderCode, countries []models.ProviderCountry) models.BatchResult
	UpsertService(ctx context.Context, provider models.ProviderCode, service, name string) error
}

// RefreshService drives catalog refresh runs. Each run fans out over every
// (provider, country) pair, walks the pair through fetch, normalize, price
// and persist, and contains failures at the smallest scope that can absorb
// them: a bad row skips the row, a bad pair fails the pair, and only an
// empty registry fails the run.
type RefreshService struct {
	registry *ProviderRegistry
	fx       *FXResolver
	markup   *MarkupEngine
	store    PriceStore
	catalog  CatalogStore
	cfg      config.RefreshConfig
}

// NewRefreshService creates a new RefreshService.
func NewRefreshService(
	registry *ProviderRegistry,
	fx *FXResolver,
	markup *MarkupEngine,
	store PriceStore,
	catalog CatalogStore,
	cfg config.RefreshConfig,
) *RefreshService {
	return &RefreshService{
		registry: registry,
		fx:       fx,
		markup:   markup,
		store:    store,
		catalog:  catalog,
		cfg:      cfg,
	}
}

// Refresh runs one full refresh cycle over all registered providers and
// configured countries. It returns a report of every pair's outcome; the
// only fatal condition is an empty provider registry.
func (s *RefreshService) Refresh(ctx context.Context) (*models.RefreshReport, error) {
	if s.registry.Len() == 0 {
		return nil, utils.ErrNoProviders
	}

	report := &models.RefreshReport{StartedAt: time.Now().UTC()}

	// Rates are resolved once per provider per run so every row written in
	// this cycle carries the same quote.
	quotes := make(map[models.ProviderCode]FXQuote)
	quoteErrs := make(map[models.ProviderCode]error)
	for _, code := range s.registry.Codes() {
		quote, err := s.fx.Quote(code)
		if err != nil {
			quoteErrs[code] = err
			continue
		}
		quotes[code] = quote
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for _, client := range s.registry.All() {
		for _, country := range s.cfg.Countries {
			client, country := client, country
			g.Go(func() error {
				var pair models.PairReport
				select {
				case <-gctx.Done():
					pair = models.PairReport{
						Provider:    client.Code(),
						CountryCode: country,
						State:       models.PairFailed,
						FailReason:  gctx.Err().Error(),
					}
				default:
					pair = s.refreshPair(gctx, client, country, quotes, quoteErrs)
				}
				mu.Lock()
				report.Pairs = append(report.Pairs, pair)
				mu.Unlock()
				return nil
			})
		}
	}
	_ = g.Wait()

	report.FinishedAt = time.Now().UTC()
	for _, pair := range report.Pairs {
		report.Written += pair.Written
		report.Skipped += pair.Skipped
		if pair.State == models.PairFailed {
			report.Failed++
		}
	}

	log.Info().
		Int("pairs", len(report.Pairs)).
		Int("written", report.Written).
		Int("skipped", report.Skipped).
		Int("failedPairs", report.Failed).
		Dur("duration", report.FinishedAt.Sub(report.StartedAt)).
		Msg("Catalog refresh cycle finished")

	return report, nil
}

// refreshPair walks one (provider, country) pair through the pipeline.
func (s *RefreshService) refreshPair(
	ctx context.Context,
	client SMSProviderClient,
	country string,
	quotes map[models.ProviderCode]FXQuote,
	quoteErrs map[models.ProviderCode]error,
) models.PairReport {
	started := time.Now()
	pair := models.PairReport{
		Provider:    client.Code(),
		CountryCode: country,
		State:       models.PairPending,
	}

	fail := func(state models.PairState, err error) models.PairReport {
		pair.State = models.PairFailed
		pair.FailReason = fmt.Sprintf("%s: %v", state, err)
		pair.Duration = time.Since(started)
		pair.DurationMs = pair.Duration.Milliseconds()
		log.Warn().
			Str("provider", string(pair.Provider)).
			Str("country", country).
			Str("stage", string(state)).
			Err(err).
			Msg("Refresh pair failed")
		return pair
	}

	// Fetch
	pair.State = models.PairFetching
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
	offers, err := client.ListServices(fetchCtx, country)
	cancel()
	if err != nil {
		return fail(models.PairFetching, err)
	}

	// Normalize: drop rows the adapter could not parse, keep the rest.
	pair.State = models.PairNormalizing
	normalized := make([]ServiceOffer, 0, len(offers))
	for _, offer := range offers {
		if offer.Service == "" || offer.Cost < 0 {
			pair.Skipped++
			pair.Errors = append(pair.Errors, models.RowError{
				Service: offer.Service,
				Reason:  utils.ErrMalformedRow.Error(),
			})
			continue
		}
		if offer.Count < 0 {
			offer.Count = 0
		}
		normalized = append(normalized, offer)
	}

	// Price. A missing rate blocks every row of the pair equally, so it
	// fails the pair rather than flooding the report row by row.
	pair.State = models.PairPricing
	if qerr, ok := quoteErrs[client.Code()]; ok {
		return fail(models.PairPricing, qerr)
	}
	quote := quotes[client.Code()]
	rows := make([]models.ServiceCountryPrice, 0, len(normalized))
	for _, offer := range normalized {
		costNGN := quote.Convert(offer.Cost)
		row := models.ServiceCountryPrice{
			Provider:         client.Code(),
			Service:          offer.Service,
			ServiceName:      offer.Name,
			CountryCode:      country,
			Cost:             offer.Cost,
			Count:            offer.Count,
			ProviderCurrency: quote.NativeCurrency,
			DisplayPriceNGN:  s.markup.DisplayPrice(costNGN, client.Code()),
		}
		if quote.NativeUSD > 0 {
			nativeUSD := quote.NativeUSD
			row.FXRateNativeUSD = &nativeUSD
		}
		if quote.USDNGN > 0 {
			usdNGN := quote.USDNGN
			row.FXRateUSDNGN = &usdNGN
		}
		computedAt := quote.ComputedAt
		row.FXComputedAt = &computedAt
		rows = append(rows, row)
	}

	// Persist
	pair.State = models.PairPersisting
	result := s.store.UpsertBatch(ctx, rows)
	pair.Written = result.Written
	pair.Skipped += result.Skipped + len(result.Errors)
	pair.Errors = append(pair.Errors, result.Errors...)

	pair.State = models.PairDone
	pair.Duration = time.Since(started)
	pair.DurationMs = pair.Duration.Milliseconds()

	log.Debug().
		Str("provider", string(pair.Provider)).
		Str("country", country).
		Int("written", pair.Written).
		Int("skipped", pair.Skipped).
		Msg("Refresh pair done")

	return pair
}

// SyncCatalogs refreshes the provider country and service reference
// catalogs. Failures are per-provider: one unreachable upstream never
// blocks the others.
func (s *RefreshService) SyncCatalogs(ctx context.Context) error {
	if s.registry.Len() == 0 {
		return utils.ErrNoProviders
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for _, client := range s.registry.All() {
		client := client
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(gctx, s.cfg.ProviderTimeout)
			countries, err := client.ListCountries(fetchCtx)
			cancel()
			if err != nil {
				log.Warn().
					Str("provider", string(client.Code())).
					Err(err).
					Msg("Country catalog sync failed")
				return nil
			}

			entries := make([]models.ProviderCountry, 0, len(countries))
			for _, c := range countries {
				entries = append(entries, models.ProviderCountry{
					Provider:    client.Code(),
					CountryCode: c.Code,
					Name:        c.Name,
				})
			}
			result := s.catalog.UpsertCountries(gctx, client.Code(), entries)

			// Service names come from the offer listings of the configured
			// countries; providers have no standalone service directory.
			seen := make(map[string]bool)
			for _, country := range s.cfg.Countries {
				fetchCtx, cancel := context.WithTimeout(gctx, s.cfg.ProviderTimeout)
				offers, err := client.ListServices(fetchCtx, country)
				cancel()
				if err != nil {
					continue
				}
				for _, offer := range offers {
					if offer.Service == "" || seen[offer.Service] {
						continue
					}
					seen[offer.Service] = true
					name := offer.Name
					if name == "" {
						name = offer.Service
					}
					if err := s.catalog.UpsertService(gctx, client.Code(), offer.Service, name); err != nil {
						log.Error().
							Err(err).
							Str("provider", string(client.Code())).
							Str("service", offer.Service).
							Msg("Failed to upsert provider service")
					}
				}
			}

			log.Info().
				Str("provider", string(client.Code())).
				Int("countries", result.Written).
				Int("services", len(seen)).
				Msg("Reference catalog synced")
			return nil
		})
	}
	return g.Wait()
}

// Balances polls every registered provider for its native-currency balance.
func (s *RefreshService) Balances(ctx context.Context) []models.ProviderBalance {
	balances := make([]models.ProviderBalance, 0, s.registry.Len())
	for _, client := range s.registry.All() {
		fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.ProviderTimeout)
		amount, err := client.GetBalance(fetchCtx)
		cancel()

		balance := models.ProviderBalance{
			Provider: client.Code(),
			Currency: s.fx.NativeCurrency(client.Code()),
			Healthy:  client.IsHealthy(),
		}
		if err != nil {
			balance.Healthy = false
			log.Warn().
				Str("provider", string(client.Code())).
				Err(err).
				Msg("Balance check failed")
		} else {
			balance.Balance = amount
		}
		balances = append(balances, balance)
	}
	return balances
}
