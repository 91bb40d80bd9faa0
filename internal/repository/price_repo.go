package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/verinum/verinum-api/internal/models"
)

// PriceRepository is the catalog store for priced (provider, service,
// country) rows. The unique index on that triple makes upserts idempotent
// and serializes concurrent writers per row: the last complete write wins,
// never a partial merge.
type PriceRepository struct {
	db *sqlx.DB
}

// NewPriceRepository creates a new PriceRepository.
func NewPriceRepository(db *sqlx.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// Upsert writes one catalog row, overwriting every pricing and freshness
// field when the row already exists. Identity fields never change.
func (r *PriceRepository) Upsert(ctx context.Context, row *models.ServiceCountryPrice) error {
	const q = `
        INSERT INTO service_country_prices
            (provider, service, service_name, country_code, cost, count,
             provider_currency, display_price_ngn,
             fx_rate_native_usd, fx_rate_usd_ngn, fx_computed_at, last_seen_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
        ON CONFLICT (provider, service, country_code) DO UPDATE SET
            service_name = EXCLUDED.service_name,
            cost = EXCLUDED.cost,
            count = EXCLUDED.count,
            provider_currency = EXCLUDED.provider_currency,
            display_price_ngn = EXCLUDED.display_price_ngn,
            fx_rate_native_usd = EXCLUDED.fx_rate_native_usd,
            fx_rate_usd_ngn = EXCLUDED.fx_rate_usd_ngn,
            fx_computed_at = EXCLUDED.fx_computed_at,
            last_seen_at = NOW(),
            updated_at = NOW()`

	_, err := r.db.ExecContext(ctx, q,
		row.Provider,
		row.Service,
		row.ServiceName,
		row.CountryCode,
		row.Cost,
		row.Count,
		row.ProviderCurrency,
		row.DisplayPriceNGN,
		row.FXRateNativeUSD,
		row.FXRateUSDNGN,
		row.FXComputedAt,
	)
	return err
}

// UpsertBatch writes a batch of rows for one (provider, country) pair.
// A failing row is logged and reported, never fatal to the batch; rows
// already written stay written. Ingestion is at-least-once by design.
func (r *PriceRepository) UpsertBatch(ctx context.Context, rows []models.ServiceCountryPrice) models.BatchResult {
	var result models.BatchResult
	for i := range rows {
		if err := r.Upsert(ctx, &rows[i]); err != nil {
			log.Error().
				Err(err).
				Str("provider", string(rows[i].Provider)).
				Str("service", rows[i].Service).
				Str("country", rows[i].CountryCode).
				Msg("Failed to upsert price row")
			result.Errors = append(result.Errors, models.RowError{
				Service: rows[i].Service,
				Reason:  err.Error(),
			})
			continue
		}
		result.Written++
	}
	return result
}

// Get returns one row by its identity triple.
func (r *PriceRepository) Get(ctx context.Context, provider models.ProviderCode, service, country string) (*models.ServiceCountryPrice, error) {
	const q = `
        SELECT * FROM service_country_prices
        WHERE provider = $1 AND service = $2 AND country_code = $3
        LIMIT 1`

	var row models.ServiceCountryPrice
	if err := r.db.GetContext(ctx, &row, q, provider, service, country); err != nil {
		return nil, err
	}
	return &row, nil
}

// BestPrice returns the cheapest fresh row with stock for a service,
// optionally pinned to one country. sql.ErrNoRows means no current offer.
func (r *PriceRepository) BestPrice(ctx context.Context, service, country string, window time.Duration) (*models.ServiceCountryPrice, error) {
	const q = `
        SELECT * FROM service_country_prices
        WHERE service = $1
        AND ($2 = '' OR country_code = $2)
        AND count > 0
        AND last_seen_at >= NOW() - $3::interval
        ORDER BY display_price_ngn ASC, provider ASC
        LIMIT 1`

	var row models.ServiceCountryPrice
	if err := r.db.GetContext(ctx, &row, q, service, country, window.String()); err != nil {
		return nil, err
	}
	return &row, nil
}

// ListForService returns all fresh rows for a service across providers,
// cheapest first, optionally pinned to one country.
func (r *PriceRepository) ListForService(ctx context.Context, service, country string, window time.Duration) ([]models.ServiceCountryPrice, error) {
	const q = `
        SELECT * FROM service_country_prices
        WHERE service = $1
        AND ($2 = '' OR country_code = $2)
        AND last_seen_at >= NOW() - $3::interval
        ORDER BY display_price_ngn ASC, provider ASC`

	var rows []models.ServiceCountryPrice
	if err := r.db.SelectContext(ctx, &rows, q, service, country, window.String()); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByProvider returns every row a provider has ever offered.
func (r *PriceRepository) ListByProvider(ctx context.Context, provider models.ProviderCode) ([]models.ServiceCountryPrice, error) {
	const q = `
        SELECT * FROM service_country_prices
        WHERE provider = $1
        ORDER BY country_code, service`

	var rows []models.ServiceCountryPrice
	if err := r.db.SelectContext(ctx, &rows, q, provider); err != nil {
		return nil, err
	}
	return rows, nil
}

// List returns fresh rows with optional provider/country/service filters,
// cheapest first. Empty filters are ignored.
func (r *PriceRepository) List(ctx context.Context, provider, country, service string, window time.Duration) ([]models.ServiceCountryPrice, error) {
	const q = `
        SELECT * FROM service_country_prices
        WHERE ($1 = '' OR provider = $1)
        AND ($2 = '' OR country_code = $2)
        AND ($3 = '' OR service = $3)
        AND last_seen_at >= NOW() - $4::interval
        ORDER BY service, display_price_ngn ASC`

	var rows []models.ServiceCountryPrice
	if err := r.db.SelectContext(ctx, &rows, q, provider, country, service, window.String()); err != nil {
		return nil, err
	}
	return rows, nil
}

// StaleBefore returns rows last seen before t. Stale rows are an audit
// signal, not deletion candidates: normal operation never removes rows.
func (r *PriceRepository) StaleBefore(ctx context.Context, t time.Time) ([]models.ServiceCountryPrice, error) {
	const q = `
        SELECT * FROM service_country_prices
        WHERE last_seen_at < $1
        ORDER BY last_seen_at ASC`

	var rows []models.ServiceCountryPrice
	if err := r.db.SelectContext(ctx, &rows, q, t); err != nil {
		return nil, err
	}
	return rows, nil
}

// IsNoRows reports whether err is the driver's empty-result sentinel.
func IsNoRows(err error) bool {
	return err == sql.ErrNoRows
}
