package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/verinum/verinum-api/internal/models"
)

// CatalogRepository handles the provider-scoped country and service
// reference catalogs. Pure name lookups, no pricing attached.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// UpsertCountry writes one provider country entry.
func (r *CatalogRepository) UpsertCountry(ctx context.Context, provider models.ProviderCode, code, name string) error {
	const q = `
        INSERT INTO provider_countries (provider, country_code, name)
        VALUES ($1, $2, $3)
        ON CONFLICT (provider, country_code) DO UPDATE SET
            name = EXCLUDED.name,
            updated_at = NOW()`

	_, err := r.db.ExecContext(ctx, q, provider, code, name)
	return err
}

// UpsertCountries writes a provider's country directory, continuing past
// per-row failures.
func (r *CatalogRepository) UpsertCountries(ctx context.Context, provider models.ProviderCode, countries []models.ProviderCountry) models.BatchResult {
	var result models.BatchResult
	for _, c := range countries {
		if err := r.UpsertCountry(ctx, provider, c.CountryCode, c.Name); err != nil {
			log.Error().
				Err(err).
				Str("provider", string(provider)).
				Str("country", c.CountryCode).
				Msg("Failed to upsert provider country")
			result.Errors = append(result.Errors, models.RowError{Service: c.CountryCode, Reason: err.Error()})
			continue
		}
		result.Written++
	}
	return result
}

// UpsertService writes one provider service entry.
func (r *CatalogRepository) UpsertService(ctx context.Context, provider models.ProviderCode, service, name string) error {
	const q = `
        INSERT INTO provider_services (provider, service, name)
        VALUES ($1, $2, $3)
        ON CONFLICT (provider, service) DO UPDATE SET
            name = EXCLUDED.name,
            updated_at = NOW()`

	_, err := r.db.ExecContext(ctx, q, provider, service, name)
	return err
}

// ListCountries returns countries, optionally for one provider.
func (r *CatalogRepository) ListCountries(ctx context.Context, provider string) ([]models.ProviderCountry, error) {
	const q = `
        SELECT * FROM provider_countries
        WHERE ($1 = '' OR provider = $1)
        ORDER BY provider, country_code`

	var countries []models.ProviderCountry
	if err := r.db.SelectContext(ctx, &countries, q, provider); err != nil {
		return nil, err
	}
	return countries, nil
}

// ListServices returns service name mappings, optionally for one provider.
func (r *CatalogRepository) ListServices(ctx context.Context, provider string) ([]models.ProviderService, error) {
	const q = `
        SELECT * FROM provider_services
        WHERE ($1 = '' OR provider = $1)
        ORDER BY provider, service`

	var services []models.ProviderService
	if err := r.db.SelectContext(ctx, &services, q, provider); err != nil {
		return nil, err
	}
	return services, nil
}
