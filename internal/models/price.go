package models

import "time"

// ServiceCountryPrice is a priced catalog row, unique per
// (provider, service, country_code). Rows are overwritten on re-ingest and
// never deleted; a row whose last_seen_at falls outside the refresh window is
// stale rather than gone, so callers can tell "no current offer" from
// "never offered".
type ServiceCountryPrice struct {
	ID               int          `db:"id" json:"id"`
	Provider         ProviderCode `db:"provider" json:"provider"`
	Service          string       `db:"service" json:"service"`
	ServiceName      string       `db:"service_name" json:"serviceName"`
	CountryCode      string       `db:"country_code" json:"countryCode"`
	Cost             float64      `db:"cost" json:"cost"`
	Count            int          `db:"count" json:"count"`
	ProviderCurrency string       `db:"provider_currency" json:"providerCurrency"`
	DisplayPriceNGN  float64      `db:"display_price_ngn" json:"displayPriceNgn"`
	FXRateNativeUSD  *float64     `db:"fx_rate_native_usd" json:"fxRateNativeUsd,omitempty"`
	FXRateUSDNGN     *float64     `db:"fx_rate_usd_ngn" json:"fxRateUsdNgn,omitempty"`
	FXComputedAt     *time.Time   `db:"fx_computed_at" json:"fxComputedAt,omitempty"`
	LastSeenAt       time.Time    `db:"last_seen_at" json:"lastSeenAt"`
	CreatedAt        time.Time    `db:"created_at" json:"-"`
	UpdatedAt        time.Time    `db:"updated_at" json:"updatedAt"`
}

// ProviderCountry is provider-scoped country reference data.
type ProviderCountry struct {
	ID          int          `db:"id" json:"id"`
	Provider    ProviderCode `db:"provider" json:"provider"`
	CountryCode string       `db:"country_code" json:"countryCode"`
	Name        string       `db:"name" json:"name"`
	CreatedAt   time.Time    `db:"created_at" json:"-"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updatedAt"`
}

// ProviderService is provider-scoped service reference data.
type ProviderService struct {
	ID        int          `db:"id" json:"id"`
	Provider  ProviderCode `db:"provider" json:"provider"`
	Service   string       `db:"service" json:"service"`
	Name      string       `db:"name" json:"name"`
	CreatedAt time.Time    `db:"created_at" json:"-"`
	UpdatedAt time.Time    `db:"updated_at" json:"updatedAt"`
}

// PairState tracks a (provider, country) refresh through its pipeline.
type PairState string

const (
	PairPending     PairState = "pending"
	PairFetching    PairState = "fetching"
	PairNormalizing PairState = "normalizing"
	PairPricing     PairState = "pricing"
	PairPersisting  PairState = "persisting"
	PairDone        PairState = "done"
	PairFailed      PairState = "failed"
)

// RowError records a single skipped or failed row within a batch.
type RowError struct {
	Service string `json:"service"`
	Reason  string `json:"reason"`
}

// BatchResult aggregates per-row outcomes of one catalog upsert batch.
// Row failures are reported here instead of aborting the batch.
type BatchResult struct {
	Written int        `json:"written"`
	Skipped int        `json:"skipped"`
	Errors  []RowError `json:"errors,omitempty"`
}

// Merge folds another result into this one.
func (b *BatchResult) Merge(other BatchResult) {
	b.Written += other.Written
	b.Skipped += other.Skipped
	b.Errors = append(b.Errors, other.Errors...)
}

// PairReport is the outcome of one (provider, country) refresh pair.
type PairReport struct {
	Provider    ProviderCode  `json:"provider"`
	CountryCode string        `json:"countryCode"`
	State       PairState     `json:"state"`
	Written     int           `json:"written"`
	Skipped     int           `json:"skipped"`
	Errors      []RowError    `json:"errors,omitempty"`
	FailReason  string        `json:"failReason,omitempty"`
	Duration    time.Duration `json:"-"`
	DurationMs  int64         `json:"durationMs"`
}

// RefreshReport is the outcome of a whole refresh run.
type RefreshReport struct {
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt time.Time    `json:"finishedAt"`
	Pairs      []PairReport `json:"pairs"`
	Written    int          `json:"written"`
	Skipped    int          `json:"skipped"`
	Failed     int          `json:"failedPairs"`
}
