package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verinum/verinum-api/internal/config"
	"github.com/verinum/verinum-api/internal/models"
	"github.com/verinum/verinum-api/internal/utils"
)

// fakeAdapter is an in-memory SMSProviderClient for orchestration tests.
type fakeAdapter struct {
	code      models.ProviderCode
	countries []Country
	offers    map[string][]ServiceOffer
	listErr   error
}

func (f *fakeAdapter) Code() models.ProviderCode { return f.code }

func (f *fakeAdapter) ListCountries(ctx context.Context) ([]Country, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.countries, nil
}

func (f *fakeAdapter) ListServices(ctx context.Context, country string) ([]ServiceOffer, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.offers[country], nil
}

func (f *fakeAdapter) CreateOrder(ctx context.Context, country, service string) (*Order, error) {
	return &Order{OrderID: "1", PhoneNumber: "+2348000000000"}, nil
}

func (f *fakeAdapter) GetCode(ctx context.Context, orderID string) (string, error) {
	return "", nil
}

func (f *fakeAdapter) CancelOrder(ctx context.Context, orderID string) (bool, error) {
	return true, nil
}

func (f *fakeAdapter) GetBalance(ctx context.Context) (float64, error) { return 0, nil }

func (f *fakeAdapter) IsHealthy() bool { return f.listErr == nil }

// fakePriceStore keeps rows keyed by identity triple, like the unique index
// does in Postgres.
type fakePriceStore struct {
	mu      sync.Mutex
	rows    map[string]models.ServiceCountryPrice
	writes  int
	failFor map[string]bool
}

func newFakePriceStore() *fakePriceStore {
	return &fakePriceStore{
		rows:    make(map[string]models.ServiceCountryPrice),
		failFor: make(map[string]bool),
	}
}

func storeKey(provider models.ProviderCode, service, country string) string {
	return fmt.Sprintf("%s|%s|%s", provider, service, country)
}

func (s *fakePriceStore) UpsertBatch(ctx context.Context, rows []models.ServiceCountryPrice) models.BatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result models.BatchResult
	for _, row := range rows {
		key := storeKey(row.Provider, row.Service, row.CountryCode)
		if s.failFor[key] {
			result.Errors = append(result.Errors, models.RowError{Service: row.Service, Reason: "write failed"})
			continue
		}
		s.rows[key] = row
		s.writes++
		result.Written++
	}
	return result
}

func (s *fakePriceStore) get(provider models.ProviderCode, service, country string) (models.ServiceCountryPrice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[storeKey(provider, service, country)]
	return row, ok
}

func (s *fakePriceStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// fakeCatalogStore records reference catalog writes.
type fakeCatalogStore struct {
	mu        sync.Mutex
	countries map[string]string
	services  map[string]string
}

func newFakeCatalogStore() *fakeCatalogStore {
	return &fakeCatalogStore{
		countries: make(map[string]string),
		services:  make(map[string]string),
	}
}

func (s *fakeCatalogStore) UpsertCountries(ctx context.Context, provider models.ProviderCode, countries []models.ProviderCountry) models.BatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result models.BatchResult
	for _, c := range countries {
		s.countries[string(provider)+"|"+c.CountryCode] = c.Name
		result.Written++
	}
	return result
}

func (s *fakeCatalogStore) UpsertService(ctx context.Context, provider models.ProviderCode, service, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[string(provider)+"|"+service] = name
	return nil
}

func testRefreshConfig(countries ...string) config.RefreshConfig {
	return config.RefreshConfig{
		Countries:       countries,
		Concurrency:     2,
		ProviderTimeout: time.Second,
		StaleWindow:     30 * time.Minute,
	}
}

func testFXConfig() config.FXConfig {
	return config.FXConfig{
		USDNGN:    1600,
		NativeUSD: map[string]float64{"USD": 1, "RUB": 0.011},
		ProviderCurrency: map[string]string{
			"smslive":  "USD",
			"fivesim":  "RUB",
			"daisysms": "USD",
		},
	}
}

func newTestRefreshService(store *fakePriceStore, catalog *fakeCatalogStore, cfg config.RefreshConfig, adapters ...SMSProviderClient) *RefreshService {
	registry := NewProviderRegistry()
	for _, a := range adapters {
		registry.Register(a)
	}
	return NewRefreshService(
		registry,
		NewFXResolver(testFXConfig()),
		NewMarkupEngine(config.MarkupConfig{GlobalPercent: 10, SurchargeNGN: 700}),
		store,
		catalog,
		cfg,
	)
}

func TestRefreshEndToEndPricing(t *testing.T) {
	store := newFakePriceStore()
	adapter := &fakeAdapter{
		code: models.ProviderSMSLive,
		offers: map[string][]ServiceOffer{
			"NG": {{Service: "wa", Name: "WhatsApp", Cost: 10, Count: 5}},
		},
	}
	svc := newTestRefreshService(store, newFakeCatalogStore(), testRefreshConfig("NG"), adapter)

	report, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Written)
	assert.Equal(t, 0, report.Failed)

	row, ok := store.get(models.ProviderSMSLive, "wa", "NG")
	require.True(t, ok)
	assert.Equal(t, "WhatsApp", row.ServiceName)
	assert.Equal(t, 10.0, row.Cost)
	assert.Equal(t, 5, row.Count)
	assert.Equal(t, "USD", row.ProviderCurrency)
	// 10 USD * 1600 NGN/USD * 1.10 + 700
	assert.InDelta(t, 18300, row.DisplayPriceNGN, 0.001)
	require.NotNil(t, row.FXRateUSDNGN)
	assert.Equal(t, 1600.0, *row.FXRateUSDNGN)
	require.NotNil(t, row.FXComputedAt)
}

func TestRefreshPartialFailureContainment(t *testing.T) {
	store := newFakePriceStore()
	broken := &fakeAdapter{
		code:    models.ProviderFiveSim,
		listErr: fmt.Errorf("%w: connection refused", utils.ErrProviderUnavailable),
	}
	healthy := &fakeAdapter{
		code: models.ProviderSMSLive,
		offers: map[string][]ServiceOffer{
			"NG": {{Service: "tg", Name: "Telegram", Cost: 2, Count: 9}},
			"US": {{Service: "tg", Name: "Telegram", Cost: 3, Count: 4}},
		},
	}
	svc := newTestRefreshService(store, newFakeCatalogStore(), testRefreshConfig("NG", "US"), healthy, broken)

	report, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, len(report.Pairs))
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, 2, report.Written)

	_, ok := store.get(models.ProviderSMSLive, "tg", "NG")
	assert.True(t, ok)
	_, ok = store.get(models.ProviderSMSLive, "tg", "US")
	assert.True(t, ok)

	for _, pair := range report.Pairs {
		if pair.Provider == models.ProviderFiveSim {
			assert.Equal(t, models.PairFailed, pair.State)
			assert.Contains(t, pair.FailReason, string(models.PairFetching))
		} else {
			assert.Equal(t, models.PairDone, pair.State)
		}
	}
}

func TestRefreshMalformedRowIsolation(t *testing.T) {
	store := newFakePriceStore()
	adapter := &fakeAdapter{
		code: models.ProviderSMSLive,
		offers: map[string][]ServiceOffer{
			"NG": {
				{Service: "wa", Name: "WhatsApp", Cost: 10, Count: 5},
				{Service: "", Cost: 3, Count: 2},             // missing service code
				{Service: "ig", Name: "Instagram", Cost: -1}, // unparsable cost
				{Service: "tg", Name: "Telegram", Cost: 4, Count: -7},
			},
		},
	}
	svc := newTestRefreshService(store, newFakeCatalogStore(), testRefreshConfig("NG"), adapter)

	report, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	// Two malformed rows dropped, the other two written.
	assert.Equal(t, 2, report.Written)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 0, report.Failed)

	// Negative count clamps to zero instead of failing the row.
	row, ok := store.get(models.ProviderSMSLive, "tg", "NG")
	require.True(t, ok)
	assert.Equal(t, 0, row.Count)

	_, ok = store.get(models.ProviderSMSLive, "ig", "NG")
	assert.False(t, ok)
}

func TestRefreshIdempotent(t *testing.T) {
	store := newFakePriceStore()
	adapter := &fakeAdapter{
		code: models.ProviderSMSLive,
		offers: map[string][]ServiceOffer{
			"NG": {
				{Service: "wa", Name: "WhatsApp", Cost: 10, Count: 5},
				{Service: "tg", Name: "Telegram", Cost: 4, Count: 3},
			},
		},
	}
	svc := newTestRefreshService(store, newFakeCatalogStore(), testRefreshConfig("NG"), adapter)

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	first, _ := store.get(models.ProviderSMSLive, "wa", "NG")

	_, err = svc.Refresh(context.Background())
	require.NoError(t, err)

	// Same identities overwrite in place: row count stays put, prices match.
	assert.Equal(t, 2, store.size())
	second, _ := store.get(models.ProviderSMSLive, "wa", "NG")
	assert.Equal(t, first.DisplayPriceNGN, second.DisplayPriceNGN)
	assert.Equal(t, first.Cost, second.Cost)
}

func TestRefreshKeepsUnseenRows(t *testing.T) {
	store := newFakePriceStore()
	adapter := &fakeAdapter{
		code: models.ProviderSMSLive,
		offers: map[string][]ServiceOffer{
			"NG": {
				{Service: "wa", Name: "WhatsApp", Cost: 10, Count: 5},
				{Service: "tg", Name: "Telegram", Cost: 4, Count: 3},
			},
		},
	}
	svc := newTestRefreshService(store, newFakeCatalogStore(), testRefreshConfig("NG"), adapter)

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, store.size())

	// Provider stops listing tg; the old row must survive untouched.
	adapter.offers["NG"] = []ServiceOffer{{Service: "wa", Name: "WhatsApp", Cost: 12, Count: 5}}
	_, err = svc.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, store.size())
	old, ok := store.get(models.ProviderSMSLive, "tg", "NG")
	require.True(t, ok)
	assert.Equal(t, 4.0, old.Cost)

	updated, _ := store.get(models.ProviderSMSLive, "wa", "NG")
	assert.Equal(t, 12.0, updated.Cost)
}

func TestRefreshRowWriteFailureDoesNotAbortBatch(t *testing.T) {
	store := newFakePriceStore()
	store.failFor[storeKey(models.ProviderSMSLive, "wa", "NG")] = true
	adapter := &fakeAdapter{
		code: models.ProviderSMSLive,
		offers: map[string][]ServiceOffer{
			"NG": {
				{Service: "wa", Name: "WhatsApp", Cost: 10, Count: 5},
				{Service: "tg", Name: "Telegram", Cost: 4, Count: 3},
			},
		},
	}
	svc := newTestRefreshService(store, newFakeCatalogStore(), testRefreshConfig("NG"), adapter)

	report, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Written)
	assert.Equal(t, 0, report.Failed)
	require.Len(t, report.Pairs, 1)
	assert.Equal(t, models.PairDone, report.Pairs[0].State)

	_, ok := store.get(models.ProviderSMSLive, "tg", "NG")
	assert.True(t, ok)
}

func TestRefreshRateUnavailableFailsPair(t *testing.T) {
	store := newFakePriceStore()
	registry := NewProviderRegistry()
	registry.Register(&fakeAdapter{
		code: models.ProviderFiveSim,
		offers: map[string][]ServiceOffer{
			"NG": {{Service: "wa", Cost: 100, Count: 1}},
		},
	})

	// No RUB rate configured for the RUB-native provider.
	svc := NewRefreshService(
		registry,
		NewFXResolver(config.FXConfig{
			USDNGN:           1600,
			NativeUSD:        map[string]float64{"USD": 1},
			ProviderCurrency: map[string]string{"fivesim": "RUB"},
		}),
		NewMarkupEngine(config.MarkupConfig{GlobalPercent: 10}),
		store,
		newFakeCatalogStore(),
		testRefreshConfig("NG"),
	)

	report, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Pairs, 1)
	assert.Equal(t, models.PairFailed, report.Pairs[0].State)
	assert.Contains(t, report.Pairs[0].FailReason, utils.ErrRateUnavailable.Error())

	// Nothing is ever written at a made-up price.
	assert.Equal(t, 0, store.size())
}

func TestRefreshNoProviders(t *testing.T) {
	svc := newTestRefreshService(newFakePriceStore(), newFakeCatalogStore(), testRefreshConfig("NG"))

	_, err := svc.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrNoProviders))
}

func TestSyncCatalogs(t *testing.T) {
	catalog := newFakeCatalogStore()
	adapter := &fakeAdapter{
		code: models.ProviderSMSLive,
		countries: []Country{
			{Code: "NG", Name: "Nigeria"},
			{Code: "US", Name: "United States"},
		},
		offers: map[string][]ServiceOffer{
			"NG": {{Service: "wa", Name: "WhatsApp", Cost: 10, Count: 5}},
		},
	}
	svc := newTestRefreshService(newFakePriceStore(), catalog, testRefreshConfig("NG"), adapter)

	require.NoError(t, svc.SyncCatalogs(context.Background()))

	assert.Equal(t, "Nigeria", catalog.countries["smslive|NG"])
	assert.Equal(t, "United States", catalog.countries["smslive|US"])
	assert.Equal(t, "WhatsApp", catalog.services["smslive|wa"])
}
