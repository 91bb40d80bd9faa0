package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verinum/verinum-api/internal/models"
)

// testDB connects using TEST_DATABASE_URL, skipping when unset so the suite
// stays runnable without a database.
func testDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.MustExec(`DELETE FROM service_country_prices WHERE provider = 'smslive' AND service LIKE 'it_%'`)
		db.Close()
	})
	return db
}

func testRow(service string, cost float64) *models.ServiceCountryPrice {
	usdNGN := 1600.0
	nativeUSD := 1.0
	now := time.Now().UTC()
	return &models.ServiceCountryPrice{
		Provider:         models.ProviderSMSLive,
		Service:          service,
		ServiceName:      "Integration " + service,
		CountryCode:      "NG",
		Cost:             cost,
		Count:            10,
		ProviderCurrency: "USD",
		DisplayPriceNGN:  cost*usdNGN*1.10 + 700,
		FXRateNativeUSD:  &nativeUSD,
		FXRateUSDNGN:     &usdNGN,
		FXComputedAt:     &now,
	}
}

func TestUpsertIdempotent(t *testing.T) {
	db := testDB(t)
	repo := NewPriceRepository(db)
	ctx := context.Background()

	row := testRow("it_wa", 10)
	require.NoError(t, repo.Upsert(ctx, row))

	first, err := repo.Get(ctx, models.ProviderSMSLive, "it_wa", "NG")
	require.NoError(t, err)

	// Same identity with new pricing overwrites in place.
	row.Cost = 12
	row.DisplayPriceNGN = 12*1600*1.10 + 700
	require.NoError(t, repo.Upsert(ctx, row))

	second, err := repo.Get(ctx, models.ProviderSMSLive, "it_wa", "NG")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 12.0, second.Cost)
	assert.True(t, second.LastSeenAt.After(first.LastSeenAt) || second.LastSeenAt.Equal(first.LastSeenAt))
}

func TestBestPricePicksCheapestFreshRow(t *testing.T) {
	db := testDB(t)
	repo := NewPriceRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, testRow("it_tg", 10)))

	cheaper := testRow("it_tg", 4)
	cheaper.Provider = models.ProviderSMSLive
	cheaper.CountryCode = "US"
	require.NoError(t, repo.Upsert(ctx, cheaper))

	best, err := repo.BestPrice(ctx, "it_tg", "", 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "US", best.CountryCode)

	pinned, err := repo.BestPrice(ctx, "it_tg", "NG", 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "NG", pinned.CountryCode)
}

func TestBestPriceIgnoresStaleAndOutOfStock(t *testing.T) {
	db := testDB(t)
	repo := NewPriceRepository(db)
	ctx := context.Background()

	sold := testRow("it_ig", 2)
	sold.Count = 0
	require.NoError(t, repo.Upsert(ctx, sold))

	_, err := repo.BestPrice(ctx, "it_ig", "", 30*time.Minute)
	require.Error(t, err)
	assert.True(t, IsNoRows(err))

	// A zero window makes every row stale without deleting any.
	require.NoError(t, repo.Upsert(ctx, testRow("it_fb", 3)))
	_, err = repo.BestPrice(ctx, "it_fb", "", 0)
	require.Error(t, err)
	assert.True(t, IsNoRows(err))

	row, err := repo.Get(ctx, models.ProviderSMSLive, "it_fb", "NG")
	require.NoError(t, err)
	assert.Equal(t, 3.0, row.Cost)
}
