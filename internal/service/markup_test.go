package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verinum/verinum-api/internal/config"
	"github.com/verinum/verinum-api/internal/models"
)

func TestDisplayPriceFormula(t *testing.T) {
	engine := NewMarkupEngine(config.MarkupConfig{
		GlobalPercent: 10,
		SurchargeNGN:  700,
	})

	// 16000 * 1.10 + 700
	assert.InDelta(t, 18300, engine.DisplayPrice(16000, models.ProviderSMSLive), 0.001)
}

func TestDisplayPriceZeroPercent(t *testing.T) {
	engine := NewMarkupEngine(config.MarkupConfig{
		GlobalPercent: 0,
		SurchargeNGN:  500,
	})

	assert.InDelta(t, 1500, engine.DisplayPrice(1000, models.ProviderFiveSim), 0.001)
}

func TestDisplayPriceNegativePercent(t *testing.T) {
	engine := NewMarkupEngine(config.MarkupConfig{
		GlobalPercent: -20,
		SurchargeNGN:  100,
	})

	// Promotional pricing can undercut cost plus surcharge.
	got := engine.DisplayPrice(1000, models.ProviderFiveSim)
	assert.InDelta(t, 900, got, 0.001)
	assert.Less(t, got, 1000+100.0)
}

func TestDisplayPriceSurchargeNotMarkedUp(t *testing.T) {
	withSurcharge := NewMarkupEngine(config.MarkupConfig{GlobalPercent: 50, SurchargeNGN: 200})
	withoutSurcharge := NewMarkupEngine(config.MarkupConfig{GlobalPercent: 50})

	// The surcharge is added after the percentage, so the difference between
	// the two engines is exactly the surcharge.
	assert.InDelta(t, 200,
		withSurcharge.DisplayPrice(1000, models.ProviderSMSLive)-withoutSurcharge.DisplayPrice(1000, models.ProviderSMSLive),
		0.001)
}

func TestPercentProviderOverride(t *testing.T) {
	engine := NewMarkupEngine(config.MarkupConfig{
		GlobalPercent:   10,
		ProviderPercent: map[string]float64{"fivesim": 25},
	})

	assert.Equal(t, 25.0, engine.Percent(models.ProviderFiveSim))
	assert.Equal(t, 10.0, engine.Percent(models.ProviderSMSLive))

	assert.InDelta(t, 1250, engine.DisplayPrice(1000, models.ProviderFiveSim), 0.001)
	assert.InDelta(t, 1100, engine.DisplayPrice(1000, models.ProviderSMSLive), 0.001)
}
