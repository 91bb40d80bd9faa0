package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verinum/verinum-api/internal/config"
	"github.com/verinum/verinum-api/internal/models"
	"github.com/verinum/verinum-api/internal/utils"
)

func TestQuoteTwoHopConversion(t *testing.T) {
	resolver := NewFXResolver(config.FXConfig{
		USDNGN:           1600,
		NativeUSD:        map[string]float64{"RUB": 0.011, "USD": 1},
		ProviderCurrency: map[string]string{"smslive": "RUB"},
	})

	quote, err := resolver.Quote(models.ProviderSMSLive)
	require.NoError(t, err)
	assert.Equal(t, "RUB", quote.NativeCurrency)
	// 100 RUB -> 1.1 USD -> 1760 NGN
	assert.InDelta(t, 1760, quote.Convert(100), 0.001)
}

func TestQuoteDefaultsToUSD(t *testing.T) {
	resolver := NewFXResolver(config.FXConfig{
		USDNGN:    1600,
		NativeUSD: map[string]float64{"USD": 1},
	})

	quote, err := resolver.Quote(models.ProviderDaisySMS)
	require.NoError(t, err)
	assert.Equal(t, "USD", quote.NativeCurrency)
	assert.InDelta(t, 16000, quote.Convert(10), 0.001)
}

func TestQuoteNGNNativeSkipsConversion(t *testing.T) {
	resolver := NewFXResolver(config.FXConfig{
		// No rates configured at all: an NGN-native provider must not need them.
		ProviderCurrency: map[string]string{"smslive": "NGN"},
	})

	quote, err := resolver.Quote(models.ProviderSMSLive)
	require.NoError(t, err)
	assert.Equal(t, 1.0, quote.NGNPerNative())
	assert.InDelta(t, 2500, quote.Convert(2500), 0.001)
}

func TestQuoteMissingNativeRate(t *testing.T) {
	resolver := NewFXResolver(config.FXConfig{
		USDNGN:           1600,
		NativeUSD:        map[string]float64{"USD": 1},
		ProviderCurrency: map[string]string{"fivesim": "RUB"},
	})

	_, err := resolver.Quote(models.ProviderFiveSim)
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrRateUnavailable)
}

func TestQuoteZeroUSDNGNRate(t *testing.T) {
	resolver := NewFXResolver(config.FXConfig{
		USDNGN:    0,
		NativeUSD: map[string]float64{"USD": 1},
	})

	_, err := resolver.Quote(models.ProviderDaisySMS)
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrRateUnavailable)
}

func TestQuoteProviderRateOverride(t *testing.T) {
	resolver := NewFXResolver(config.FXConfig{
		USDNGN:               1600,
		NativeUSD:            map[string]float64{"RUB": 0.011},
		ProviderCurrency:     map[string]string{"smslive": "RUB"},
		ProviderRateOverride: map[string]float64{"smslive": 0.02},
	})

	quote, err := resolver.Quote(models.ProviderSMSLive)
	require.NoError(t, err)
	assert.InDelta(t, 0.02, quote.NativeUSD, 0.0001)
}
