package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/verinum/verinum-api/internal/config"
	"github.com/verinum/verinum-api/internal/models"
	"github.com/verinum/verinum-api/internal/utils"
)

// DisplayCurrency is the customer-facing currency.
const DisplayCurrency = "NGN"

// ReferenceCurrency is the intermediate conversion currency.
const ReferenceCurrency = "USD"

// FXQuote is a snapshot of the rates used to price one provider's rows.
// It is resolved once per refresh cycle and stored alongside every row it
// priced, so a later audit can reconstruct the output without live rates.
type FXQuote struct {
	Provider       models.ProviderCode
	NativeCurrency string
	// NativeUSD is the native -> USD rate. Zero when native is NGN and the
	// USD hop is skipped.
	NativeUSD float64
	// USDNGN is the USD -> NGN rate. Zero when the hop is skipped.
	USDNGN float64
	// ComputedAt records when this quote was resolved.
	ComputedAt time.Time
}

// NGNPerNative returns the combined native -> NGN factor.
func (q FXQuote) NGNPerNative() float64 {
	if q.NativeCurrency == DisplayCurrency {
		return 1
	}
	return q.NativeUSD * q.USDNGN
}

// Convert converts a native-currency cost to NGN.
func (q FXQuote) Convert(cost float64) float64 {
	return cost * q.NGNPerNative()
}

// FXResolver maps providers to native currencies and conversion rates.
// All rates come from configuration; the resolver never fetches market data.
type FXResolver struct {
	cfg config.FXConfig
}

// NewFXResolver creates a resolver over the given FX configuration.
func NewFXResolver(cfg config.FXConfig) *FXResolver {
	return &FXResolver{cfg: cfg}
}

// NativeCurrency returns a provider's native currency, defaulting to USD
// when unmapped.
func (r *FXResolver) NativeCurrency(provider models.ProviderCode) string {
	if cur, ok := r.cfg.ProviderCurrency[string(provider)]; ok && cur != "" {
		return strings.ToUpper(cur)
	}
	return ReferenceCurrency
}

// Quote resolves the conversion rates for a provider. A zero or missing
// required rate returns ErrRateUnavailable; rows are never priced at zero.
func (r *FXResolver) Quote(provider models.ProviderCode) (FXQuote, error) {
	native := r.NativeCurrency(provider)
	quote := FXQuote{
		Provider:       provider,
		NativeCurrency: native,
		ComputedAt:     time.Now().UTC(),
	}

	// NGN-native providers need no conversion at all.
	if native == DisplayCurrency {
		return quote, nil
	}

	nativeUSD := r.cfg.ProviderRateOverride[string(provider)]
	if nativeUSD == 0 {
		nativeUSD = r.cfg.NativeUSD[native]
	}
	if nativeUSD <= 0 {
		return FXQuote{}, fmt.Errorf("%w: no %s->USD rate for provider %s",
			utils.ErrRateUnavailable, native, provider)
	}
	if r.cfg.USDNGN <= 0 {
		return FXQuote{}, fmt.Errorf("%w: no USD->NGN rate configured", utils.ErrRateUnavailable)
	}

	quote.NativeUSD = nativeUSD
	quote.USDNGN = r.cfg.USDNGN
	return quote, nil
}
