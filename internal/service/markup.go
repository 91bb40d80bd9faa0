package service

import (
	"github.com/verinum/verinum-api/internal/config"
	"github.com/verinum/verinum-api/internal/models"
)

// MarkupEngine computes customer-facing display prices from FX-converted
// costs. The percentage applies to the converted cost only; the fixed
// surcharge is added afterwards and is never marked up. Zero and negative
// percentages are valid and unclamped.
type MarkupEngine struct {
	cfg config.MarkupConfig
}

// NewMarkupEngine creates an engine over the given markup configuration.
func NewMarkupEngine(cfg config.MarkupConfig) *MarkupEngine {
	return &MarkupEngine{cfg: cfg}
}

// Percent returns the markup percentage for a provider: the per-provider
// override when configured, the global default otherwise.
func (e *MarkupEngine) Percent(provider models.ProviderCode) float64 {
	if pct, ok := e.cfg.ProviderPercent[string(provider)]; ok {
		return pct
	}
	return e.cfg.GlobalPercent
}

// DisplayPrice converts an NGN cost into the final customer price:
// costNGN * (1 + percent/100) + surcharge.
func (e *MarkupEngine) DisplayPrice(costNGN float64, provider models.ProviderCode) float64 {
	return costNGN*(1+e.Percent(provider)/100) + e.cfg.SurchargeNGN
}
