package models

// ProviderCode identifies an upstream SMS-number provider.
type ProviderCode string

const (
	ProviderSMSLive  ProviderCode = "smslive"
	ProviderFiveSim  ProviderCode = "fivesim"
	ProviderDaisySMS ProviderCode = "daisysms"
)

// AllProviders lists the fixed provider variant set. New providers are added
// here plus one adapter; shared logic never branches on identity.
var AllProviders = []ProviderCode{ProviderSMSLive, ProviderFiveSim, ProviderDaisySMS}

// ProviderBalance reports a provider's remaining deposit in its native currency.
type ProviderBalance struct {
	Provider ProviderCode `json:"provider"`
	Balance  float64      `json:"balance"`
	Currency string       `json:"currency"`
	Healthy  bool         `json:"healthy"`
}
