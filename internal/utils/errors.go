package utils

import "errors"

// Common application errors used across services.
var (
	// ErrProviderUnavailable indicates an upstream transport or auth failure.
	// It fails the (provider, country) pair it occurred in and nothing else.
	ErrProviderUnavailable = errors.New("PROVIDER_UNAVAILABLE")
	// ErrMalformedRow indicates a single price entry that could not be
	// coerced to the normalized shape. Row-scoped, never batch-fatal.
	ErrMalformedRow = errors.New("MALFORMED_ROW")
	// ErrRateUnavailable indicates a required FX rate is missing or zero.
	// Pricing for the affected row is blocked rather than emitting zero.
	ErrRateUnavailable = errors.New("RATE_UNAVAILABLE")
	// ErrPersistence indicates a storage write failure for one row.
	ErrPersistence = errors.New("PERSISTENCE_ERROR")
	// ErrNoOffer indicates no fresh catalog row matched a lookup.
	ErrNoOffer = errors.New("NO_OFFER")

	ErrInvalidToken       = errors.New("INVALID_TOKEN")
	ErrInvalidCredentials = errors.New("INVALID_CREDENTIALS")
	ErrOrderNotFound      = errors.New("ORDER_NOT_FOUND")
	ErrUnknownProvider    = errors.New("UNKNOWN_PROVIDER")
	ErrNoProviders        = errors.New("NO_PROVIDERS_CONFIGURED")
)
