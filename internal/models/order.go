package models

import "time"

// OrderStatus is the lifecycle state of a number order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderReceived  OrderStatus = "received"
	OrderCancelled OrderStatus = "cancelled"
	OrderExpired   OrderStatus = "expired"
)

// NumberOrder is a purchased virtual number awaiting an SMS code.
type NumberOrder struct {
	ID              int          `db:"id" json:"id"`
	ReferenceID     string       `db:"reference_id" json:"referenceId"`
	Provider        ProviderCode `db:"provider" json:"provider"`
	Service         string       `db:"service" json:"service"`
	CountryCode     string       `db:"country_code" json:"countryCode"`
	ProviderOrderID string       `db:"provider_order_id" json:"providerOrderId"`
	PhoneNumber     string       `db:"phone_number" json:"phoneNumber"`
	PriceNGN        float64      `db:"price_ngn" json:"priceNgn"`
	Status          OrderStatus  `db:"status" json:"status"`
	SMSCode         *string      `db:"sms_code" json:"smsCode,omitempty"`
	ExpiresAt       *time.Time   `db:"expires_at" json:"expiresAt,omitempty"`
	CreatedAt       time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updatedAt"`
}
