package fivesim

import "time"

// CountriesResponse maps country slug to its metadata.
type CountriesResponse map[string]CountryEntry

// CountryEntry describes one country in the directory.
type CountryEntry struct {
	ISO  map[string]int `json:"iso"`
	Text string         `json:"text_en"`
}

// PricesResponse maps product -> operator -> offer.
type PricesResponse map[string]map[string]OperatorOffer

// OperatorOffer is one operator's price entry for a product.
type OperatorOffer struct {
	Cost  float64 `json:"cost"`
	Count int     `json:"count"`
	Rate  float64 `json:"rate,omitempty"`
}

// Order is an activation order as returned by buy/check/cancel.
type Order struct {
	ID        int64     `json:"id"`
	Phone     string    `json:"phone"`
	Product   string    `json:"product"`
	Price     float64   `json:"price"`
	Status    string    `json:"status"`
	Expires   time.Time `json:"expires"`
	SMS       []SMS     `json:"sms"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"created_at"`
}

// SMS is a message received on an ordered number.
type SMS struct {
	Sender string    `json:"sender"`
	Text   string    `json:"text"`
	Code   string    `json:"code"`
	Date   time.Time `json:"date"`
}

// Profile is the authenticated account state.
type Profile struct {
	ID      int64   `json:"id"`
	Email   string  `json:"email"`
	Balance float64 `json:"balance"`
	Rating  float64 `json:"rating"`
}

// Order status values used by the API.
const (
	StatusPending  = "PENDING"
	StatusReceived = "RECEIVED"
	StatusFinished = "FINISHED"
	StatusCanceled = "CANCELED"
	StatusTimeout  = "TIMEOUT"
	StatusBanned   = "BANNED"
)
