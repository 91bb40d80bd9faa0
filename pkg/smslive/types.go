package smslive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// CountriesResponse maps the provider's numeric country ID to its names.
type CountriesResponse map[string]CountryEntry

// CountryEntry holds the localized names for a country.
type CountryEntry struct {
	Rus string `json:"rus"`
	Eng string `json:"eng"`
}

// PricesResponse maps service code to its offer for the requested country.
type PricesResponse map[string]ServiceOffer

// ServiceOffer is one service's price entry. Cost and count arrive as either
// numbers or strings depending on API version, so both use tolerant decoding.
type ServiceOffer struct {
	Cost  Amount `json:"cost"`
	Count Count  `json:"count"`
}

// NumberResponse is a successful activation purchase.
type NumberResponse struct {
	ID    string
	Phone string
}

// Amount is a decimal that tolerates string encoding. A value that cannot be
// parsed decodes to -1 so callers can tell "malformed" from a real zero.
type Amount float64

// UnmarshalJSON implements tolerant decoding for Amount.
func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount(parseAmount(string(bytes.Trim(data, `"`))))
	return nil
}

// Count is a non-negative integer that tolerates string encoding. Malformed
// or negative input decodes to 0 so one bad row never fails a batch.
type Count int

// UnmarshalJSON implements tolerant decoding for Count.
func (c *Count) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(bytes.Trim(data, `"`)))
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		*c = 0
		return nil
	}
	*c = Count(n)
	return nil
}

// parseAmount parses a decimal string, returning -1 when malformed.
func parseAmount(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return -1
	}
	return v
}

// decodeJSON decodes strictly: a body that is not valid JSON for the target
// shape fails as a whole. The API signals errors as bare text tokens, so a
// non-JSON body becomes an API error rather than a partial decode.
func decodeJSON(body []byte, target any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return apiError(string(trimmed))
	}
	if err := json.Unmarshal(trimmed, target); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}
