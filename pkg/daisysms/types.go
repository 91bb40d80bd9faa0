package daisysms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PricesResponse maps service code to its price entry.
type PricesResponse map[string]ServiceEntry

// ServiceEntry is one service's offer. Numeric fields arrive as strings on
// the wire, so both use tolerant decoding.
type ServiceEntry struct {
	Name  string `json:"name"`
	Cost  Amount `json:"cost"`
	Count Count  `json:"count"`
}

// NumberResponse is a successful rental.
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

func parseAmount(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return -1
	}
	return v
}

// decodeJSON decodes strictly: error tokens arrive as bare text, so a
// non-JSON body is surfaced as an API error, never a partial decode.
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
