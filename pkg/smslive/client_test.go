package smslive

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "test-key")
}

func TestGetPrices(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "getPrices", r.URL.Query().Get("action"))
		assert.Equal(t, "19", r.URL.Query().Get("country"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		fmt.Fprint(w, `{"wa":{"cost":18.5,"count":120},"tg":{"cost":"7.2","count":"43"}}`)
	})

	prices, err := client.GetPrices(context.Background(), "19")
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.Equal(t, Amount(18.5), prices["wa"].Cost)
	assert.Equal(t, Count(120), prices["wa"].Count)
	// String-encoded numbers decode the same as raw numbers.
	assert.Equal(t, Amount(7.2), prices["tg"].Cost)
	assert.Equal(t, Count(43), prices["tg"].Count)
}

func TestGetPricesTolerantDecoding(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"wa":{"cost":"abc","count":"-5"},"tg":{"cost":3,"count":"n/a"}}`)
	})

	prices, err := client.GetPrices(context.Background(), "19")
	require.NoError(t, err)
	// Malformed cost marks the row, it never becomes a free offer.
	assert.Equal(t, Amount(-1), prices["wa"].Cost)
	assert.Equal(t, Count(0), prices["wa"].Count)
	assert.Equal(t, Amount(3), prices["tg"].Cost)
	assert.Equal(t, Count(0), prices["tg"].Count)
}

func TestGetPricesErrorToken(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "BAD_KEY")
	})

	_, err := client.GetPrices(context.Background(), "19")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BAD_KEY")
}

func TestGetCountries(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "getCountries", r.URL.Query().Get("action"))
		fmt.Fprint(w, `{"19":{"rus":"Нигерия","eng":"Nigeria"},"187":{"rus":"США","eng":"USA"}}`)
	})

	countries, err := client.GetCountries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Nigeria", countries["19"].Eng)
	assert.Equal(t, "USA", countries["187"].Eng)
}

func TestGetNumber(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "getNumber", r.URL.Query().Get("action"))
		assert.Equal(t, "wa", r.URL.Query().Get("service"))
		fmt.Fprint(w, "ACCESS_NUMBER:1065:2348012345678")
	})

	number, err := client.GetNumber(context.Background(), "wa", "19")
	require.NoError(t, err)
	assert.Equal(t, "1065", number.ID)
	assert.Equal(t, "2348012345678", number.Phone)
}

func TestGetNumberNoStock(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "NO_NUMBERS")
	})

	_, err := client.GetNumber(context.Background(), "wa", "19")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NO_NUMBERS")
}

func TestGetStatus(t *testing.T) {
	responses := map[string]struct {
		body     string
		wantCode string
		wantErr  bool
	}{
		"code received": {body: "STATUS_OK:482913", wantCode: "482913"},
		"still waiting": {body: "STATUS_WAIT_CODE", wantCode: ""},
		"cancelled":     {body: "STATUS_CANCEL", wantErr: true},
	}

	for name, tc := range responses {
		t.Run(name, func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tc.body)
			})

			code, err := client.GetStatus(context.Background(), "1065")
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantCode, code)
		})
	}
}

func TestCancelActivation(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "setStatus", r.URL.Query().Get("action"))
		assert.Equal(t, "8", r.URL.Query().Get("status"))
		fmt.Fprint(w, "ACCESS_CANCEL")
	})

	ok, err := client.CancelActivation(context.Background(), "1065")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGetBalance(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ACCESS_BALANCE:412.37")
	})

	balance, err := client.GetBalance(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 412.37, balance, 0.001)
}

func TestHTTPErrorStatus(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GetBalance(context.Background())
	assert.Error(t, err)
}
