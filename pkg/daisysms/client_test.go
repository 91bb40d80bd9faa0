package daisysms

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
		assert.Equal(t, "getPricesVerification", r.URL.Query().Get("action"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		fmt.Fprint(w, `{
			"wa": {"name": "WhatsApp", "cost": "0.50", "count": "2381"},
			"ds": {"name": "Discord", "cost": 0.05, "count": 9000}
		}`)
	})

	prices, err := client.GetPrices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "WhatsApp", prices["wa"].Name)
	assert.Equal(t, Amount(0.50), prices["wa"].Cost)
	assert.Equal(t, Count(2381), prices["wa"].Count)
	assert.Equal(t, Amount(0.05), prices["ds"].Cost)
}

func TestGetPricesMalformedEntry(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"wa": {"name": "WhatsApp", "cost": "free", "count": "-1"}}`)
	})

	prices, err := client.GetPrices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Amount(-1), prices["wa"].Cost)
	assert.Equal(t, Count(0), prices["wa"].Count)
}

func TestGetNumber(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "getNumber", r.URL.Query().Get("action"))
		assert.Equal(t, "wa", r.URL.Query().Get("service"))
		fmt.Fprint(w, "ACCESS_NUMBER:999123:13475556677")
	})

	number, err := client.GetNumber(context.Background(), "wa")
	require.NoError(t, err)
	assert.Equal(t, "999123", number.ID)
	assert.Equal(t, "13475556677", number.Phone)
}

func TestGetStatusWaiting(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "STATUS_WAIT_CODE")
	})

	code, err := client.GetStatus(context.Background(), "999123")
	require.NoError(t, err)
	assert.Empty(t, code)
}

func TestGetStatusReceived(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "STATUS_OK:339221")
	})

	code, err := client.GetStatus(context.Background(), "999123")
	require.NoError(t, err)
	assert.Equal(t, "339221", code)
}

func TestCancel(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "8", r.URL.Query().Get("status"))
		fmt.Fprint(w, "ACCESS_CANCEL")
	})

	ok, err := client.Cancel(context.Background(), "999123")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGetBalance(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ACCESS_BALANCE:25.10")
	})

	balance, err := client.GetBalance(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 25.10, balance, 0.001)
}

func TestErrorToken(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "MAX_PRICE_EXCEEDED")
	})

	_, err := client.GetNumber(context.Background(), "wa")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_PRICE_EXCEEDED")
}
