package exchange

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quantfold/coinbuy/internal/credentials"
)

func testCreds() *credentials.Credentials {
	return &credentials.Credentials{
		Key:        "key-1",
		Secret:     base64.StdEncoding.EncodeToString([]byte("sekret")),
		Passphrase: "phrase",
	}
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	return NewClient(zap.NewNop(), url, testCreds(), nil)
}

func TestClient_GetAccounts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("CB-ACCESS-KEY"))
		assert.NotEmpty(t, r.Header.Get("CB-ACCESS-SIGN"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"a1","currency":"USD","balance":"100.0000000000000000","available":"100.00","hold":"0"},
			{"id":"a2","currency":"BTC","balance":"0.5","available":"0.5","hold":"0"}
		]`))
	}))
	defer srv.Close()

	accounts, err := newTestClient(t, srv.URL).GetAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "USD", accounts[0].Currency)
	assert.Equal(t, "100", accounts[0].Available.String())
}

func TestClient_GetProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id":"BTC-USD","base_currency":"BTC","quote_currency":"USD","status":"online"},
			{"id":"ETH-EUR","base_currency":"ETH","quote_currency":"EUR","status":"online"}
		]`))
	}))
	defer srv.Close()

	products, err := newTestClient(t, srv.URL).GetProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "BTC-USD", products[0].ID)
}

func TestClient_PlaceOrder_WireFormat(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_, _ = w.Write([]byte(`{"id":"ord-1","product_id":"BTC-USD","side":"buy","type":"market","status":"pending","settled":false}`))
	}))
	defer srv.Close()

	order, err := newTestClient(t, srv.URL).PlaceOrder(context.Background(), NewOrder{
		ClientOID: "11111111-2222-3333-4444-555555555555",
		Type:      TypeMarket,
		Side:      SideBuy,
		ProductID: "BTC-USD",
		Funds:     "50",
	})
	require.NoError(t, err)
	assert.Equal(t, "ord-1", order.ID)
	assert.Equal(t, StatusPending, order.Status)

	// funds must be the exact decimal string, never a JSON number
	assert.Equal(t, "50", got["funds"])
	assert.Equal(t, "market", got["type"])
	assert.Equal(t, "buy", got["side"])
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", got["client_oid"])
}

func TestClient_GetOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/ord-9", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"id":"ord-9","product_id":"BTC-USD","side":"buy","type":"market",
			"status":"done","settled":true,
			"filled_size":"0.00123456","funds":"10.00","executed_value":"9.98","fill_fees":"0.02"
		}`))
	}))
	defer srv.Close()

	order, err := newTestClient(t, srv.URL).GetOrder(context.Background(), "ord-9")
	require.NoError(t, err)
	assert.True(t, order.IsFilled())
	assert.Equal(t, "0.00123456", order.FilledSize.StringFixed(8))
}

func TestClient_VenueErrorMessageSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Insufficient funds"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).PlaceOrder(context.Background(), NewOrder{
		Type: TypeMarket, Side: SideBuy, ProductID: "BTC-USD", Funds: "50",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Insufficient funds")
	assert.Contains(t, err.Error(), "400")
}

func TestClient_CredentialAPIURIWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	creds := testCreds()
	creds.APIURI = srv.URL
	client := NewClient(zap.NewNop(), "http://unreachable.invalid", creds, nil)

	_, err := client.GetAccounts(context.Background())
	require.NoError(t, err)
}

func TestOrder_IsFilled(t *testing.T) {
	cases := []struct {
		name    string
		status  string
		settled bool
		want    bool
	}{
		{"done and settled", StatusDone, true, true},
		{"done but unsettled", StatusDone, false, false},
		{"cancelled and settled", "cancelled", true, false},
		{"pending", StatusPending, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := &Order{Status: tc.status, Settled: tc.settled}
			assert.Equal(t, tc.want, o.IsFilled())
		})
	}
}
