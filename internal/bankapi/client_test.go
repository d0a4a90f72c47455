package bankapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johanbog/wallet-integration/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(config.APIConfig{
		BaseURL: server.URL,
		Token:   "test-token",
		Accept:  "application/vnd.bank.v2+json",
	}, zerolog.Nop())
}

func TestClientAccounts(t *testing.T) {
	var gotReq *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"accounts":[
			{"accountNumber":12345678901,"name":"Checking","key":"key-1"},
			{"accountNumber":"K1955118490","name":"","key":"key-2"}
		]}`))
	})

	accounts, err := client.Accounts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/accounts", gotReq.URL.Path)
	assert.Equal(t, "true", gotReq.URL.Query().Get("includeCreditCardAccounts"))
	assert.Equal(t, "Bearer test-token", gotReq.Header.Get("Authorization"))
	assert.Equal(t, "application/vnd.bank.v2+json", gotReq.Header.Get("Accept"))

	require.Len(t, accounts, 2)
	assert.Equal(t, json.Number("12345678901"), accounts[0].AccountNumber)
	assert.Equal(t, "Checking", accounts[0].Name)
	assert.Equal(t, "key-1", accounts[0].Key)
	assert.Equal(t, "K1955118490", accounts[1].AccountNumber)
}

func TestClientTransactions(t *testing.T) {
	var gotReq *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		w.Write([]byte(`{"transactions":[
			{"date":1700000000000,"amount":-42.50,"description":"Groceries"}
		]}`))
	})

	from := time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 11, 30, 0, 0, 0, 0, time.UTC)

	txs, err := client.Transactions(context.Background(), "key-1", from, &to)
	require.NoError(t, err)

	assert.Equal(t, "/transactions", gotReq.URL.Path)
	assert.Equal(t, "key-1", gotReq.URL.Query().Get("accountKey"))
	assert.Equal(t, "2023-11-01", gotReq.URL.Query().Get("fromDate"))
	assert.Equal(t, "2023-11-30", gotReq.URL.Query().Get("toDate"))

	require.Len(t, txs, 1)
	assert.Equal(t, json.Number("1700000000000"), txs[0]["date"])
	assert.Equal(t, json.Number("-42.50"), txs[0]["amount"])
	assert.Equal(t, "Groceries", txs[0]["description"])
}

func TestClientTransactions_OmitsToDateWhenNil(t *testing.T) {
	var gotReq *http.Request
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotReq = r.Clone(context.Background())
		w.Write([]byte(`{"transactions":[]}`))
	})

	from := time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)
	_, err := client.Transactions(context.Background(), "key-1", from, nil)
	require.NoError(t, err)

	_, present := gotReq.URL.Query()["toDate"]
	assert.False(t, present, "toDate must be omitted entirely when unset")
}

func TestClient_NonSuccessStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"token expired"}`))
	})

	_, err := client.Accounts(context.Background())
	require.Error(t, err)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusForbidden, reqErr.StatusCode)
	assert.Contains(t, reqErr.URL, "/accounts")
	assert.Contains(t, reqErr.Body, "token expired")
	assert.Contains(t, reqErr.Error(), "status 403")
}
