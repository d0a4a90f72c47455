// Package bankapi is the HTTP client for the banking data source. It returns
// raw records; normalization happens in the pipeline package.
package bankapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/johanbog/wallet-integration/internal/config"
	"github.com/johanbog/wallet-integration/internal/domain"
)

// RawAccount is one record of the remote accounts listing. AccountNumber is
// left untyped: the remote sends numbers for regular accounts and opaque
// string tokens for some credit card products.
type RawAccount struct {
	AccountNumber interface{} `json:"accountNumber"`
	Name          string      `json:"name"`
	Key           string      `json:"key"`
}

// RawTransaction is one transaction record exactly as returned by the remote.
// Field names and types vary across account products, so it stays a generic
// map until the normalizer takes over.
type RawTransaction map[string]interface{}

type accountsResponse struct {
	Accounts []RawAccount `json:"accounts"`
}

type transactionsResponse struct {
	Transactions []RawTransaction `json:"transactions"`
}

// Client talks to the banking REST API. Requests carry a bearer token and a
// configured Accept header. A non-2xx response is a *RequestError; nothing is
// retried here.
type Client struct {
	baseURL string
	token   string
	accept  string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a client from API configuration. The underlying
// http.Client uses transport defaults; callers bound calls via context.
func NewClient(cfg config.APIConfig, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		accept:  cfg.Accept,
		http:    &http.Client{},
		log:     log,
	}
}

// Accounts fetches the full account listing, credit card accounts included.
func (c *Client) Accounts(ctx context.Context) ([]RawAccount, error) {
	params := url.Values{}
	params.Set("includeCreditCardAccounts", "true")

	body, err := c.get(ctx, "accounts", params)
	if err != nil {
		return nil, fmt.Errorf("Accounts: %w", err)
	}

	var resp accountsResponse
	if err := decodeJSON(body, &resp); err != nil {
		return nil, fmt.Errorf("Accounts: decoding response: %w", err)
	}

	c.log.Debug().Int("count", len(resp.Accounts)).Msg("Fetched account listing")
	return resp.Accounts, nil
}

// Transactions fetches the raw transaction records for one account over a
// date range. A nil to date is omitted from the request; the remote then
// defaults the range end to now.
func (c *Client) Transactions(ctx context.Context, accountKey string, from time.Time, to *time.Time) ([]RawTransaction, error) {
	params := url.Values{}
	params.Set("accountKey", accountKey)
	params.Set("fromDate", from.Format(domain.DateLayout))
	if to != nil {
		params.Set("toDate", to.Format(domain.DateLayout))
	}

	body, err := c.get(ctx, "transactions", params)
	if err != nil {
		return nil, fmt.Errorf("Transactions: %w", err)
	}

	var resp transactionsResponse
	if err := decodeJSON(body, &resp); err != nil {
		return nil, fmt.Errorf("Transactions: decoding response: %w", err)
	}

	c.log.Debug().
		Str("account_key", accountKey).
		Int("count", len(resp.Transactions)).
		Msg("Fetched transactions")
	return resp.Transactions, nil
}

func (c *Client) get(ctx context.Context, resource string, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + "/" + resource
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", reqURL, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if c.accept != "" {
		req.Header.Set("Accept", c.accept)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", reqURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", reqURL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{
			URL:        reqURL,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	return body, nil
}

// decodeJSON decodes with UseNumber so amounts survive as their exact JSON
// literals instead of lossy float64s.
func decodeJSON(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
