package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/quantfold/coinbuy/internal/credentials"
	"github.com/quantfold/coinbuy/internal/httpclient"
	"github.com/quantfold/coinbuy/internal/rate"
)

// Client is the authenticated REST client for a Coinbase-Exchange-style venue.
type Client struct {
	logger  *zap.Logger
	baseURL string
	signer  *Signer
	exec    *httpclient.Executor
}

// NewClient wires a client from credential material. The credential file's
// api_uri wins over baseURL when set.
func NewClient(logger *zap.Logger, baseURL string, creds *credentials.Credentials, rateMgr *rate.Manager) *Client {
	if creds.APIURI != "" {
		baseURL = creds.APIURI
	}

	httpClient := &http.Client{Timeout: 15 * time.Second}
	exec := httpclient.New(logger, rateMgr, httpClient, 2, "coinbase", func(status int, body []byte) error {
		var venueErr apiError
		_ = json.Unmarshal(body, &venueErr)

		logger.Warn("coinbase.client_error",
			zap.Int("status", status),
			zap.String("message", venueErr.Message))

		if venueErr.Message != "" {
			return fmt.Errorf("venue returned %d: %s", status, venueErr.Message)
		}
		return fmt.Errorf("venue returned %d: %s", status, body)
	})

	return &Client{
		logger:  logger,
		baseURL: baseURL,
		signer: &Signer{
			Key:        creds.Key,
			Secret:     creds.Secret,
			Passphrase: creds.Passphrase,
		},
		exec: exec,
	}
}

// GetAccounts lists every balance the credential's profile holds.
// GET /accounts
func (c *Client) GetAccounts(ctx context.Context) ([]Account, error) {
	var accounts []Account
	if err := c.getJSON(ctx, "/accounts", &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// GetProducts lists every tradable pair on the venue.
// GET /products
func (c *Client) GetProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.getJSON(ctx, "/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// PlaceOrder submits a new order. The returned order is a snapshot taken at
// acceptance time and is normally still non-terminal.
// POST /orders
func (c *Client) PlaceOrder(ctx context.Context, order NewOrder) (*Order, error) {
	var placed Order
	if err := c.postJSON(ctx, "/orders", order, &placed); err != nil {
		return nil, err
	}
	return &placed, nil
}

// GetOrder fetches the current snapshot of an order. Read-only: polling the
// same id any number of times mutates nothing venue-side.
// GET /orders/{id}
func (c *Client) GetOrder(ctx context.Context, id string) (*Order, error) {
	var order Order
	if err := c.getJSON(ctx, "/orders/"+id, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// getJSON performs a signed GET request and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if err := c.signer.Sign(req, http.MethodGet, path, nil); err != nil {
		return err
	}

	return c.exec.DoJSON(ctx, req, "coinbase_api", out)
}

// postJSON performs a signed POST request with a JSON body.
func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if err := c.signer.Sign(req, http.MethodPost, path, data); err != nil {
		return err
	}

	return c.exec.DoJSON(ctx, req, "coinbase_api", out)
}
