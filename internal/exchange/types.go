package exchange

import (
	"github.com/shopspring/decimal"
)

// Order statuses the venue reports. Anything other than StatusPending is
// terminal for the polling loop; only StatusDone (plus settled=true) counts
// as a successful fill.
const (
	StatusPending = "pending"
	StatusOpen    = "open"
	StatusActive  = "active"
	StatusDone    = "done"
)

// Order sides and types. coinbuy only ever submits market buys, but the wire
// model mirrors what the venue can return.
const (
	SideBuy  = "buy"
	SideSell = "sell"

	TypeMarket = "market"
	TypeLimit  = "limit"
)

// Account is one currency balance held at the venue.
// GET /accounts
type Account struct {
	ID        string          `json:"id"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	Available decimal.Decimal `json:"available"`
	Hold      decimal.Decimal `json:"hold"`
}

// Product is a tradable pair.
// GET /products
type Product struct {
	ID            string `json:"id"`             // e.g. "BTC-USD"
	BaseCurrency  string `json:"base_currency"`  // e.g. "BTC"
	QuoteCurrency string `json:"quote_currency"` // e.g. "USD"
	Status        string `json:"status"`         // e.g. "online"
}

// NewOrder is the order placement payload.
// POST /orders
// Funds crosses the wire as an exact decimal string; ClientOID is a caller
// generated idempotency key so a retried submit cannot double-fill.
type NewOrder struct {
	ClientOID string `json:"client_oid,omitempty"`
	Type      string `json:"type"`
	Side      string `json:"side"`
	ProductID string `json:"product_id"`
	Funds     string `json:"funds"`
}

// Order is the venue's view of a submitted order.
// Returned by POST /orders (initially non-terminal) and GET /orders/{id}.
type Order struct {
	ID             string          `json:"id"`
	ClientOID      string          `json:"client_oid,omitempty"`
	ProductID      string          `json:"product_id"`
	Side           string          `json:"side"`
	Type           string          `json:"type"`
	Funds          decimal.Decimal `json:"funds"`
	SpecifiedFunds decimal.Decimal `json:"specified_funds"`
	Status         string          `json:"status"`
	Settled        bool            `json:"settled"`
	FilledSize     decimal.Decimal `json:"filled_size"`
	ExecutedValue  decimal.Decimal `json:"executed_value"`
	FillFees       decimal.Decimal `json:"fill_fees"`
	DoneReason     string          `json:"done_reason,omitempty"`
	CreatedAt      string          `json:"created_at,omitempty"`
	DoneAt         string          `json:"done_at,omitempty"`
}

// IsPending reports whether the order has not yet reached a terminal state.
func (o *Order) IsPending() bool {
	return o.Status == StatusPending
}

// IsFilled reports whether the order completed successfully: the venue must
// report both the done status and the settled flag. A terminal status alone
// (cancelled, rejected) is not a fill.
func (o *Order) IsFilled() bool {
	return o.Settled && o.Status == StatusDone
}

// apiError is the venue's JSON error body.
type apiError struct {
	Message string `json:"message"`
}
