package execution

import (
	"fmt"
	"strings"

	"github.com/quantfold/coinbuy/internal/exchange"
	"github.com/quantfold/coinbuy/pkg/money"
)

// NoFundingAccountError means the venue holds no account in the configured
// funding currency.
type NoFundingAccountError struct {
	Currency string
}

func (e *NoFundingAccountError) Error() string {
	return fmt.Sprintf("no %s funding account found at venue", e.Currency)
}

// InsufficientFundsError means the funding account cannot cover the requested
// amount. Both values are carried exactly.
type InsufficientFundsError struct {
	Available money.Amount
	Requested money.Amount
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("available balance (%s) is less than requested (%s)", e.Available, e.Requested)
}

// PairNotFoundError means no tradable product matches the configured
// base/quote pair.
type PairNotFoundError struct {
	Base  string
	Quote string
}

func (e *PairNotFoundError) Error() string {
	return fmt.Sprintf("no %s-%s pair found at venue", e.Base, e.Quote)
}

// AmbiguousPairError is returned under strict pair matching when the venue
// lists more than one product for the configured pair.
type AmbiguousPairError struct {
	Base       string
	Quote      string
	ProductIDs []string
}

func (e *AmbiguousPairError) Error() string {
	return fmt.Sprintf("multiple %s-%s products found at venue: %s",
		e.Base, e.Quote, strings.Join(e.ProductIDs, ", "))
}

// VenueRequestError wraps a transport/auth/server failure from a venue call
// outside the polling loop.
type VenueRequestError struct {
	Op  string
	Err error
}

func (e *VenueRequestError) Error() string {
	return fmt.Sprintf("venue request failed (%s): %v", e.Op, e.Err)
}

func (e *VenueRequestError) Unwrap() error { return e.Err }

// PollingError wraps a failed settlement poll fetch. Distinct from the order
// merely being pending: the fetch itself errored, and retrying blindly could
// mask a real outage.
type PollingError struct {
	OrderID string
	Err     error
}

func (e *PollingError) Error() string {
	return fmt.Sprintf("polling order %s failed: %v", e.OrderID, e.Err)
}

func (e *PollingError) Unwrap() error { return e.Err }

// UnexpectedOrderStatusError means the order reached a terminal state other
// than a settled fill. The full order payload rides along for diagnostics.
type UnexpectedOrderStatusError struct {
	Order *exchange.Order
}

func (e *UnexpectedOrderStatusError) Error() string {
	return fmt.Sprintf("order %s ended in unexpected state: status=%s settled=%t",
		e.Order.ID, e.Order.Status, e.Order.Settled)
}
