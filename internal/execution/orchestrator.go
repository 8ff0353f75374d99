package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quantfold/coinbuy/internal/events"
	"github.com/quantfold/coinbuy/internal/exchange"
	"github.com/quantfold/coinbuy/internal/metrics"
	"github.com/quantfold/coinbuy/internal/store"
	"github.com/quantfold/coinbuy/internal/tracking"
	"github.com/quantfold/coinbuy/pkg/money"
)

// Venue is the consumed trading capability. The concrete implementation is
// the exchange client; tests substitute fakes.
type Venue interface {
	GetAccounts(ctx context.Context) ([]exchange.Account, error)
	GetProducts(ctx context.Context) ([]exchange.Product, error)
	PlaceOrder(ctx context.Context, order exchange.NewOrder) (*exchange.Order, error)
	GetOrder(ctx context.Context, id string) (*exchange.Order, error)
}

// Options configure one workflow run.
type Options struct {
	FundingCurrency string        // e.g. "USD"
	TargetAsset     string        // e.g. "BTC"
	PollInterval    time.Duration // settlement poll interval
	StrictPairMatch bool          // error when several products match the pair
}

// Result is the outcome of a successful run. FilledSize and FundsSpent come
// from the venue's final order snapshot, not from the request.
type Result struct {
	Order      *exchange.Order
	FilledSize money.Amount
	FundsSpent money.Amount
}

// Orchestrator runs the buy workflow: balance check, pair resolution, order
// submission, settlement wait, result validation. Each step is a hard stop on
// failure; nothing business-rule level is ever retried.
type Orchestrator struct {
	logger *zap.Logger
	venue  Venue
	opts   Options

	// optional collaborators; each is nil-safe
	publisher *events.Publisher
	snapshots store.Store
	state     *tracking.State

	clock Clock
}

// New wires an orchestrator. publisher, snapshots, and state may be nil.
func New(
	logger *zap.Logger,
	venue Venue,
	opts Options,
	publisher *events.Publisher,
	snapshots store.Store,
	state *tracking.State,
) *Orchestrator {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	return &Orchestrator{
		logger:    logger,
		venue:     venue,
		opts:      opts,
		publisher: publisher,
		snapshots: snapshots,
		state:     state,
		clock:     realClock{},
	}
}

// WithClock swaps the poll wait implementation (tests).
func (o *Orchestrator) WithClock(c Clock) *Orchestrator {
	o.clock = c
	return o
}

// Execute runs the full workflow for the requested funding amount.
func (o *Orchestrator) Execute(ctx context.Context, funds money.Amount) (*Result, error) {
	start := time.Now()
	defer metrics.ObserveWorkflow(start)

	if funds.Currency() != o.opts.FundingCurrency {
		return nil, o.fail("funds_currency", fmt.Errorf(
			"requested amount is %s but the funding currency is %s",
			funds.Currency(), o.opts.FundingCurrency))
	}
	if !funds.IsPositive() {
		return nil, o.fail("funds_not_positive", fmt.Errorf("requested amount must be positive, got %s", funds))
	}

	o.logger.Info("exec.start",
		zap.String("funds", funds.String()),
		zap.String("target_asset", o.opts.TargetAsset))

	// 1. Balance check
	o.state.SetPhase(tracking.PhaseBalanceCheck)
	available, err := o.checkBalance(ctx, funds)
	if err != nil {
		return nil, o.fail("balance_check", err)
	}

	// 2. Pair resolution
	o.state.SetPhase(tracking.PhasePairResolution)
	product, err := o.resolvePair(ctx)
	if err != nil {
		return nil, o.fail("pair_resolution", err)
	}

	// 3. Order submission
	o.state.SetPhase(tracking.PhaseSubmitting)
	placed, err := o.submitOrder(ctx, product, funds)
	if err != nil {
		return nil, o.fail("submission", err)
	}

	o.logger.Info("exec.order_placed",
		zap.String("order_id", placed.ID),
		zap.String("product_id", placed.ProductID),
		zap.String("available", available.String()))

	// 4. Settlement wait
	o.state.SetPhase(tracking.PhaseAwaitingSettlement)
	o.state.SetOrder(placed.ID)

	final, err := o.awaitSettlement(ctx, placed.ID)
	if err != nil {
		return nil, o.fail("settlement_wait", err)
	}

	// 5. Result validation
	if !final.IsFilled() {
		return nil, o.fail("result_validation", &UnexpectedOrderStatusError{Order: final})
	}

	// 6. Result from the order's own fields, not the request
	result := &Result{
		Order:      final,
		FilledSize: money.New(final.FilledSize, o.opts.TargetAsset),
		FundsSpent: money.New(final.Funds, o.opts.FundingCurrency),
	}

	o.publisher.OrderSettled(ctx, final)
	o.state.SetPhase(tracking.PhaseDone)

	o.logger.Info("exec.done",
		zap.String("order_id", final.ID),
		zap.String("filled_size", result.FilledSize.Fixed(8)),
		zap.String("funds_spent", result.FundsSpent.Fixed(3)))

	return result, nil
}

// checkBalance finds the funding account and verifies it covers the request.
func (o *Orchestrator) checkBalance(ctx context.Context, funds money.Amount) (money.Amount, error) {
	accounts, err := o.venue.GetAccounts(ctx)
	if err != nil {
		return money.Amount{}, &VenueRequestError{Op: "get accounts", Err: err}
	}

	var funding *exchange.Account
	for i := range accounts {
		if accounts[i].Currency == o.opts.FundingCurrency {
			funding = &accounts[i]
			break
		}
	}
	if funding == nil {
		return money.Amount{}, &NoFundingAccountError{Currency: o.opts.FundingCurrency}
	}

	available := money.New(funding.Available, funding.Currency)
	o.recordBalance(ctx, funding)

	less, err := available.LessThan(funds)
	if err != nil {
		return money.Amount{}, err
	}
	if less {
		return money.Amount{}, &InsufficientFundsError{Available: available, Requested: funds}
	}
	return available, nil
}

// resolvePair picks the product matching base=target asset, quote=funding
// currency. Multiple matches take the first in venue order unless strict
// matching is enabled.
func (o *Orchestrator) resolvePair(ctx context.Context) (*exchange.Product, error) {
	products, err := o.venue.GetProducts(ctx)
	if err != nil {
		return nil, &VenueRequestError{Op: "get products", Err: err}
	}

	var matches []exchange.Product
	for _, p := range products {
		if p.BaseCurrency == o.opts.TargetAsset && p.QuoteCurrency == o.opts.FundingCurrency {
			matches = append(matches, p)
		}
	}

	switch {
	case len(matches) == 0:
		return nil, &PairNotFoundError{Base: o.opts.TargetAsset, Quote: o.opts.FundingCurrency}
	case len(matches) > 1 && o.opts.StrictPairMatch:
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		return nil, &AmbiguousPairError{Base: o.opts.TargetAsset, Quote: o.opts.FundingCurrency, ProductIDs: ids}
	case len(matches) > 1:
		o.logger.Warn("exec.pair_ambiguous",
			zap.String("selected", matches[0].ID),
			zap.Int("matches", len(matches)))
	}

	return &matches[0], nil
}

// submitOrder places the market buy. Funds cross the wire as the exact
// decimal string; the client_oid makes an accidental resubmit harmless.
func (o *Orchestrator) submitOrder(ctx context.Context, product *exchange.Product, funds money.Amount) (*exchange.Order, error) {
	order := exchange.NewOrder{
		ClientOID: uuid.NewString(),
		Type:      exchange.TypeMarket,
		Side:      exchange.SideBuy,
		ProductID: product.ID,
		Funds:     funds.Wire(),
	}

	placed, err := o.venue.PlaceOrder(ctx, order)
	if err != nil {
		return nil, &VenueRequestError{Op: "place order", Err: err}
	}

	o.publisher.OrderPlaced(ctx, placed)
	o.recordOrder(ctx, placed)
	return placed, nil
}

// awaitSettlement delegates to the poller, observing each snapshot for status
// tracking, event emission, and snapshot recording.
func (o *Orchestrator) awaitSettlement(ctx context.Context, orderID string) (*exchange.Order, error) {
	poller := NewPoller(o.venue, o.logger, o.opts.PollInterval).WithClock(o.clock)

	var lastStatus string
	poller.Observe = func(order *exchange.Order) {
		o.state.ObservePoll(order.Status)
		if order.Status != lastStatus {
			lastStatus = order.Status
			o.publisher.OrderStatusChanged(ctx, order)
			o.recordOrder(ctx, order)
		}
	}

	return poller.AwaitSettlement(ctx, orderID)
}

// fail funnels every error path: metric, failure event, state, one log line.
func (o *Orchestrator) fail(reason string, err error) error {
	metrics.IncError("orchestrator", reason)
	o.publisher.WorkflowFailed(context.Background(), err.Error())
	o.state.Fail(err.Error())
	o.logger.Error("exec.failed",
		zap.String("step", reason),
		zap.Error(err))
	return err
}

// recordBalance and recordOrder are best-effort: snapshot store failures are
// logged, never fatal.
func (o *Orchestrator) recordBalance(ctx context.Context, acct *exchange.Account) {
	if o.snapshots == nil {
		return
	}
	err := o.snapshots.RecordBalance(ctx, store.BalanceSnapshot{
		Venue:     "COINBASE",
		Currency:  acct.Currency,
		Available: acct.Available.String(),
		Hold:      acct.Hold.String(),
		AsOf:      time.Now().UTC(),
	})
	if err != nil {
		o.logger.Warn("exec.snapshot_failed", zap.Error(err))
	}
}

func (o *Orchestrator) recordOrder(ctx context.Context, order *exchange.Order) {
	if o.snapshots == nil {
		return
	}
	err := o.snapshots.RecordOrder(ctx, store.OrderSnapshot{
		OrderID:    order.ID,
		ProductID:  order.ProductID,
		Status:     order.Status,
		Settled:    order.Settled,
		FilledSize: order.FilledSize.String(),
		Funds:      order.Funds.String(),
		AsOf:       time.Now().UTC(),
	})
	if err != nil {
		o.logger.Warn("exec.snapshot_failed", zap.Error(err))
	}
}
