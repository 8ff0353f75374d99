package execution

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/quantfold/coinbuy/internal/exchange"
	"github.com/quantfold/coinbuy/internal/metrics"
)

// Clock abstracts the inter-poll wait so tests can simulate elapsed time.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OrderFetcher is the read-only slice of the venue the poller needs.
type OrderFetcher interface {
	GetOrder(ctx context.Context, id string) (*exchange.Order, error)
}

// Poller fetches an order at a fixed interval until it leaves the pending
// state. There is deliberately no retry cap and no backoff: venue settlement
// latency is unbounded, so the loop neither hammers the API nor gives up.
// Callers bound the total wait through ctx.
type Poller struct {
	venue    OrderFetcher
	logger   *zap.Logger
	interval time.Duration
	clock    Clock

	// Observe, when set, receives every fetched snapshot before the pending
	// check. Used for status tracking and event emission.
	Observe func(*exchange.Order)
}

// NewPoller builds a poller with the real wall clock.
func NewPoller(venue OrderFetcher, logger *zap.Logger, interval time.Duration) *Poller {
	return &Poller{
		venue:    venue,
		logger:   logger,
		interval: interval,
		clock:    realClock{},
	}
}

// WithClock swaps the wait implementation (tests).
func (p *Poller) WithClock(c Clock) *Poller {
	p.clock = c
	return p
}

// AwaitSettlement polls until the order reaches any non-pending status and
// returns that snapshot unmodified. Each iteration is a fresh fetch; nothing
// is cached between polls. A fetch failure surfaces immediately as a
// PollingError, and ctx cancellation or deadline expiry aborts the wait.
func (p *Poller) AwaitSettlement(ctx context.Context, orderID string) (*exchange.Order, error) {
	for attempt := 1; ; attempt++ {
		order, err := p.venue.GetOrder(ctx, orderID)
		if err != nil {
			metrics.IncError("poller", "fetch_failed")
			return nil, &PollingError{OrderID: orderID, Err: err}
		}

		metrics.IncSettlementPoll(order.Status)
		if p.Observe != nil {
			p.Observe(order)
		}

		if !order.IsPending() {
			p.logger.Info("exec.poll_complete",
				zap.String("order_id", orderID),
				zap.String("status", order.Status),
				zap.Bool("settled", order.Settled),
				zap.Int("polls", attempt))
			return order, nil
		}

		p.logger.Debug("exec.poll_pending",
			zap.String("order_id", orderID),
			zap.Int("polls", attempt))

		if err := p.clock.Sleep(ctx, p.interval); err != nil {
			return nil, err
		}
	}
}
