package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// feedSubscribe is the subscription frame for the venue websocket feed.
type feedSubscribe struct {
	Type       string   `json:"type"` // "subscribe"
	ProductIDs []string `json:"product_ids"`
	Channels   []string `json:"channels"` // ["ticker"]
}

type feedMessage struct {
	Type      string `json:"type"`
	ProductID string `json:"product_id"`
	Price     string `json:"price"`
	Message   string `json:"message"` // set on type "error"
}

// FetchTicker connects to the public websocket feed, subscribes to the ticker
// channel for one product, and returns the first price it sees. The price is
// informational only; the venue's execution remains the source of truth for
// what the order actually costs.
func FetchTicker(ctx context.Context, logger *zap.Logger, feedURL, productID string) (decimal.Decimal, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, feedURL, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("dial feed %s: %w", feedURL, err)
	}
	defer conn.Close() //nolint:errcheck

	sub := feedSubscribe{
		Type:       "subscribe",
		ProductIDs: []string{productID},
		Channels:   []string{"ticker"},
	}
	if err := conn.WriteJSON(sub); err != nil {
		return decimal.Zero, fmt.Errorf("subscribe ticker: %w", err)
	}

	deadline := time.Now().Add(10 * time.Second)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetReadDeadline(deadline)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return decimal.Zero, fmt.Errorf("read feed: %w", err)
		}

		var msg feedMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			logger.Debug("feed.decode_failed", zap.Error(err))
			continue
		}

		switch msg.Type {
		case "error":
			return decimal.Zero, fmt.Errorf("feed error: %s", msg.Message)
		case "ticker":
			price, err := decimal.NewFromString(msg.Price)
			if err != nil {
				return decimal.Zero, fmt.Errorf("feed ticker price %q: %w", msg.Price, err)
			}
			return price, nil
		default:
			// subscriptions ack, heartbeats: keep reading
		}
	}
}
