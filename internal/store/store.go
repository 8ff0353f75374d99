package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// snapshotTTL bounds how long a stale snapshot can linger; each run rewrites
// the keys it touches anyway.
const snapshotTTL = 24 * time.Hour

// BalanceSnapshot is the funding account state observed during the
// precondition check. Amounts are exact decimal strings.
type BalanceSnapshot struct {
	Venue     string    `json:"venue"`
	Currency  string    `json:"currency"`
	Available string    `json:"available"`
	Hold      string    `json:"hold"`
	AsOf      time.Time `json:"as_of"`
}

// OrderSnapshot is the most recent order state observed while polling.
type OrderSnapshot struct {
	OrderID    string    `json:"order_id"`
	ProductID  string    `json:"product_id"`
	Status     string    `json:"status"`
	Settled    bool      `json:"settled"`
	FilledSize string    `json:"filled_size"`
	Funds      string    `json:"funds"`
	AsOf       time.Time `json:"as_of"`
}

// Store records workflow observations so an operator can inspect the last run
// (or a run in flight) out-of-process. It is optional: a nil Store disables
// recording without touching the workflow.
type Store interface {
	RecordBalance(ctx context.Context, snap BalanceSnapshot) error
	RecordOrder(ctx context.Context, snap OrderSnapshot) error
	LastOrder(ctx context.Context, orderID string) (*OrderSnapshot, error)
	HealthCheck(ctx context.Context) error
	Close() error
}

// RedisStore keeps snapshots in Redis under coinbuy:* keys.
type RedisStore struct {
	redis  *redis.Client
	logger *zap.Logger
}

// NewRedis connects and pings the Redis instance.
func NewRedis(addr string, db int, pass string, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		DB:       db,
		Password: pass,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisStore{redis: rdb, logger: logger}, nil
}

func balanceKey(currency string) string { return "coinbuy:balance:" + currency }
func orderKey(orderID string) string    { return "coinbuy:order:" + orderID }

func (s *RedisStore) RecordBalance(ctx context.Context, snap BalanceSnapshot) error {
	return s.setJSON(ctx, balanceKey(snap.Currency), snap)
}

func (s *RedisStore) RecordOrder(ctx context.Context, snap OrderSnapshot) error {
	return s.setJSON(ctx, orderKey(snap.OrderID), snap)
}

// LastOrder returns the most recently recorded state for an order, or
// (nil, nil) when nothing has been recorded.
func (s *RedisStore) LastOrder(ctx context.Context, orderID string) (*OrderSnapshot, error) {
	raw, err := s.redis.Get(ctx, orderKey(orderID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", orderKey(orderID), err)
	}

	var snap OrderSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("corrupt order snapshot %s: %w", orderKey(orderID), err)
	}
	return &snap, nil
}

func (s *RedisStore) setJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, key, data, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	s.logger.Debug("store.snapshot_recorded", zap.String("key", key))
	return nil
}

func (s *RedisStore) HealthCheck(ctx context.Context) error {
	if s.redis == nil {
		return fmt.Errorf("redis not initialized")
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}
