package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/quantfold/coinbuy/internal/exchange"
	"github.com/quantfold/coinbuy/internal/metrics"
)

// Subjects follow the evt.<entity>.<event>.v1.<venue> convention.
const (
	SubjectOrderPlaced        = "evt.order.placed.v1.COINBASE"
	SubjectOrderStatusChanged = "evt.order.status_changed.v1.COINBASE"
	SubjectOrderSettled       = "evt.order.settled.v1.COINBASE"
	SubjectWorkflowFailed     = "evt.workflow.failed.v1.COINBASE"
)

// Envelope is the canonical event wrapper. RunID ties every event of one
// workflow invocation together.
type Envelope struct {
	ID        uuid.UUID       `json:"id"`
	RunID     uuid.UUID       `json:"run_id"`
	EventType string          `json:"event_type"`
	Version   string          `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Publisher emits order lifecycle events to NATS. A nil *Publisher is valid
// and publishes nothing, so event emission stays optional.
type Publisher struct {
	nc      *nats.Conn
	logger  *zap.Logger
	service string
	runID   uuid.UUID
}

// New creates a Publisher bound to one workflow run.
func New(nc *nats.Conn, logger *zap.Logger, service string) *Publisher {
	return &Publisher{
		nc:      nc,
		logger:  logger,
		service: service,
		runID:   uuid.New(),
	}
}

// Conn exposes the underlying connection for health checks.
func (p *Publisher) Conn() *nats.Conn {
	if p == nil {
		return nil
	}
	return p.nc
}

// OrderPlaced emits the acceptance snapshot returned by the venue.
func (p *Publisher) OrderPlaced(ctx context.Context, order *exchange.Order) {
	p.publish(ctx, SubjectOrderPlaced, "order.placed", order)
}

// OrderStatusChanged emits a poll observation whose status differs from the
// previous one.
func (p *Publisher) OrderStatusChanged(ctx context.Context, order *exchange.Order) {
	p.publish(ctx, SubjectOrderStatusChanged, "order.status_changed", order)
}

// OrderSettled emits the final settled order.
func (p *Publisher) OrderSettled(ctx context.Context, order *exchange.Order) {
	p.publish(ctx, SubjectOrderSettled, "order.settled", order)
}

// WorkflowFailed emits the terminal failure reason.
func (p *Publisher) WorkflowFailed(ctx context.Context, reason string) {
	p.publish(ctx, SubjectWorkflowFailed, "workflow.failed", map[string]string{"reason": reason})
}

func (p *Publisher) publish(_ context.Context, subject, eventType string, payload any) {
	if p == nil || p.nc == nil {
		return
	}

	env, err := p.buildEnvelope(eventType, payload)
	if err != nil {
		p.logger.Debug("events.marshal_failed", zap.String("subject", subject), zap.Error(err))
		metrics.IncError("events", "marshal_failed")
		return
	}

	data, err := json.Marshal(env)
	if err != nil {
		metrics.IncError("events", "marshal_failed")
		return
	}

	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"event_type":   []string{eventType},
			"run_id":       []string{env.RunID.String()},
			"service":      []string{p.service},
			"content_type": []string{"application/json"},
		},
	}

	// Events are advisory; a publish failure must never fail the workflow.
	if err := p.nc.PublishMsg(msg); err != nil {
		p.logger.Debug("events.publish_failed", zap.String("subject", subject), zap.Error(err))
		metrics.IncError("events", "publish_failed")
		return
	}

	p.logger.Debug("events.published",
		zap.String("subject", subject),
		zap.String("event_type", eventType))
}

func (p *Publisher) buildEnvelope(eventType string, payload any) (*Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		ID:        uuid.New(),
		RunID:     p.runID,
		EventType: eventType,
		Version:   "1.0.0",
		Timestamp: time.Now().UTC(),
		Payload:   raw,
	}, nil
}
