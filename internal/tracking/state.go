package tracking

import (
	"sync"
	"time"
)

// Phase names the workflow step currently in flight.
type Phase string

const (
	PhaseStarting           Phase = "starting"
	PhaseBalanceCheck       Phase = "balance_check"
	PhasePairResolution     Phase = "pair_resolution"
	PhaseSubmitting         Phase = "submitting"
	PhaseAwaitingSettlement Phase = "awaiting_settlement"
	PhaseDone               Phase = "done"
	PhaseFailed             Phase = "failed"
)

// State is the live view of one workflow run, safe for concurrent reads from
// the status server while the orchestrator writes. A nil *State is valid and
// records nothing.
type State struct {
	mu          sync.RWMutex
	phase       Phase
	orderID     string
	orderStatus string
	polls       int
	failure     string
	startedAt   time.Time
	updatedAt   time.Time
}

// Snapshot is the JSON view served by the status endpoint.
type Snapshot struct {
	Phase       Phase     `json:"phase"`
	OrderID     string    `json:"order_id,omitempty"`
	OrderStatus string    `json:"order_status,omitempty"`
	Polls       int       `json:"polls"`
	Failure     string    `json:"failure,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewState starts a run in the starting phase.
func NewState() *State {
	now := time.Now().UTC()
	return &State{phase: PhaseStarting, startedAt: now, updatedAt: now}
}

// SetPhase advances the run to the given phase.
func (s *State) SetPhase(p Phase) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = p
	s.updatedAt = time.Now().UTC()
}

// SetOrder records the venue order id once placement succeeds.
func (s *State) SetOrder(orderID string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderID = orderID
	s.updatedAt = time.Now().UTC()
}

// ObservePoll records one settlement poll observation.
func (s *State) ObservePoll(status string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls++
	s.orderStatus = status
	s.updatedAt = time.Now().UTC()
}

// Fail marks the run failed with a reason.
func (s *State) Fail(reason string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = PhaseFailed
	s.failure = reason
	s.updatedAt = time.Now().UTC()
}

// Snapshot returns a copy for serving.
func (s *State) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Phase:       s.phase,
		OrderID:     s.orderID,
		OrderStatus: s.orderStatus,
		Polls:       s.polls,
		Failure:     s.failure,
		StartedAt:   s.startedAt,
		UpdatedAt:   s.updatedAt,
	}
}
