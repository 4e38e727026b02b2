// Package audit emits best-effort audit events for reputation lifecycle
// actions. Publication failures never fail the triggering operation; services
// log and continue.
package audit

import (
	"context"
	"sync"
	"time"

	"lexara/pkg/domain"
)

// Event captures a key action for the audit trail. Keep it transport-agnostic
// so sinks can fan out.
type Event struct {
	Timestamp time.Time     `json:"timestamp"`
	UserID    domain.UserID `json:"user_id"`
	Action    Action        `json:"action"`
	Subject   string        `json:"subject"`
	Reason    string        `json:"reason,omitempty"`
	AnchorTx  string        `json:"anchor_tx,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
}

// Action enumerates audited lifecycle actions.
type Action string

const (
	ActionEventAppended        Action = "reputation_event_appended"
	ActionCredentialSubmitted  Action = "credential_submitted"
	ActionCredentialVerified   Action = "credential_verified"
	ActionCredentialRejected   Action = "credential_rejected"
	ActionCredentialRevoked    Action = "credential_revoked"
	ActionCredentialExpired    Action = "credential_expired"
	ActionAttestationRecorded  Action = "attestation_recorded"
)

// Publisher is the audit sink port.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}

// MemoryPublisher collects events in memory for tests.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

// NewMemoryPublisher constructs an empty in-memory publisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

// Emit records the event.
func (p *MemoryPublisher) Emit(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns a copy of everything emitted so far.
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}
