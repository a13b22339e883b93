package audit

import (
	"context"
	"time"
)

// Event is emitted from domain logic to capture key trust registry actions.
// It is transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	Action    string
	Subject   string // DID the action applies to
	Actor     string // DID that performed the action (issuer, endorser, revoker, verifier)
	Decision  string
	Reason    string
	RequestID string
}

// Trust registry actions.
const (
	ActionEntityRegistered = "entity_registered"
	ActionAnchorSeeded     = "anchor_seeded"
	ActionEndorsed         = "entity_endorsed"
	ActionRevoked          = "entity_revoked"
	ActionRevokeDenied     = "revoke_denied"
	ActionVerified         = "entity_verified"
)

// Decisions recorded on events.
const (
	DecisionGranted  = "granted"
	DecisionDenied   = "denied"
	DecisionVerified = "verified"
	DecisionRejected = "rejected"
)

// Store persists audit events. Implementations must be safe for concurrent use.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Emitter is the interface services depend on. Satisfied by publisher.Publisher.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}
