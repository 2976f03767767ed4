// Package audit captures the security-relevant actions of the bridge:
// sign-ins, legacy migrations, registrations and sign-outs. Events are
// emitted from domain logic and fanned out to a store or a Kafka sink.
package audit

import (
	"context"
	"time"

	id "gesher/pkg/domain"
)

// AuditEvent names a recorded action.
type AuditEvent string

const (
	EventUserSignedIn   AuditEvent = "auth.user_signed_in"
	EventSignInFailed   AuditEvent = "auth.sign_in_failed"
	EventLegacyMigrated AuditEvent = "auth.legacy_migrated"
	EventUserRegistered AuditEvent = "auth.user_registered"
	EventUserSignedOut  AuditEvent = "auth.user_signed_out"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	Phone     id.Phone
	Action    string
	// Reason carries the failure class or migration trigger, never raw
	// provider diagnostics.
	Reason string
	// RequestID is the correlation ID from the HTTP request context.
	RequestID string
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	List(ctx context.Context, phone id.Phone) ([]Event, error)
}
