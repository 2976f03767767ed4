// Package service implements the credential resolver, registration flow and
// sign-out. It is the only layer that talks to the identity provider for
// credential operations, and it fully classifies provider failures into the
// domain error vocabulary before returning.
package service

import (
	"context"
	"log/slog"

	"gesher/internal/auth/metrics"
	"gesher/internal/identity"
	"gesher/internal/legacy"
	"gesher/internal/profile"
	"gesher/pkg/platform/audit"
	"gesher/pkg/platform/audit/publisher"
	"gesher/pkg/requestcontext"
)

// SessionClearer is the slice of the session synchronizer sign-out needs:
// an immediate local clear that does not wait for the provider's session
// event, so the UI never shows a flash of stale state.
type SessionClearer interface {
	ClearNow(ctx context.Context)
}

// Service orchestrates sign-in, registration and sign-out.
type Service struct {
	provider identity.Provider
	profiles profile.Store
	legacy   legacy.Store
	sessions SessionClearer
	audit    *publisher.Publisher
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithMetrics attaches prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithSessionClearer attaches the synchronizer used for the synchronous
// clear on sign-out.
func WithSessionClearer(c SessionClearer) Option {
	return func(s *Service) { s.sessions = c }
}

// New constructs the auth service.
func New(
	provider identity.Provider,
	profiles profile.Store,
	legacyCreds legacy.Store,
	auditPub *publisher.Publisher,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		provider: provider,
		profiles: profiles,
		legacy:   legacyCreds,
		audit:    auditPub,
		logger:   logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// logAudit emits an audit event, degrading to a log line if the publisher
// fails; audit trouble must never fail an auth operation.
func (s *Service) logAudit(ctx context.Context, action audit.AuditEvent, event audit.Event) {
	if s.audit == nil {
		return
	}
	event.Action = string(action)
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed", "action", action, "error", err)
	}
}
