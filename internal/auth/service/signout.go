package service

import (
	"context"

	dErrors "gesher/pkg/domain-errors"
	"gesher/pkg/platform/audit"
	"gesher/pkg/requestcontext"
)

// SignOut tears down the provider session and clears local session state
// synchronously. The local clear does not wait for the provider's session
// event so the caller never observes a window of stale signed-in state.
func (s *Service) SignOut(ctx context.Context) error {
	phone := requestcontext.Phone(ctx)

	err := s.provider.SignOut(ctx)

	// Clear locally even when the provider call failed; a half-torn-down
	// session must not keep presenting a signed-in user.
	if s.sessions != nil {
		s.sessions.ClearNow(ctx)
	}

	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeProvider, "provider sign-out failed")
	}

	s.logAudit(ctx, audit.EventUserSignedOut, audit.Event{Phone: phone})
	return nil
}
