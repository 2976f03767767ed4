package service

import (
	"context"
	"errors"
	"strings"

	"gesher/internal/auth"
	"gesher/internal/identity"
	"gesher/internal/profile"
	id "gesher/pkg/domain"
	dErrors "gesher/pkg/domain-errors"
	"gesher/pkg/platform/audit"
)

// Register provisions a provider account and a profile for a new phone.
// The profile-store pre-check gives early feedback; the provider's own
// uniqueness enforcement at account creation is the authoritative guard, so
// the loser of a registration race gets the same AlreadyRegistered answer.
func (s *Service) Register(ctx context.Context, reg auth.Registration) (*auth.RegisterResult, error) {
	firstName := strings.TrimSpace(reg.FirstName)
	lastName := strings.TrimSpace(reg.LastName)
	if firstName == "" || lastName == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "first and last name required")
	}
	if strings.TrimSpace(reg.Password) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "password required")
	}
	phone, err := id.ParsePhone(reg.Phone)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "phone number is not valid")
	}

	registered, err := s.profiles.IsRegistered(ctx, phone)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeProvider, "registration lookup failed")
	}
	if registered {
		return nil, dErrors.New(dErrors.CodeAlreadyRegistered, "phone already registered")
	}

	handle, err := s.provider.CreateAccount(ctx, identity.AccountIDFor(phone), reg.Password)
	if err != nil {
		if errors.Is(err, identity.ErrAccountExists) {
			// Lost a race with a concurrent registration, or the phone was
			// already migrated from a legacy credential.
			return nil, dErrors.New(dErrors.CodeAlreadyRegistered, "phone already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeProvider, "provider account creation failed")
	}

	p := &profile.Profile{
		Phone:      phone,
		FirstName:  firstName,
		LastName:   lastName,
		IsResident: reg.IsResident,
	}
	if err := s.profiles.Save(ctx, p, handle); err != nil {
		// The provider account exists; a repeat attempt fails fast with
		// AlreadyRegistered via the provider guard, so surface the store
		// failure instead of pretending the registration completed.
		s.logger.ErrorContext(ctx, "profile save failed after account creation",
			"phone", phone.Display(),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeProvider, "profile persistence failed")
	}

	if s.metrics != nil {
		s.metrics.Registrations.Inc()
	}
	s.logAudit(ctx, audit.EventUserRegistered, audit.Event{Phone: phone})
	s.logger.InfoContext(ctx, "user registered", "phone", phone.Display(), "resident", reg.IsResident)

	return &auth.RegisterResult{Phone: phone, OwnerUID: handle.UID}, nil
}
