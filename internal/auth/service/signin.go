package service

import (
	"context"
	"errors"
	"time"

	"gesher/internal/auth"
	"gesher/internal/identity"
	id "gesher/pkg/domain"
	dErrors "gesher/pkg/domain-errors"
	"gesher/pkg/platform/audit"
)

// SignIn resolves credentials against the provider first and falls back to
// legacy-credential verification with just-in-time migration. Steps are
// strictly sequential and never retried here.
//
// Whether a phone is unknown or the password is wrong is deliberately not
// distinguishable from the result; both are CodeInvalidCredentials.
func (s *Service) SignIn(ctx context.Context, creds auth.Credentials) (*auth.SignInResult, error) {
	start := time.Now()

	if creds.Password == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "password required")
	}
	phone, err := id.ParsePhone(creds.Phone)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "phone number is not valid")
	}

	accountID := identity.AccountIDFor(phone)
	stage := auth.StageProviderAuth

	err = s.provider.SignIn(ctx, accountID, creds.Password)
	switch {
	case err == nil:
		s.observeSignIn("success", start)
		s.logAudit(ctx, audit.EventUserSignedIn, audit.Event{Phone: phone})
		return &auth.SignInResult{Phone: phone, Stage: stage}, nil

	case errors.Is(err, identity.ErrAccountNotFound):
		stage = auth.StageLegacyFallback
		return s.signInLegacy(ctx, phone, accountID, creds.Password, stage, start)

	case errors.Is(err, identity.ErrInvalidPassword):
		s.observeSignIn("invalid_credentials", start)
		s.logAudit(ctx, audit.EventSignInFailed, audit.Event{Phone: phone, Reason: "invalid_credentials"})
		return nil, dErrors.New(dErrors.CodeInvalidCredentials, "wrong phone or password")

	default:
		s.observeSignIn("provider_error", start)
		s.logger.ErrorContext(ctx, "provider sign-in failed",
			"phone", phone.Display(),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeProvider, "identity provider sign-in failed")
	}
}

// signInLegacy is the LegacyFallback stage: verify against the phone-keyed
// legacy record and, on a match, promote it to a provider account. The
// promotion is the only path outside registration that mutates the provider,
// and it happens at most once per phone - the next sign-in finds the account
// and takes the normal provider path.
func (s *Service) signInLegacy(
	ctx context.Context,
	phone id.Phone,
	accountID id.AccountID,
	password string,
	stage auth.SignInStage,
	start time.Time,
) (*auth.SignInResult, error) {
	ok, err := s.legacy.Verify(ctx, phone, password)
	if err != nil {
		s.observeSignIn("provider_error", start)
		return nil, dErrors.Wrap(err, dErrors.CodeProvider, "legacy credential lookup failed")
	}
	if !ok {
		// Unknown phone and wrong legacy password collapse into the same
		// failure on purpose.
		s.observeSignIn("invalid_credentials", start)
		s.logAudit(ctx, audit.EventSignInFailed, audit.Event{Phone: phone, Reason: "invalid_credentials"})
		return nil, dErrors.New(dErrors.CodeInvalidCredentials, "wrong phone or password")
	}

	_, err = s.provider.CreateAccount(ctx, accountID, password)
	switch {
	case err == nil:
		stage = auth.StageMigrated
		s.logger.InfoContext(ctx, "legacy credential migrated to provider account",
			"phone", phone.Display(),
		)
		if s.metrics != nil {
			s.metrics.LegacyMigrations.Inc()
		}
		s.observeSignIn("migrated", start)
		s.logAudit(ctx, audit.EventLegacyMigrated, audit.Event{Phone: phone, Reason: "sign_in"})
		return &auth.SignInResult{Phone: phone, Stage: stage}, nil

	case errors.Is(err, identity.ErrAccountExists):
		// The account appeared between the provider refusal and our create.
		// Its password is now the source of truth, and we have not verified
		// the supplied one against it, so fail closed.
		s.logger.WarnContext(ctx, "migration lost race to concurrent account creation",
			"phone", phone.Display(),
		)
		s.observeSignIn("invalid_credentials", start)
		return nil, dErrors.New(dErrors.CodeInvalidCredentials, "wrong phone or password")

	default:
		s.observeSignIn("provider_error", start)
		return nil, dErrors.Wrap(err, dErrors.CodeProvider, "provider account creation failed during migration")
	}
}

func (s *Service) observeSignIn(outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveSignIn(outcome, start)
	}
}
