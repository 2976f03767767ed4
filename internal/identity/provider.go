package identity

import (
	"context"
	"errors"

	id "gesher/pkg/domain"
)

// Classified provider failures. Adapters translate their backend's error
// codes into these; anything else is surfaced as-is and treated as an opaque
// provider failure by the services.
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrAccountExists   = errors.New("account already exists")
)

// Handle identifies an authenticated provider account. UID is the provider's
// own internal identifier; AccountID is the synthetic address the account
// was created under.
type Handle struct {
	UID       string
	AccountID id.AccountID
}

// Provider is the narrow contract this core consumes from the identity
// provider. Account creation and sign-in address the synthetic namespace;
// session state is pushed through the OnSessionChange subscription.
type Provider interface {
	// CreateAccount provisions a new account. Returns ErrAccountExists when
	// the account ID is already taken.
	CreateAccount(ctx context.Context, accountID id.AccountID, password string) (Handle, error)

	// SignIn validates credentials and establishes the provider session.
	// Returns ErrAccountNotFound or ErrInvalidPassword when classified.
	SignIn(ctx context.Context, accountID id.AccountID, password string) error

	// SignOut tears down the current provider session.
	SignOut(ctx context.Context) error

	// OnSessionChange registers a long-lived listener for session state.
	// The listener receives the current handle (nil when signed out)
	// immediately on subscribe and again on every change, at arbitrary
	// times. The returned func removes the listener.
	OnSessionChange(fn func(*Handle)) (unsubscribe func())
}
