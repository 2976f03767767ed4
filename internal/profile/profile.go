// Package profile owns the user profile records keyed by canonical phone.
// Profiles are created by the registration flow, read by the session
// synchronizer, and never deleted by this core.
package profile

import (
	"context"
	"strings"

	"gesher/internal/identity"
	id "gesher/pkg/domain"
)

// Profile is the stored user record. OwnerUID links it to the provider's
// internal account identifier; the synthetic account ID itself is never
// persisted.
type Profile struct {
	Phone      id.Phone
	FirstName  string
	LastName   string
	IsResident bool
	OwnerUID   string
}

// FullName joins the name parts, tolerating blanks.
func (p *Profile) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

// Store is the profile persistence contract.
type Store interface {
	// Get returns the profile for a phone, or sentinel.ErrNotFound.
	Get(ctx context.Context, phone id.Phone) (*Profile, error)
	// Save persists the profile under its phone, associated with the owning
	// provider account. Overwrites are allowed; callers guard uniqueness.
	Save(ctx context.Context, p *Profile, owner identity.Handle) error
	// IsRegistered reports whether a profile exists for the phone.
	IsRegistered(ctx context.Context, phone id.Phone) (bool, error)
}
