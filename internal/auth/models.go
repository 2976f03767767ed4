// Package auth defines the request and result models of the credential
// resolver and registration flows.
package auth

import id "gesher/pkg/domain"

// Credentials is the raw sign-in input. Phone is free-form; the service
// normalizes it.
type Credentials struct {
	Phone    string
	Password string
}

// Registration is the raw registration input.
type Registration struct {
	Phone      string
	FirstName  string
	LastName   string
	Password   string
	IsResident bool
}

// SignInStage tracks how far the credential resolver progressed. The stages
// form a one-way machine: ProviderAuth, then LegacyFallback when the
// provider has no such account, then Migrated when the legacy credential
// checked out and a provider account was minted.
type SignInStage string

const (
	StageProviderAuth   SignInStage = "provider_auth"
	StageLegacyFallback SignInStage = "legacy_fallback"
	StageMigrated       SignInStage = "migrated"
)

// SignInResult reports a successful sign-in. Session state is derived from
// the provider's session event, not from this result; callers use it for
// logging and token issuance only.
type SignInResult struct {
	Phone id.Phone
	// Stage is the final resolver stage; StageMigrated means this call
	// performed the one-time promotion of a legacy credential.
	Stage SignInStage
}

// RegisterResult reports a successful registration.
type RegisterResult struct {
	Phone id.Phone
	// OwnerUID is the provider's internal identifier for the new account.
	OwnerUID string
}
