// Package domain holds the identity primitives shared across the bridge.
// Primitives enforce validity at parse time so downstream code can trust
// them without re-checking.
package domain

import (
	"fmt"

	"gesher/pkg/phone"
)

// Canonical phone length bounds. The lower bound admits short legacy
// landline numbers, the upper bound is the E.164 maximum.
const (
	minCanonicalDigits = 11
	maxCanonicalDigits = 15
)

// Phone is a canonical, country-coded phone number. It is the stable
// external key for a person; profiles, legacy credentials and the admin
// allow-list are all addressed by it.
type Phone string

// ParsePhone normalizes raw input and validates that the result is a
// plausible phone number. Normalization itself is total; the length check is
// what separates real numbers from junk input.
func ParsePhone(raw string) (Phone, error) {
	canonical := phone.Normalize(raw)
	if len(canonical) < minCanonicalDigits || len(canonical) > maxCanonicalDigits {
		return "", fmt.Errorf("implausible phone number length %d", len(canonical))
	}
	return Phone(canonical), nil
}

// String returns the canonical dialable form.
func (p Phone) String() string {
	return string(p)
}

// Display returns the domestic form for UI surfaces.
func (p Phone) Display() string {
	return phone.Display(string(p))
}

// IsNil reports whether the phone is the zero value.
func (p Phone) IsNil() bool {
	return p == ""
}

// AccountID is the synthetic identifier addressing the identity provider's
// email-style account namespace. It exists only to satisfy the provider's
// account model and must never leak into profiles or API responses.
type AccountID string

// String returns the raw account identifier.
func (a AccountID) String() string {
	return string(a)
}

// IsNil reports whether the account ID is the zero value.
func (a AccountID) IsNil() bool {
	return a == ""
}
