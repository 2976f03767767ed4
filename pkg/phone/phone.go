// Package phone canonicalizes free-form phone input into the single dialable
// form used as the stable user key across the bridge. All functions are pure;
// validation (minimum length etc.) is the caller's concern.
package phone

import "strings"

const (
	// CountryCode is the international prefix all canonical numbers carry.
	CountryCode = "972"
	// TrunkPrefix is the domestic leading digit replaced by CountryCode.
	TrunkPrefix = "0"
)

// Normalize strips separators and collapses the number onto the country code:
// a trunk-prefixed number gets the prefix swapped for the country code, an
// already country-coded number is kept, anything else has the country code
// prepended. Total and idempotent; never fails.
func Normalize(input string) string {
	digits := StripNonDigits(input)
	switch {
	case digits == "":
		return digits
	case strings.HasPrefix(digits, CountryCode):
		return digits
	case strings.HasPrefix(digits, TrunkPrefix):
		return CountryCode + digits[len(TrunkPrefix):]
	default:
		return CountryCode + digits
	}
}

// Display renders a canonical number back into the domestic form users
// recognize ("0" prefix, dash after the operator block). Non-canonical input
// is returned unchanged.
func Display(canonical string) string {
	if !strings.HasPrefix(canonical, CountryCode) {
		return canonical
	}
	domestic := TrunkPrefix + canonical[len(CountryCode):]
	if len(domestic) != 10 {
		return domestic
	}
	return domestic[:3] + "-" + domestic[3:]
}

// StripNonDigits drops every rune outside '0'..'9'.
func StripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
