// Package identity bridges phone-keyed users onto an email-oriented identity
// provider. The mapper is the only place the synthetic account namespace is
// constructed or parsed; everything else treats AccountID as opaque.
package identity

import (
	"strings"

	id "gesher/pkg/domain"
)

const (
	// accountLocalPrefix marks local parts minted by this mapper so genuine
	// email accounts can never be mistaken for phone identities.
	accountLocalPrefix = "p"
	// syntheticDomain is the fixed domain of the synthetic namespace. It is
	// never registered for mail; it only satisfies the provider's email
	// shape requirements.
	syntheticDomain = "phone.gesher.app"
)

// AccountIDFor deterministically embeds a canonical phone into the synthetic
// account namespace. Distinct phones map to distinct account IDs and the same
// phone always maps identically.
func AccountIDFor(p id.Phone) id.AccountID {
	return id.AccountID(accountLocalPrefix + p.String() + "@" + syntheticDomain)
}

// PhoneFromAccountID inverts AccountIDFor. The second return is false for any
// identifier the mapper did not produce (a genuine email account, a foreign
// domain, a malformed local part); callers must treat that as "not a phone
// identity" and degrade gracefully rather than fail.
func PhoneFromAccountID(a id.AccountID) (id.Phone, bool) {
	s := a.String()
	at := strings.IndexByte(s, '@')
	if at < 0 || s[at+1:] != syntheticDomain {
		return "", false
	}
	local := s[:at]
	if !strings.HasPrefix(local, accountLocalPrefix) {
		return "", false
	}
	digits := local[len(accountLocalPrefix):]
	if digits == "" || !allDigits(digits) {
		return "", false
	}
	p, err := id.ParsePhone(digits)
	if err != nil || p.String() != digits {
		// A valid mapper output is already canonical; anything that changes
		// under normalization was not minted here.
		return "", false
	}
	return p, true
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
