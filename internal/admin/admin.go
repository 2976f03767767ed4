// Package admin decides whether a phone number carries administrative
// authority. The check is a pure predicate over a fixed allow-list, cheap
// enough to call on every render.
package admin

import (
	"strings"

	"gesher/pkg/phone"
	pstrings "gesher/pkg/platform/strings"
)

// suffixLen is the number of trailing digits compared in the lenient match.
// It tolerates country-code formatting drift between stored and live values;
// tightening it only requires touching this package.
const suffixLen = 9

// Checker answers IsAdmin against a fixed allow-list.
type Checker struct {
	entries []string
}

// NewChecker builds a checker from allow-list entries in any phone spelling.
func NewChecker(allowList []string) *Checker {
	normalized := make([]string, 0, len(allowList))
	for _, raw := range allowList {
		if e := domesticForm(raw); e != "" {
			normalized = append(normalized, e)
		}
	}
	return &Checker{entries: pstrings.DedupeAndTrim(normalized)}
}

// IsAdmin reports whether the given phone, in any spelling, is on the
// allow-list. Empty input is never an admin. A candidate matches an entry
// exactly or by sharing the same trailing digits.
func (c *Checker) IsAdmin(raw string) bool {
	candidate := domesticForm(raw)
	if candidate == "" {
		return false
	}
	for _, entry := range c.entries {
		if candidate == entry || sameSuffix(candidate, entry) {
			return true
		}
	}
	return false
}

// domesticForm strips separators and collapses the country code back onto
// the trunk prefix, so "0523985505", "+972523985505" and "972523985505" all
// compare equal.
func domesticForm(raw string) string {
	digits := phone.StripNonDigits(raw)
	if strings.HasPrefix(digits, phone.CountryCode) {
		return phone.TrunkPrefix + digits[len(phone.CountryCode):]
	}
	return digits
}

func sameSuffix(a, b string) bool {
	if len(a) < suffixLen || len(b) < suffixLen {
		return false
	}
	return a[len(a)-suffixLen:] == b[len(b)-suffixLen:]
}
