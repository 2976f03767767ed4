// Package legacy verifies pre-existing phone/password records created by
// administrative tooling outside the identity provider. The bridge only ever
// reads these records; once a holder signs in, the credential resolver
// promotes them to a real provider account and this store is no longer
// consulted for that phone.
package legacy

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/alexedwards/argon2id"

	id "gesher/pkg/domain"
)

// Store is the legacy credential lookup contract.
type Store interface {
	// Verify reports whether a legacy record exists for the phone and the
	// supplied plaintext matches it. A missing record is (false, nil), not
	// an error; only store failures return a non-nil error.
	Verify(ctx context.Context, phone id.Phone, password string) (bool, error)
}

const argon2idPrefix = "$argon2id$"

// matchSecret compares a supplied plaintext against a stored secret. Newer
// provisioning tooling writes argon2id hashes; older rows hold plaintext and
// get a constant-time comparison.
func matchSecret(stored, supplied string) (bool, error) {
	if strings.HasPrefix(stored, argon2idPrefix) {
		return argon2id.ComparePasswordAndHash(supplied, stored)
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1, nil
}
