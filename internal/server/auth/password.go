// Package auth contains the cryptographic building blocks of the login flow:
// password hashing, password-strength rules, access-token issuance and
// verification, and failed-attempt lockout accounting. Everything here is
// stateless and side-effect free; persistence belongs to the repositories.
package auth

import (
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher wraps bcrypt with a configured work factor.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	return &PasswordHasher{cost: cost}
}

// Hash produces a self-describing bcrypt hash (algorithm, cost and salt are
// embedded in the output). It fails only if the entropy source does.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plaintext matches the stored hash. Malformed stored
// hashes yield false, never an error; the caller maps that to the generic
// invalid-credential outcome.
func (h *PasswordHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

const minPasswordLength = 8

var (
	reLower  = regexp.MustCompile(`[a-z]`)
	reUpper  = regexp.MustCompile(`[A-Z]`)
	reDigit  = regexp.MustCompile(`\d`)
	reSymbol = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
)

// ValidateStrength checks the password rules and returns every violated rule,
// not just the first, so callers can present complete feedback.
func ValidateStrength(pw string) (bool, []string) {
	var violations []string
	if len(pw) < minPasswordLength {
		violations = append(violations, "must be at least 8 characters long")
	}
	if !reLower.MatchString(pw) {
		violations = append(violations, "must contain a lowercase letter")
	}
	if !reUpper.MatchString(pw) {
		violations = append(violations, "must contain an uppercase letter")
	}
	if !reDigit.MatchString(pw) {
		violations = append(violations, "must contain a digit")
	}
	if !reSymbol.MatchString(pw) {
		violations = append(violations, "must contain a symbol")
	}
	return len(violations) == 0, violations
}
