package waitlist

import (
	"regexp"
	"strings"
)

// local-part "@" domain with at least one dot and no empty labels
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@.]+(\.[^\s@.]+)+$`)

// NormalizeEmail trims and lowercases an address. Lookups and inserts both go
// through it so "A@X.com" and "a@x.com" are the same signup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func normalizeAndValidate(email string) (string, error) {
	email = NormalizeEmail(email)
	if !ValidEmail(email) {
		return "", ErrInvalidEmail
	}
	return email, nil
}
