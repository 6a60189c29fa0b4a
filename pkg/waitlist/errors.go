package waitlist

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEmail is returned before any ledger call when the address fails the syntax check.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrNotFound is returned by lookups and by IncrementReferralCount when no row matches.
	ErrNotFound = errors.New("signup not found")

	// ErrStoreUnavailable wraps every ledger failure that is not a recognised outcome.
	// Callers should treat it as retryable.
	ErrStoreUnavailable = errors.New("ledger store unavailable")

	// ErrReferralAttributionFailed is reported in Outcome.AttributionErr; it never fails a join.
	ErrReferralAttributionFailed = errors.New("referral attribution failed")

	// ErrDuplicateEmail is returned by Ledger.Insert when the email unique constraint rejects the row.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrDuplicateReferralCode is returned by Ledger.Insert when the generated code is already taken.
	ErrDuplicateReferralCode = errors.New("referral code already taken")

	// ErrReferralCodeExhausted means every generated code collided.
	ErrReferralCodeExhausted = errors.New("could not allocate a unique referral code")
)

func storeErr(op string, err error) error {
	if errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}
