package waitlist

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	ReferralCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	ReferralCodeLength   = 8
)

// NewReferralCode draws an 8 character code from a 36 symbol alphabet.
func NewReferralCode() (string, error) {
	return gonanoid.Generate(ReferralCodeAlphabet, ReferralCodeLength)
}
