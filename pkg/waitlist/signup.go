package waitlist

import (
	"context"
	"time"
)

// Signup is one row of the waitlist ledger. There is exactly one per email.
type Signup struct {
	ID            string
	Email         string
	ReferralCode  string
	ReferredBy    *string
	Position      int64
	ReferralCount int64
	CreatedAt     time.Time
}

// Leader is one leaderboard line.
type Leader struct {
	Email         string
	ReferralCount int64
}

type Stats struct {
	TotalSignups    int64
	ReferralLeaders []Leader
}

type OutcomeKind int

const (
	Created OutcomeKind = iota + 1
	AlreadyRegistered
)

func (k OutcomeKind) String() string {
	switch k {
	case Created:
		return "created"
	case AlreadyRegistered:
		return "already_registered"
	default:
		return "unknown"
	}
}

// Outcome is the result of a successful Join. AttributionErr is set when the
// signup was created but crediting the referrer failed.
type Outcome struct {
	Kind           OutcomeKind
	Signup         Signup
	AttributionErr error
}

// Ledger is the durable signup table the service orchestrates.
//
// Insert assigns ID, Position and CreatedAt on the passed record. Position must
// come from a store-side counter so concurrent inserts never share a value.
// Unique violations are reported as ErrDuplicateEmail or ErrDuplicateReferralCode.
//
// IncrementReferralCount must be a single atomic server-side update and returns
// ErrNotFound when no record owns the code.
type Ledger interface {
	Insert(ctx context.Context, s *Signup) error
	GetByEmail(ctx context.Context, email string) (Signup, error)
	IncrementReferralCount(ctx context.Context, code string) error
	Count(ctx context.Context) (int64, error)
	TopByReferralCount(ctx context.Context, limit int) ([]Signup, error)
}

// Publisher receives ledger events. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, subject string, v any) error
}

const (
	SubjectSignupCreated      = "waitlist.signup.created"
	SubjectReferralAttributed = "waitlist.referral.attributed"
)

type SignupCreated struct {
	ID         string  `json:"id"`
	Email      string  `json:"email"`
	Position   int64   `json:"position"`
	ReferredBy *string `json:"referred_by,omitempty"`
}

type ReferralAttributed struct {
	ReferralCode  string `json:"referral_code"`
	ReferredEmail string `json:"referred_email"`
}
