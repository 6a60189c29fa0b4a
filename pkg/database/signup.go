package database

import (
	"time"

	"github.com/thankyoudiscord/waitlist/pkg/waitlist"
)

type Signup struct {
	ID            string `gorm:"primaryKey;size:36"`
	Email         string `gorm:"not null;uniqueIndex:idx_signups_email"`
	ReferralCode  string `gorm:"not null;size:16;uniqueIndex:idx_signups_referral_code"`
	ReferredBy    *string
	Position      int64     `gorm:"not null;uniqueIndex:idx_signups_position"`
	ReferralCount int64     `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

func (Signup) TableName() string { return "signups" }

func (s Signup) toSignup() waitlist.Signup {
	return waitlist.Signup{
		ID:            s.ID,
		Email:         s.Email,
		ReferralCode:  s.ReferralCode,
		ReferredBy:    s.ReferredBy,
		Position:      s.Position,
		ReferralCount: s.ReferralCount,
		CreatedAt:     s.CreatedAt.UTC(),
	}
}
