package models

import (
	"time"

	"github.com/thankyoudiscord/waitlist/pkg/waitlist"
)

// EntryPayload is the public view of a signup, including what the landing
// page needs to render the share box.
type EntryPayload struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	ReferralCode  string    `json:"referral_code"`
	ReferredBy    *string   `json:"referred_by"`
	Position      int64     `json:"position"`
	ReferralCount int64     `json:"referral_count"`
	CreatedAt     time.Time `json:"created_at"`
	ShareURL      string    `json:"share_url"`
	ShareMessage  string    `json:"share_message"`

	// Set by SetProgress; omitted when the total could not be read.
	TotalSignups    *int64 `json:"total_signups,omitempty"`
	ProgressPercent *int   `json:"progress_percent,omitempty"`
}

type JoinPayload struct {
	Status string `json:"status"`
	EntryPayload
}

type LeaderPayload struct {
	Email         string `json:"email"`
	ReferralCount int64  `json:"referral_count"`
}

type StatsPayload struct {
	TotalSignups    int64           `json:"total_signups"`
	ReferralLeaders []LeaderPayload `json:"referral_leaders"`
}

func NewEntryPayload(s waitlist.Signup, publicURL string) EntryPayload {
	return EntryPayload{
		ID:            s.ID,
		Email:         s.Email,
		ReferralCode:  s.ReferralCode,
		ReferredBy:    s.ReferredBy,
		Position:      s.Position,
		ReferralCount: s.ReferralCount,
		CreatedAt:     s.CreatedAt,
		ShareURL:      waitlist.ShareLink(publicURL, s.ReferralCode),
		ShareMessage:  waitlist.ShareMessage(publicURL, s.ReferralCode),
	}
}

func (p *EntryPayload) SetProgress(total int64) {
	percent := waitlist.ProgressPercent(p.Position, total)
	p.TotalSignups = &total
	p.ProgressPercent = &percent
}

func NewJoinPayload(out waitlist.Outcome, publicURL string) JoinPayload {
	return JoinPayload{
		Status:       out.Kind.String(),
		EntryPayload: NewEntryPayload(out.Signup, publicURL),
	}
}

// NewStatsPayload always renders referral_leaders as a list, never null.
func NewStatsPayload(stats waitlist.Stats) StatsPayload {
	leaders := make([]LeaderPayload, 0, len(stats.ReferralLeaders))
	for _, l := range stats.ReferralLeaders {
		leaders = append(leaders, LeaderPayload{
			Email:         l.Email,
			ReferralCount: l.ReferralCount,
		})
	}
	return StatsPayload{
		TotalSignups:    stats.TotalSignups,
		ReferralLeaders: leaders,
	}
}
