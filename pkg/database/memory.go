package database

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thankyoudiscord/waitlist/pkg/waitlist"
)

// MemoryLedger is a process-local waitlist.Ledger with the same uniqueness
// and sequencing rules as the SQL ledger. Nothing survives a restart.
type MemoryLedger struct {
	mu       sync.RWMutex
	byEmail  map[string]*waitlist.Signup
	byCode   map[string]*waitlist.Signup
	position int64
	now      func() time.Time
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		byEmail: make(map[string]*waitlist.Signup),
		byCode:  make(map[string]*waitlist.Signup),
		now:     time.Now,
	}
}

func (m *MemoryLedger) Insert(ctx context.Context, s *waitlist.Signup) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byEmail[s.Email]; ok {
		return waitlist.ErrDuplicateEmail
	}
	if _, ok := m.byCode[s.ReferralCode]; ok {
		return waitlist.ErrDuplicateReferralCode
	}

	m.position++
	row := &waitlist.Signup{
		ID:           uuid.NewString(),
		Email:        s.Email,
		ReferralCode: s.ReferralCode,
		ReferredBy:   cloneString(s.ReferredBy),
		Position:     m.position,
		CreatedAt:    m.now().UTC(),
	}
	m.byEmail[row.Email] = row
	m.byCode[row.ReferralCode] = row

	*s = snapshot(row)
	return nil
}

func (m *MemoryLedger) GetByEmail(ctx context.Context, email string) (waitlist.Signup, error) {
	if err := ctx.Err(); err != nil {
		return waitlist.Signup{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.byEmail[email]
	if !ok {
		return waitlist.Signup{}, waitlist.ErrNotFound
	}
	return snapshot(row), nil
}

func (m *MemoryLedger) IncrementReferralCount(ctx context.Context, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.byCode[code]
	if !ok {
		return waitlist.ErrNotFound
	}
	row.ReferralCount++
	return nil
}

func (m *MemoryLedger) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.byEmail)), nil
}

func (m *MemoryLedger) TopByReferralCount(ctx context.Context, limit int) ([]waitlist.Signup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []waitlist.Signup{}, nil
	}

	m.mu.RLock()
	rows := make([]waitlist.Signup, 0, len(m.byEmail))
	for _, row := range m.byEmail {
		rows = append(rows, snapshot(row))
	}
	m.mu.RUnlock()

	slices.SortFunc(rows, func(a, b waitlist.Signup) int {
		if c := cmp.Compare(b.ReferralCount, a.ReferralCount); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Position, b.Position)
	})

	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (m *MemoryLedger) Ping(ctx context.Context) error {
	return ctx.Err()
}

// snapshot copies row so callers never share memory with the stored record.
func snapshot(row *waitlist.Signup) waitlist.Signup {
	out := *row
	out.ReferredBy = cloneString(row.ReferredBy)
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
