package database

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thankyoudiscord/waitlist/pkg/waitlist"
)

func TestMemoryLedgerConcurrentInserts(t *testing.T) {
	m := NewMemoryLedger()
	ctx := context.Background()

	const n = 200
	var wg sync.WaitGroup
	positions := make([]int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s := waitlist.Signup{
				Email:        fmt.Sprintf("user%d@x.com", i),
				ReferralCode: fmt.Sprintf("CODE%04d", i),
			}
			assert.NoError(t, m.Insert(ctx, &s))
			positions[i] = s.Position
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, n)
	for _, p := range positions {
		require.False(t, seen[p], "position %d assigned twice", p)
		require.True(t, p >= 1 && p <= n)
		seen[p] = true
	}
}

func TestMemoryLedgerConcurrentIncrements(t *testing.T) {
	m := NewMemoryLedger()
	ctx := context.Background()

	s := waitlist.Signup{Email: "a@x.com", ReferralCode: "AAAAAAAA"}
	require.NoError(t, m.Insert(ctx, &s))

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.IncrementReferralCount(ctx, "AAAAAAAA")
		}()
	}
	wg.Wait()

	got, err := m.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, int64(n), got.ReferralCount)
}

func TestMemoryLedgerReturnsCopies(t *testing.T) {
	m := NewMemoryLedger()
	ctx := context.Background()

	s := waitlist.Signup{Email: "a@x.com", ReferralCode: "AAAAAAAA"}
	require.NoError(t, m.Insert(ctx, &s))

	got, err := m.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	got.ReferralCount = 99

	again, err := m.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Zero(t, again.ReferralCount)
}

func TestMemoryLedgerHonoursCancelledContext(t *testing.T) {
	m := NewMemoryLedger()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Count(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestMemoryLedgerDoesNotAliasReferredBy(t *testing.T) {
	m := NewMemoryLedger()
	ctx := context.Background()

	ref := "AAAAAAAA"
	s := waitlist.Signup{Email: "b@x.com", ReferralCode: "BBBBBBBB", ReferredBy: &ref}
	require.NoError(t, m.Insert(ctx, &s))

	ref = "CHANGED0"
	*s.ReferredBy = "CHANGED1"

	got, err := m.GetByEmail(ctx, "b@x.com")
	require.NoError(t, err)
	require.Equal(t, "AAAAAAAA", *got.ReferredBy)

	*got.ReferredBy = "CHANGED2"
	top, err := m.TopByReferralCount(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "AAAAAAAA", *top[0].ReferredBy)
}
