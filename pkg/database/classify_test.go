package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/thankyoudiscord/waitlist/pkg/waitlist"
)

func TestClassifyPostgresErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "referral code unique",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "idx_signups_referral_code"},
			want: waitlist.ErrDuplicateReferralCode,
		},
		{
			name: "email unique",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "idx_signups_email"},
			want: waitlist.ErrDuplicateEmail,
		},
		{
			name: "wrapped by gorm",
			err:  fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "idx_signups_referral_code"}),
			want: waitlist.ErrDuplicateReferralCode,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classify(tc.err)
			require.ErrorIs(t, got, tc.want)

			var pgErr *pgconn.PgError
			require.ErrorAs(t, got, &pgErr)
		})
	}
}

func TestClassifyPassesOtherErrorsThrough(t *testing.T) {
	notNull := &pgconn.PgError{Code: "23502", ConstraintName: "idx_signups_email"}
	require.Same(t, error(notNull), classify(notNull))

	plain := errors.New("connection reset")
	got := classify(plain)
	require.Equal(t, plain, got)
	require.NotErrorIs(t, got, waitlist.ErrDuplicateEmail)
	require.NotErrorIs(t, got, waitlist.ErrDuplicateReferralCode)
}
