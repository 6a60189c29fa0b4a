package waitlist

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM\t"))
}

func TestValidEmail(t *testing.T) {
	valid := []string{
		"a@x.com",
		"first.last+tag@sub.example.co.uk",
		"x_y-z@a-b.io",
	}
	for _, e := range valid {
		require.True(t, ValidEmail(e), e)
	}

	invalid := []string{
		"",
		"not-an-email",
		"a@b",
		"@x.com",
		"a@.com",
		"a@x.",
		"a@x..com",
		"a@@x.com",
		"a b@x.com",
		"a@x .com",
	}
	for _, e := range invalid {
		require.False(t, ValidEmail(e), e)
	}
}

func TestNormalizeAndValidate(t *testing.T) {
	got, err := normalizeAndValidate(" B@X.com ")
	require.NoError(t, err)
	require.Equal(t, "b@x.com", got)

	_, err = normalizeAndValidate("b@x")
	require.ErrorIs(t, err, ErrInvalidEmail)
}
