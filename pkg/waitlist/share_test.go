package waitlist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShareLink(t *testing.T) {
	require.Equal(t, "https://example.com/?ref=ABCD1234", ShareLink("https://example.com/", "ABCD1234"))
	require.Equal(t, "https://example.com/join?ref=ABCD1234&utm=x", ShareLink("https://example.com/join?utm=x", "ABCD1234"))
	require.Equal(t, "https://example.com/?ref=NEW00000", ShareLink("https://example.com/?ref=OLD00000", "NEW00000"))
}

func TestShareMessage(t *testing.T) {
	msg := ShareMessage("https://example.com/", "ABCD1234")
	require.True(t, strings.HasPrefix(msg, "Join me on the waitlist"))
	require.Contains(t, msg, "referral code: ABCD1234")
	require.True(t, strings.HasSuffix(msg, "https://example.com/?ref=ABCD1234"))
}
