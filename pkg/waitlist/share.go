package waitlist

import (
	"fmt"
	"net/url"
)

// ShareLink returns baseURL with the referral code in the ref query parameter.
func ShareLink(baseURL, code string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL + "?ref=" + url.QueryEscape(code)
	}
	q := u.Query()
	q.Set("ref", code)
	u.RawQuery = q.Encode()
	return u.String()
}

func ShareMessage(baseURL, code string) string {
	return fmt.Sprintf(
		"Join me on the waitlist for the next big thing! Use my referral code: %s\n\n%s",
		code,
		ShareLink(baseURL, code),
	)
}
