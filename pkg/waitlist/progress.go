package waitlist

import "math"

// ProgressPercent is the share of signups that joined after position,
// rounded to a whole percent. The landing page shows it as "Top N%".
// A total behind position (a stale count) yields 0.
func ProgressPercent(position, total int64) int {
	if total <= 0 || position > total {
		return 0
	}
	return int(math.Round(float64(total-position) / float64(total) * 100))
}
