package session

import "strconv"

// FormatScore renders a raw thirds accumulator for display: three raw units
// make one point, anything else shows as an explicit fraction.
func FormatScore(raw int) string {
	if raw%3 == 0 {
		return strconv.Itoa(raw / 3)
	}
	return strconv.Itoa(raw) + " / 3"
}
