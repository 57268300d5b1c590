package domain

import (
	"math"
	"strconv"
)

// FormatDuration renders seconds as a short human-readable ETA such as "<1m", "42m" or "1h 15m".
func FormatDuration(seconds float64) string {
	switch {
	case seconds < 60:
		return "<1m"
	case seconds < 3600:
		return strconv.Itoa(roundHalfEven(seconds/60)) + "m"
	default:
		hours := int(math.Floor(seconds / 3600))
		minutes := roundHalfEven(math.Mod(seconds, 3600) / 60)
		if minutes > 0 {
			return strconv.Itoa(hours) + "h " + strconv.Itoa(minutes) + "m"
		}
		return strconv.Itoa(hours) + "h"
	}
}

// roundHalfEven rounds to the nearest integer, ties to even.
func roundHalfEven(v float64) int {
	return int(math.RoundToEven(v))
}
