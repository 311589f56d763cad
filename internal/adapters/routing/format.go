package routing

import (
	"fmt"
	"math"
)

// FormatDuration renders seconds the way map UIs label drive times:
// "1 min", "12 mins", "1 hour 5 mins", "2 hours".
func FormatDuration(seconds float64) string {
	mins := int(math.Round(seconds / 60))
	if mins < 1 {
		mins = 1
	}

	hours := mins / 60
	mins = mins % 60

	switch {
	case hours == 0:
		return plural(mins, "min")
	case mins == 0:
		return plural(hours, "hour")
	default:
		return plural(hours, "hour") + " " + plural(mins, "min")
	}
}

// FormatDistance renders meters as "850 m" below one kilometre and with
// one decimal ("8.4 km") above it. Long distances drop the decimal.
func FormatDistance(meters float64) string {
	switch {
	case meters < 1000:
		return fmt.Sprintf("%d m", int(math.Round(meters)))
	case meters < 100_000:
		return fmt.Sprintf("%.1f km", meters/1000)
	default:
		return fmt.Sprintf("%d km", int(math.Round(meters/1000)))
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
