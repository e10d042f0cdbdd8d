package datasource

import "time"

// matchday 22 was played the week of 2026-01-20
var secondHalfStart = time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)

const week = 7 * 24 * time.Hour

func weeksSince(start, now time.Time) int {
	d := now.Sub(start)
	if d < 0 {
		// round towards minus infinity
		return -int((-d + week - 1) / week)
	}
	return int(d / week)
}

// EstimateRound guesses the current round of the second half of the season
func EstimateRound(now time.Time) int {
	return clamp(weeksSince(secondHalfStart, now)+22, 22, 38)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
