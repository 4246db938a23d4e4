package service

import "time"

// canAct reports whether the cooldown since last has elapsed. A zero last
// means no prior action.
func canAct(last, now time.Time, cooldown time.Duration) bool {
	if last.IsZero() {
		return true
	}
	return now.Sub(last) >= cooldown
}

// timeUntil returns how long until canAct becomes true, never negative.
func timeUntil(last, now time.Time, cooldown time.Duration) time.Duration {
	if last.IsZero() {
		return 0
	}
	remaining := cooldown - now.Sub(last)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// nextStreak continues the streak when the previous action is within the
// window and resets it to 1 otherwise.
func nextStreak(current uint64, last, now time.Time, window time.Duration) uint64 {
	if last.IsZero() || now.Sub(last) > window {
		return 1
	}
	return current + 1
}

// samePeriod reports whether a and b fall in the same period-aligned window.
// Windows are aligned to the zero time, so a 24h period splits at UTC midnight.
func samePeriod(a, b time.Time, period time.Duration) bool {
	return a.Truncate(period).Equal(b.Truncate(period))
}
