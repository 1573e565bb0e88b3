// internal/domain/pill/classify.go
package pill

import "time"

const (
	// TooEarlyThreshold is fixed at two hours regardless of the configured
	// delay threshold: taking a dose far ahead of schedule risks doubling
	// up, so the guard must not widen with a generous late window.
	TooEarlyThreshold = 2 * time.Hour

	// DefaultDelayThresholdMinutes is the late window applied when the
	// user has not configured one.
	DefaultDelayThresholdMinutes = 120
)

// Classify maps an actual taking time against its schedule to one of the
// "taken" family statuses. The too-early check runs first: a dose taken
// far ahead of schedule would otherwise fail the window test and be
// reported as delayed.
func Classify(scheduled, actual time.Time, delayThresholdMinutes int) PillStatus {
	delta := actual.Sub(scheduled)
	if -delta >= TooEarlyThreshold {
		return StatusTakenTooEarly
	}
	if withinDelayWindow(delta, delayThresholdMinutes) {
		return StatusTaken
	}
	return StatusTakenDelayed
}

// withinDelayWindow compares whole hours, not minutes: a dose 2h30 after
// a 09:00 schedule still counts as on time under the default 120-minute
// threshold, while 3h00 does not.
func withinDelayWindow(delta time.Duration, delayThresholdMinutes int) bool {
	if delta < 0 {
		delta = -delta
	}
	return int(delta/time.Hour) <= delayThresholdMinutes/60
}
