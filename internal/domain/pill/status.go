// internal/domain/pill/status.go
package pill

import "time"

// PillStatus is the adherence state of a single scheduled dose.
// The set is closed: persistence and messaging rely on every value
// being one of the constants below.
type PillStatus string

const (
	StatusTaken                PillStatus = "TAKEN"
	StatusTakenDelayed         PillStatus = "TAKEN_DELAYED"
	StatusTakenDouble          PillStatus = "TAKEN_DOUBLE"
	StatusMissed               PillStatus = "MISSED"
	StatusTodayNotTaken        PillStatus = "TODAY_NOT_TAKEN"
	StatusTodayTaken           PillStatus = "TODAY_TAKEN"
	StatusTodayTakenDelayed    PillStatus = "TODAY_TAKEN_DELAYED"
	StatusTodayDelayed         PillStatus = "TODAY_DELAYED"
	StatusScheduled            PillStatus = "SCHEDULED"
	StatusRest                 PillStatus = "REST"
	StatusTodayTakenTooEarly   PillStatus = "TODAY_TAKEN_TOO_EARLY"
	StatusTakenTooEarly        PillStatus = "TAKEN_TOO_EARLY"
	StatusTodayDelayedCritical PillStatus = "TODAY_DELAYED_CRITICAL"
)

// AllStatuses lists every member of the closed set, in declaration order.
var AllStatuses = []PillStatus{
	StatusTaken,
	StatusTakenDelayed,
	StatusTakenDouble,
	StatusMissed,
	StatusTodayNotTaken,
	StatusTodayTaken,
	StatusTodayTakenDelayed,
	StatusTodayDelayed,
	StatusScheduled,
	StatusRest,
	StatusTodayTakenTooEarly,
	StatusTakenTooEarly,
	StatusTodayDelayedCritical,
}

// IsToday reports whether the status is one of the "today" recolorings.
func (s PillStatus) IsToday() bool {
	switch s {
	case StatusTodayNotTaken, StatusTodayTaken, StatusTodayTakenDelayed,
		StatusTodayDelayed, StatusTodayTakenTooEarly, StatusTodayDelayedCritical:
		return true
	case StatusTaken, StatusTakenDelayed, StatusTakenDouble, StatusMissed,
		StatusScheduled, StatusRest, StatusTakenTooEarly:
		return false
	}
	return false
}

// IsTaken reports whether the status belongs to the "taken" family,
// i.e. the dose was actually swallowed (on time, delayed, early or double).
func (s PillStatus) IsTaken() bool {
	switch s {
	case StatusTaken, StatusTakenDelayed, StatusTakenDouble, StatusTakenTooEarly,
		StatusTodayTaken, StatusTodayTakenDelayed, StatusTodayTakenTooEarly:
		return true
	case StatusMissed, StatusTodayNotTaken, StatusTodayDelayed, StatusScheduled,
		StatusRest, StatusTodayDelayedCritical:
		return false
	}
	return false
}

// TodayVariant recolors a historical status for display on its own day.
// StatusTakenDouble and StatusRest are fixed points; statuses that are
// already a today variant are returned unchanged.
func (s PillStatus) TodayVariant() PillStatus {
	switch s {
	case StatusTaken:
		return StatusTodayTaken
	case StatusTakenDelayed:
		return StatusTodayTakenDelayed
	case StatusTakenTooEarly:
		return StatusTodayTakenTooEarly
	case StatusScheduled:
		return StatusTodayNotTaken
	case StatusMissed:
		return StatusTodayDelayed
	case StatusTakenDouble, StatusRest:
		return s
	case StatusTodayNotTaken, StatusTodayTaken, StatusTodayTakenDelayed,
		StatusTodayDelayed, StatusTodayTakenTooEarly, StatusTodayDelayedCritical:
		return s
	}
	return s
}

// HistoricalVariant recolors a today status for display after its day
// has passed. StatusTodayDelayedCritical collapses into StatusMissed:
// once the day is over the extra urgency carries no information.
func (s PillStatus) HistoricalVariant() PillStatus {
	switch s {
	case StatusTodayTaken:
		return StatusTaken
	case StatusTodayTakenDelayed:
		return StatusTakenDelayed
	case StatusTodayTakenTooEarly:
		return StatusTakenTooEarly
	case StatusTodayNotTaken:
		return StatusScheduled
	case StatusTodayDelayed, StatusTodayDelayedCritical:
		return StatusMissed
	case StatusTakenDouble, StatusRest:
		return s
	case StatusTaken, StatusTakenDelayed, StatusMissed, StatusScheduled, StatusTakenTooEarly:
		return s
	}
	return s
}

// AdjustedForDate reinterprets a persisted status for display: the today
// variant when recordDate falls on the same calendar day as now, the
// historical variant otherwise.
func (s PillStatus) AdjustedForDate(recordDate, now time.Time) PillStatus {
	if IsSameDay(recordDate, now) {
		return s.TodayVariant()
	}
	return s.HistoricalVariant()
}
