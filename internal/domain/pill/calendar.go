// internal/domain/pill/calendar.go
package pill

import "time"

// CalendarCell is the per-day view model consumed by the calendar
// surface: one cell per cycle day with the status reinterpreted for the
// viewing date.
type CalendarCell struct {
	CycleDay    int
	Date        time.Time
	Status      PillStatus
	ScheduledAt time.Time
}

// BuildCalendarCells derives one cell per day record, in cycle-day
// order.
func BuildCalendarCells(c Cycle, delayThresholdMinutes int, now time.Time) []CalendarCell {
	cells := make([]CalendarCell, 0, len(c.Records))
	for _, rec := range c.Records {
		cells = append(cells, CalendarCell{
			CycleDay:    rec.CycleDay,
			Date:        StartOfDay(rec.ScheduledAt),
			Status:      derivedStatusWithOverride(rec, delayThresholdMinutes, now),
			ScheduledAt: rec.ScheduledAt,
		})
	}
	return cells
}
