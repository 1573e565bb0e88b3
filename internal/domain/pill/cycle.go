// internal/domain/pill/cycle.go
package pill

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PillInfo describes the regimen being tracked: how many consecutive
// days the medication is taken and how many break days follow.
type PillInfo struct {
	Name       string
	TakingDays int
	BreakDays  int
}

// RecordMemo is the free-text annotation attached to a day record. Tag
// names are snapshotted so that a memo stays readable after the user
// deletes a side-effect tag.
type RecordMemo struct {
	Note             string           `json:"note"`
	SideEffectTagIDs []int64          `json:"side_effect_tag_ids,omitempty"`
	TagNames         map[int64]string `json:"tag_names,omitempty"`
}

// DayRecord is one scheduled dose within a cycle. CycleDay is 1-indexed.
type DayRecord struct {
	ID          uuid.UUID
	CycleDay    int
	Status      PillStatus
	ScheduledAt time.Time
	TakenAt     sql.NullTime // valid iff Status.IsTaken()
	Memo        *RecordMemo
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Cycle is one medication regimen run: TakingDays active days followed
// by BreakDays rest days, one DayRecord per day. A Cycle owns its
// records exclusively; mutators return a fresh Cycle value rather than
// aliasing the slice.
type Cycle struct {
	ID            uuid.UUID
	CycleNumber   int
	StartDate     time.Time
	TakingDays    int
	BreakDays     int
	ScheduledTime string // "HH:mm"
	Records       []DayRecord
	CreatedAt     time.Time
}

// NewCycle generates a complete cycle from regimen setup. Day records
// are seeded by comparing each day against "now": break days are REST,
// future days SCHEDULED, the current day TODAY_NOT_TAKEN, and any day
// strictly in the past is backfilled as TAKEN at its scheduled time.
// The backfill assumes compliance for days before the cycle was created
// (a cycle started mid-regimen has no adherence data to recover).
func NewCycle(info PillInfo, cycleNumber int, startDate time.Time, scheduledTime string, now time.Time) (Cycle, error) {
	if info.TakingDays <= 0 {
		return Cycle{}, fmt.Errorf("taking days must be positive, got %d", info.TakingDays)
	}
	if info.BreakDays < 0 {
		return Cycle{}, fmt.Errorf("break days must not be negative, got %d", info.BreakDays)
	}
	hour, minute, err := ParseTimeOfDay(scheduledTime)
	if err != nil {
		return Cycle{}, err
	}

	c := Cycle{
		ID:            uuid.New(),
		CycleNumber:   cycleNumber,
		StartDate:     StartOfDay(startDate),
		TakingDays:    info.TakingDays,
		BreakDays:     info.BreakDays,
		ScheduledTime: scheduledTime,
		CreatedAt:     now,
	}

	today := StartOfDay(now)
	totalDays := info.TakingDays + info.BreakDays
	records := make([]DayRecord, 0, totalDays)
	for day := 1; day <= totalDays; day++ {
		dayDate := AddDays(c.StartDate, day-1)
		scheduledAt := CombineDateAndTime(dayDate, hour, minute)

		var status PillStatus
		var takenAt sql.NullTime
		switch {
		case day > info.TakingDays:
			status = StatusRest
		case dayDate.After(today):
			status = StatusScheduled
		case dayDate.Equal(today):
			status = StatusTodayNotTaken
		default:
			status = StatusTaken
			takenAt = sql.NullTime{Time: scheduledAt, Valid: true}
		}

		records = append(records, DayRecord{
			ID:          uuid.New(),
			CycleDay:    day,
			Status:      status,
			ScheduledAt: scheduledAt,
			TakenAt:     takenAt,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	c.Records = records
	return c, nil
}

// TotalDays is the cycle length in days.
func (c Cycle) TotalDays() int { return c.TakingDays + c.BreakDays }

// IsActiveDay reports whether the 1-indexed cycle day is a taking day.
func (c Cycle) IsActiveDay(day int) bool {
	return day >= 1 && day <= c.TakingDays
}

// IsBreakDay reports whether the 1-indexed cycle day is a rest day.
func (c Cycle) IsBreakDay(day int) bool {
	return day > c.TakingDays && day <= c.TotalDays()
}

// CurrentDay computes the 1-indexed cycle day for "now". The value is
// derived from the clock on every call, never cached: days before the
// start yield zero or negative numbers, days past the end run beyond
// TotalDays.
func (c Cycle) CurrentDay(now time.Time) int {
	return WholeDaysBetween(StartOfDay(c.StartDate), StartOfDay(now)) + 1
}

// IsCurrentlyInBreakPeriod reports whether "now" falls on a rest day.
func (c Cycle) IsCurrentlyInBreakPeriod(now time.Time) bool {
	return c.IsBreakDay(c.CurrentDay(now))
}

// IsCycleCompleted reports whether the cycle has run its course. The
// final day already counts as completed, matching the advisory engine's
// "cycle complete" cutover.
func (c Cycle) IsCycleCompleted(now time.Time) bool {
	return c.CurrentDay(now) >= c.TotalDays()
}

// DaysUntilStart is the whole-day count from "now" to the start date
// (0 on the start day itself, negative once the cycle has begun).
func (c Cycle) DaysUntilStart(now time.Time) int {
	return WholeDaysBetween(StartOfDay(now), StartOfDay(c.StartDate))
}

// RecordForDay returns the index of the record scheduled on the same
// calendar day as date, or -1 when the date is outside the cycle.
func (c Cycle) RecordForDay(date time.Time) int {
	for i, rec := range c.Records {
		if IsSameDay(rec.ScheduledAt, date) {
			return i
		}
	}
	return -1
}

// clone copies the cycle together with its record slice so that a
// mutator never aliases the input's backing array.
func (c Cycle) clone() Cycle {
	records := make([]DayRecord, len(c.Records))
	copy(records, c.Records)
	c.Records = records
	return c
}
