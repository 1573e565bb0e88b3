package pill

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAdviseBeforeStart(t *testing.T) {
	eval := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	c := mustNewCycle(t, standardPill, eval.AddDate(0, 0, 3), "09:00", eval)
	assert.Equal(t, "Your cycle starts in 3 days.", Advise(c, eval, DefaultDelayThresholdMinutes).Text)

	c = mustNewCycle(t, standardPill, eval.AddDate(0, 0, 1), "09:00", eval)
	assert.Equal(t, "Your cycle starts tomorrow.", Advise(c, eval, DefaultDelayThresholdMinutes).Text)

	c = mustNewCycle(t, standardPill, eval, "09:00", eval)
	m := Advise(c, StartOfDay(eval), DefaultDelayThresholdMinutes)
	assert.Equal(t, "Your cycle starts today. The first pill is coming up!", m.Text)
	assert.Equal(t, IconCalendar, m.IconKey)
}

func TestAdviseCycleComplete(t *testing.T) {
	eval := time.Date(2025, 7, 7, 10, 0, 0, 0, time.UTC)
	c := mustNewCycle(t, standardPill, eval.AddDate(0, 0, -27), "09:00", eval) // day 28

	m := Advise(c, eval, DefaultDelayThresholdMinutes)
	assert.Contains(t, m.Text, "Cycle complete")
	assert.Equal(t, CharacterHappy, m.CharacterImageKey)
}

func TestAdviseRestDay(t *testing.T) {
	eval := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	c := mustNewCycle(t, standardPill, eval.AddDate(0, 0, -21), "09:00", eval) // day 22

	m := Advise(c, eval, DefaultDelayThresholdMinutes)
	assert.Equal(t, "Break day. No pill today, enjoy the rest!", m.Text)
	assert.Equal(t, BackgroundRest, m.BackgroundImageKey)
}

func TestAdviseEarlyTaking(t *testing.T) {
	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	takeAt := start.AddDate(0, 0, 2).Add(6*time.Hour + 30*time.Minute)
	c := mustNewCycle(t, standardPill, start, "09:00", takeAt)
	c = TakePill(c, DefaultDelayThresholdMinutes, takeAt)

	m := Advise(c, takeAt.Add(time.Minute), DefaultDelayThresholdMinutes)
	assert.Contains(t, m.Text, "quite early")
	assert.Equal(t, CharacterWorried, m.CharacterImageKey)
}

func TestAdviseConsecutiveMissedStreak(t *testing.T) {
	eval := time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC)
	c := mustNewCycle(t, standardPill, eval.AddDate(0, 0, -10), "09:00", eval) // day 11

	// Days 8-10 were never taken; day 7 was.
	for _, idx := range []int{7, 8, 9} {
		c = UpdateRecordStatus(c, idx, StatusMissed, nil, nil, eval)
	}

	m := Advise(c, eval, DefaultDelayThresholdMinutes)
	assert.Equal(t, "You have missed 3 days in a row. Check the leaflet for how to continue, and consider asking your doctor.", m.Text)
	assert.Equal(t, CharacterAlarmed, m.CharacterImageKey)
}

func TestAdviseYesterdayMissed(t *testing.T) {
	eval := time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC)
	c := mustNewCycle(t, standardPill, eval.AddDate(0, 0, -10), "09:00", eval)
	c = UpdateRecordStatus(c, 9, StatusMissed, nil, nil, eval) // day 10 only

	m := Advise(c, eval, DefaultDelayThresholdMinutes)
	assert.Contains(t, m.Text, "Yesterday's pill was missed")
}

func TestAdviseCriticallyDelayed(t *testing.T) {
	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	eval := start.AddDate(0, 0, 4).Add(21 * time.Hour) // 12h past the 09:00 dose
	c := mustNewCycle(t, standardPill, start, "09:00", eval)

	m := Advise(c, eval, DefaultDelayThresholdMinutes)
	assert.Equal(t, "Today's pill is long overdue. Take it as soon as possible.", m.Text)
	assert.Equal(t, CharacterAlarmed, m.CharacterImageKey)
}

func TestAdviseDoubleDose(t *testing.T) {
	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	eval := start.AddDate(0, 0, 4).Add(14 * time.Hour)
	c := mustNewCycle(t, standardPill, start, "09:00", eval)
	c = UpdateRecordStatus(c, 4, StatusTakenDouble, nil, nil, eval)

	m := Advise(c, eval, DefaultDelayThresholdMinutes)
	assert.Contains(t, m.Text, "Two pills recorded")
}

func TestAdviseTimeBased(t *testing.T) {
	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	day := start.AddDate(0, 0, 1)
	c := mustNewCycle(t, standardPill, start, "09:00", day.Add(8*time.Hour))

	cases := []struct {
		name string
		eval time.Time
		want string
	}{
		{"before schedule", day.Add(8 * time.Hour), "Today's pill is scheduled for 09:00."},
		{"within window", day.Add(10 * time.Hour), "It's pill time. Take today's dose now."},
		{"past window", day.Add(12*time.Hour + time.Minute), "You are past your usual time. Take today's pill now."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Advise(c, tc.eval, DefaultDelayThresholdMinutes).Text)
		})
	}
}

func TestAdviseAfterTaking(t *testing.T) {
	start := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	day := start.AddDate(0, 0, 1)
	c := mustNewCycle(t, standardPill, start, "09:00", day.Add(8*time.Hour))
	c = TakePill(c, DefaultDelayThresholdMinutes, day.Add(9*time.Hour+5*time.Minute))

	m := Advise(c, day.Add(11*time.Hour), DefaultDelayThresholdMinutes)
	assert.Equal(t, "Today's pill is taken. See you tomorrow!", m.Text)
	assert.Equal(t, IconCheck, m.IconKey)
}

func TestDerivedStatusUntakenProgression(t *testing.T) {
	sched := time.Date(2025, 6, 12, 9, 0, 0, 0, time.UTC)
	rec := DayRecord{CycleDay: 3, Status: StatusScheduled, ScheduledAt: sched}

	cases := []struct {
		name string
		eval time.Time
		want PillStatus
	}{
		{"day before", sched.AddDate(0, 0, -1), StatusScheduled},
		{"morning of", sched.Add(-2 * time.Hour), StatusTodayNotTaken},
		{"inside window", sched.Add(90 * time.Minute), StatusTodayNotTaken},
		{"past window", sched.Add(4 * time.Hour), StatusTodayDelayed},
		{"critically late", sched.Add(12 * time.Hour), StatusTodayDelayedCritical},
		{"next day", sched.AddDate(0, 0, 1), StatusMissed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DerivedStatus(rec, DefaultDelayThresholdMinutes, tc.eval))
		})
	}
}

func TestDerivedStatusOverrides(t *testing.T) {
	sched := time.Date(2025, 6, 12, 9, 0, 0, 0, time.UTC)

	// An edited double dose survives into later days.
	double := DayRecord{Status: StatusTakenDouble, ScheduledAt: sched}
	assert.Equal(t, StatusTakenDouble,
		derivedStatusWithOverride(double, DefaultDelayThresholdMinutes, sched.AddDate(0, 0, 3)))

	// A persisted TODAY_NOT_TAKEN never reverts to SCHEDULED.
	notTaken := DayRecord{Status: StatusTodayNotTaken, ScheduledAt: sched}
	assert.Equal(t, StatusTodayNotTaken,
		derivedStatusWithOverride(notTaken, DefaultDelayThresholdMinutes, sched.AddDate(0, 0, -2)))
}

func TestConsecutiveMissedDaysSkipsRest(t *testing.T) {
	eval := time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC)
	c := mustNewCycle(t, standardPill, eval.AddDate(0, 0, -10), "09:00", eval)

	c = UpdateRecordStatus(c, 7, StatusMissed, nil, nil, eval)
	c = UpdateRecordStatus(c, 8, StatusRest, nil, nil, eval)
	c = UpdateRecordStatus(c, 9, StatusMissed, nil, nil, eval)

	assert.Equal(t, 2, ConsecutiveMissedDays(c, eval))
}

func TestConsecutiveMissedDaysNeedsFullDay(t *testing.T) {
	// At 08:00 yesterday's 09:00 dose is only 23h old, so the streak
	// walk does not count it yet.
	eval := time.Date(2025, 6, 20, 8, 0, 0, 0, time.UTC)
	c := mustNewCycle(t, standardPill, eval.AddDate(0, 0, -10), "09:00", eval)
	c = UpdateRecordStatus(c, 9, StatusMissed, nil, nil, eval)

	assert.Equal(t, 0, ConsecutiveMissedDays(c, eval))
}
