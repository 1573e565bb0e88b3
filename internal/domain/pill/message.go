// internal/domain/pill/message.go
package pill

import (
	"fmt"
	"sort"
	"time"
)

const (
	// CriticalDelay is how far past schedule an untaken dose is reported
	// as critically delayed while its day is still running.
	CriticalDelay = 12 * time.Hour

	// FullyMissedAfter is how far past schedule an untaken dose counts as
	// unambiguously missed for the consecutive-missed walk. Before that
	// the day might still be caught up.
	FullyMissedAfter = 24 * time.Hour
)

// Presentation asset keys consumed by the UI layer.
const (
	CharacterCalm    = "character_calm"
	CharacterHappy   = "character_happy"
	CharacterWorried = "character_worried"
	CharacterAlarmed = "character_alarmed"
	CharacterResting = "character_resting"

	IconPill     = "icon_pill"
	IconCheck    = "icon_check"
	IconWarning  = "icon_warning"
	IconCalendar = "icon_calendar"
	IconRest     = "icon_rest"

	BackgroundDay     = "background_day"
	BackgroundWarning = "background_warning"
	BackgroundRest    = "background_rest"
)

// Message is the advisory surfaced to the user for one evaluation.
type Message struct {
	Text               string
	CharacterImageKey  string
	IconKey            string
	BackgroundImageKey string
}

// MessageContext carries everything a rule may inspect. It is computed
// per evaluation and never persisted. TodayStatus is empty when no
// record matches the evaluation day; YesterdayStatus is nil likewise.
type MessageContext struct {
	TodayStatus           PillStatus
	YesterdayStatus       *PillStatus
	Cycle                 Cycle
	EvaluationDate        time.Time
	ConsecutiveMissedDays int
	DelayThresholdMinutes int
}

// DerivedStatus recomputes a record's display status for evalDate.
// Taken records are reclassified from their actual taking time so a
// threshold change reinterprets history consistently; untaken records
// degrade from not-taken through delayed to critically delayed as the
// day wears on, and to missed once the day has passed.
func DerivedStatus(rec DayRecord, delayThresholdMinutes int, evalDate time.Time) PillStatus {
	switch {
	case rec.Status == StatusRest:
		return StatusRest
	case rec.Status == StatusTakenDouble:
		return StatusTakenDouble
	case rec.Status.IsTaken() && rec.TakenAt.Valid:
		return Classify(rec.ScheduledAt, rec.TakenAt.Time, delayThresholdMinutes).
			AdjustedForDate(rec.ScheduledAt, evalDate)
	}

	if IsSameDay(rec.ScheduledAt, evalDate) {
		delta := evalDate.Sub(rec.ScheduledAt)
		switch {
		case delta >= CriticalDelay:
			return StatusTodayDelayedCritical
		case delta > 0 && !withinDelayWindow(delta, delayThresholdMinutes):
			return StatusTodayDelayed
		default:
			return StatusTodayNotTaken
		}
	}
	if rec.ScheduledAt.After(evalDate) {
		return StatusScheduled
	}
	return StatusMissed
}

// derivedStatusWithOverride applies the database-status override on top
// of DerivedStatus: an explicit user edit outranks time-derived
// inference, so a persisted TODAY_NOT_TAKEN never degenerates back to
// SCHEDULED and a persisted TAKEN_DOUBLE always survives.
func derivedStatusWithOverride(rec DayRecord, delayThresholdMinutes int, evalDate time.Time) PillStatus {
	computed := DerivedStatus(rec, delayThresholdMinutes, evalDate)
	if rec.Status == StatusTodayNotTaken && computed == StatusScheduled {
		return StatusTodayNotTaken
	}
	if rec.Status == StatusTakenDouble && computed != StatusTakenDouble {
		return StatusTakenDouble
	}
	return computed
}

// ConsecutiveMissedDays walks the records newest-first, skipping the
// evaluation day itself, and counts unambiguously missed records until
// the first taken one. Rest days neither count nor break the streak.
func ConsecutiveMissedDays(c Cycle, evalDate time.Time) int {
	records := make([]DayRecord, len(c.Records))
	copy(records, c.Records)
	sort.Slice(records, func(i, j int) bool {
		return records[i].ScheduledAt.After(records[j].ScheduledAt)
	})

	count := 0
	for _, rec := range records {
		if IsSameDay(rec.ScheduledAt, evalDate) || rec.ScheduledAt.After(evalDate) {
			continue
		}
		if rec.Status == StatusRest {
			continue
		}
		if rec.Status.IsTaken() {
			break
		}
		if evalDate.Sub(rec.ScheduledAt) >= FullyMissedAfter {
			count++
		}
	}
	return count
}

// BuildMessageContext derives today's and yesterday's statuses for the
// evaluation date and counts the missed streak.
func BuildMessageContext(c Cycle, evalDate time.Time, delayThresholdMinutes int) MessageContext {
	ctx := MessageContext{
		Cycle:                 c,
		EvaluationDate:        evalDate,
		DelayThresholdMinutes: delayThresholdMinutes,
		ConsecutiveMissedDays: ConsecutiveMissedDays(c, evalDate),
	}

	if idx := c.RecordForDay(evalDate); idx >= 0 {
		ctx.TodayStatus = derivedStatusWithOverride(c.Records[idx], delayThresholdMinutes, evalDate)
	}
	if idx := c.RecordForDay(AddDays(evalDate, -1)); idx >= 0 {
		status := derivedStatusWithOverride(c.Records[idx], delayThresholdMinutes, evalDate)
		ctx.YesterdayStatus = &status
	}
	return ctx
}

// Advise evaluates the advisory rule chain for a cycle at evalDate and
// returns exactly one message. Before-start and cycle-complete checks
// run ahead of the chain; otherwise the first matching rule wins and a
// neutral status-derived message covers the remainder.
func Advise(c Cycle, evalDate time.Time, delayThresholdMinutes int) Message {
	if !evalDate.After(c.StartDate) {
		return beforeStartMessage(WholeDaysBetween(evalDate, c.StartDate))
	}

	if c.CurrentDay(evalDate) >= c.TotalDays() {
		return Message{
			Text:               "Cycle complete! Great job staying on track. Start a new cycle when you are ready.",
			CharacterImageKey:  CharacterHappy,
			IconKey:            IconCheck,
			BackgroundImageKey: BackgroundDay,
		}
	}

	ctx := BuildMessageContext(c, evalDate, delayThresholdMinutes)
	for _, rule := range advisoryRules {
		if m := rule.Evaluate(ctx); m != nil {
			return *m
		}
	}
	return defaultMessage(ctx)
}

func beforeStartMessage(daysUntilStart int) Message {
	m := Message{
		CharacterImageKey:  CharacterCalm,
		IconKey:            IconCalendar,
		BackgroundImageKey: BackgroundDay,
	}
	switch daysUntilStart {
	case 0:
		m.Text = "Your cycle starts today. The first pill is coming up!"
	case 1:
		m.Text = "Your cycle starts tomorrow."
	default:
		m.Text = fmt.Sprintf("Your cycle starts in %d days.", daysUntilStart)
	}
	return m
}

// defaultMessage is the neutral fallback when no rule claimed the
// context, keyed directly off today's derived status.
func defaultMessage(ctx MessageContext) Message {
	switch ctx.TodayStatus {
	case StatusTodayTaken, StatusTodayTakenDelayed, StatusTodayTakenTooEarly, StatusTaken, StatusTakenDelayed, StatusTakenTooEarly:
		return Message{
			Text:               "Today's pill is taken. See you tomorrow!",
			CharacterImageKey:  CharacterHappy,
			IconKey:            IconCheck,
			BackgroundImageKey: BackgroundDay,
		}
	case StatusRest:
		return Message{
			Text:               "Break day. No pill today.",
			CharacterImageKey:  CharacterResting,
			IconKey:            IconRest,
			BackgroundImageKey: BackgroundRest,
		}
	case StatusTakenDouble:
		return Message{
			Text:               "Two pills recorded for today.",
			CharacterImageKey:  CharacterWorried,
			IconKey:            IconWarning,
			BackgroundImageKey: BackgroundWarning,
		}
	case StatusTodayDelayed, StatusTodayDelayedCritical, StatusMissed:
		return Message{
			Text:               "Your pill is overdue. Take it as soon as you can.",
			CharacterImageKey:  CharacterWorried,
			IconKey:            IconWarning,
			BackgroundImageKey: BackgroundWarning,
		}
	case StatusTodayNotTaken, StatusScheduled:
		return Message{
			Text:               "Your pill is scheduled for today. Don't forget it!",
			CharacterImageKey:  CharacterCalm,
			IconKey:            IconPill,
			BackgroundImageKey: BackgroundDay,
		}
	}
	return Message{
		Text:               "Keep up with your schedule. Check your calendar for details.",
		CharacterImageKey:  CharacterCalm,
		IconKey:            IconCalendar,
		BackgroundImageKey: BackgroundDay,
	}
}
