// internal/domain/pill/rules.go
package pill

import "fmt"

// AdvisoryRule inspects a message context and either claims it by
// returning a message or declines with nil. Rules are evaluated in
// chain order and the first match wins, so the ordering below is part
// of the contract: a double-dose warning must not shadow a missed-days
// streak, and the generic time-based rule must stay last.
type AdvisoryRule interface {
	Evaluate(ctx MessageContext) *Message
}

var advisoryRules = []AdvisoryRule{
	earlyTakingRule{},
	restDayRule{},
	consecutiveMissedRule{},
	recentlyMissedRule{},
	doubleDoseRule{},
	yesterdayMissedRule{},
	timeBasedRule{},
}

// earlyTakingRule warns when today's dose went down two or more hours
// ahead of schedule.
type earlyTakingRule struct{}

func (earlyTakingRule) Evaluate(ctx MessageContext) *Message {
	if ctx.TodayStatus != StatusTodayTakenTooEarly {
		return nil
	}
	return &Message{
		Text:               "You took today's pill quite early. Watch out for an accidental second dose later.",
		CharacterImageKey:  CharacterWorried,
		IconKey:            IconWarning,
		BackgroundImageKey: BackgroundWarning,
	}
}

// restDayRule covers break days inside the cycle.
type restDayRule struct{}

func (restDayRule) Evaluate(ctx MessageContext) *Message {
	if ctx.TodayStatus != StatusRest {
		return nil
	}
	return &Message{
		Text:               "Break day. No pill today, enjoy the rest!",
		CharacterImageKey:  CharacterResting,
		IconKey:            IconRest,
		BackgroundImageKey: BackgroundRest,
	}
}

// consecutiveMissedRule fires on a streak of two or more fully missed
// days counting back from (but excluding) today.
type consecutiveMissedRule struct{}

func (consecutiveMissedRule) Evaluate(ctx MessageContext) *Message {
	if ctx.ConsecutiveMissedDays < 2 {
		return nil
	}
	return &Message{
		Text: fmt.Sprintf(
			"You have missed %d days in a row. Check the leaflet for how to continue, and consider asking your doctor.",
			ctx.ConsecutiveMissedDays),
		CharacterImageKey:  CharacterAlarmed,
		IconKey:            IconWarning,
		BackgroundImageKey: BackgroundWarning,
	}
}

// recentlyMissedRule handles today's dose running critically late while
// the day can still be saved.
type recentlyMissedRule struct{}

func (recentlyMissedRule) Evaluate(ctx MessageContext) *Message {
	if ctx.TodayStatus != StatusTodayDelayedCritical {
		return nil
	}
	return &Message{
		Text:               "Today's pill is long overdue. Take it as soon as possible.",
		CharacterImageKey:  CharacterAlarmed,
		IconKey:            IconWarning,
		BackgroundImageKey: BackgroundWarning,
	}
}

// doubleDoseRule flags an explicitly recorded double dose.
type doubleDoseRule struct{}

func (doubleDoseRule) Evaluate(ctx MessageContext) *Message {
	if ctx.TodayStatus != StatusTakenDouble {
		return nil
	}
	return &Message{
		Text:               "Two pills recorded for today. Skip any further dose and keep to your schedule tomorrow.",
		CharacterImageKey:  CharacterWorried,
		IconKey:            IconWarning,
		BackgroundImageKey: BackgroundWarning,
	}
}

// yesterdayMissedRule reminds about a single missed day once the streak
// rule has had its chance.
type yesterdayMissedRule struct{}

func (yesterdayMissedRule) Evaluate(ctx MessageContext) *Message {
	if ctx.YesterdayStatus == nil || *ctx.YesterdayStatus != StatusMissed {
		return nil
	}
	return &Message{
		Text:               "Yesterday's pill was missed. Check the leaflet for whether to take it together with today's.",
		CharacterImageKey:  CharacterWorried,
		IconKey:            IconWarning,
		BackgroundImageKey: BackgroundWarning,
	}
}

// timeBasedRule is the catch-all for an ordinary day, keyed off where
// "now" sits relative to the schedule.
type timeBasedRule struct{}

func (timeBasedRule) Evaluate(ctx MessageContext) *Message {
	switch ctx.TodayStatus {
	case StatusTodayNotTaken:
		idx := ctx.Cycle.RecordForDay(ctx.EvaluationDate)
		if idx >= 0 && ctx.EvaluationDate.Before(ctx.Cycle.Records[idx].ScheduledAt) {
			return &Message{
				Text:               fmt.Sprintf("Today's pill is scheduled for %s.", ctx.Cycle.ScheduledTime),
				CharacterImageKey:  CharacterCalm,
				IconKey:            IconPill,
				BackgroundImageKey: BackgroundDay,
			}
		}
		return &Message{
			Text:               "It's pill time. Take today's dose now.",
			CharacterImageKey:  CharacterCalm,
			IconKey:            IconPill,
			BackgroundImageKey: BackgroundDay,
		}
	case StatusTodayDelayed:
		return &Message{
			Text:               "You are past your usual time. Take today's pill now.",
			CharacterImageKey:  CharacterWorried,
			IconKey:            IconWarning,
			BackgroundImageKey: BackgroundWarning,
		}
	case StatusTodayTaken:
		return &Message{
			Text:               "Today's pill is taken. See you tomorrow!",
			CharacterImageKey:  CharacterHappy,
			IconKey:            IconCheck,
			BackgroundImageKey: BackgroundDay,
		}
	case StatusTodayTakenDelayed:
		return &Message{
			Text:               "Today's pill is taken, a bit later than usual. Try to stay closer to your schedule.",
			CharacterImageKey:  CharacterHappy,
			IconKey:            IconCheck,
			BackgroundImageKey: BackgroundDay,
		}
	}
	return nil
}
