// internal/app/reminder_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"pill_reminder_bot/internal/domain/pill"
	"pill_reminder_bot/internal/domain/settings"
	domainTelegram "pill_reminder_bot/internal/domain/telegram"
	idb "pill_reminder_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3" // For telebot.ReplyMarkup and telebot.SendOptions
)

// ReminderService defines the scheduled sweeps driven by the cron
// scheduler: the on-time reminder at each chat's scheduled minute, the
// overdue nudge once the delay threshold has passed, and the daily
// rollover that announces cycle completion.
type ReminderService interface {
	ProcessDueReminders(ctx context.Context) error
	ProcessOverdueReminders(ctx context.Context) error
	ProcessDailyRollover(ctx context.Context) error
}

// ReminderServiceImpl implements the ReminderService interface.
type ReminderServiceImpl struct {
	cycleRepo      pill.Repository
	settingsRepo   settings.Repository
	telegramClient domainTelegram.Client
	clock          pill.Clock
	logger         *logrus.Entry

	// dueWindow / overdueWindow bound how far past the trigger moment a
	// sweep still fires, so a reminder is sent by exactly one cron run.
	dueWindow     time.Duration
	overdueWindow time.Duration
}

func NewReminderService(
	cr pill.Repository,
	sr settings.Repository,
	tc domainTelegram.Client,
	clock pill.Clock,
	logger *logrus.Entry,
	dueWindow time.Duration,
	overdueWindow time.Duration,
) *ReminderServiceImpl {
	return &ReminderServiceImpl{
		cycleRepo:      cr,
		settingsRepo:   sr,
		telegramClient: tc,
		clock:          clock,
		logger:         logger,
		dueWindow:      dueWindow,
		overdueWindow:  overdueWindow,
	}
}

// ProcessDueReminders sends each enabled chat its reminder when "now"
// has just crossed today's scheduled time and the dose is still
// untaken.
func (s *ReminderServiceImpl) ProcessDueReminders(ctx context.Context) error {
	return s.sweep(ctx, "due", func(st *settings.UserSettings, c *pill.Cycle, rec pill.DayRecord, now time.Time) *string {
		delta := now.Sub(rec.ScheduledAt)
		if delta < 0 || delta >= s.dueWindow {
			return nil
		}
		text := st.NotificationMessage
		if text == "" {
			text = settings.DefaultNotificationMessage
		}
		return &text
	})
}

// ProcessOverdueReminders nudges chats whose dose has just slipped past
// the configured delay threshold, reusing the advisory engine for the
// wording.
func (s *ReminderServiceImpl) ProcessOverdueReminders(ctx context.Context) error {
	return s.sweep(ctx, "overdue", func(st *settings.UserSettings, c *pill.Cycle, rec pill.DayRecord, now time.Time) *string {
		threshold := time.Duration(st.DelayThresholdMinutes) * time.Minute
		delta := now.Sub(rec.ScheduledAt)
		if delta < threshold || delta >= threshold+s.overdueWindow {
			return nil
		}
		text := pill.Advise(*c, now, st.DelayThresholdMinutes).Text
		return &text
	})
}

// sweep runs one reminder pass over every notification-enabled chat.
// The decide callback returns the message text, or nil to skip the
// chat on this run.
func (s *ReminderServiceImpl) sweep(
	ctx context.Context,
	kind string,
	decide func(st *settings.UserSettings, c *pill.Cycle, rec pill.DayRecord, now time.Time) *string,
) error {
	enabled, err := s.settingsRepo.ListNotificationEnabled(ctx)
	if err != nil {
		return fmt.Errorf("failed to list notification-enabled chats: %w", err)
	}

	now := s.clock.Now()
	for _, st := range enabled {
		logCtx := s.logger.WithFields(logrus.Fields{"sweep": kind, "chat_id": st.ChatID})

		cycle, err := s.cycleRepo.FetchCurrentCycle(ctx, st.ChatID)
		if err != nil {
			if err != idb.ErrCycleNotFound {
				logCtx.WithError(err).Error("Failed to fetch current cycle during reminder sweep")
			}
			continue
		}
		if cycle.IsCycleCompleted(now) || cycle.IsCurrentlyInBreakPeriod(now) {
			continue
		}

		idx := cycle.RecordForDay(now)
		if idx < 0 {
			continue
		}
		rec := cycle.Records[idx]
		if rec.Status.IsTaken() {
			continue
		}

		text := decide(st, cycle, rec, now)
		if text == nil {
			continue
		}

		replyMarkup := &telebot.ReplyMarkup{}
		btnTake := replyMarkup.Data("I took it", fmt.Sprintf("take_%s", cycle.ID))
		replyMarkup.Inline(replyMarkup.Row(btnTake))

		err = s.telegramClient.SendMessage(st.ChatID, *text, &telebot.SendOptions{ReplyMarkup: replyMarkup})
		if err != nil {
			logCtx.WithError(err).Error("Failed to send reminder")
			continue
		}
		logCtx.WithField("cycle_day", rec.CycleDay).Info("Reminder sent")
	}
	return nil
}

// ProcessDailyRollover announces cycle completion. It fires on the
// cycle's final day only, so a daily cron run notifies exactly once per
// cycle.
func (s *ReminderServiceImpl) ProcessDailyRollover(ctx context.Context) error {
	enabled, err := s.settingsRepo.ListNotificationEnabled(ctx)
	if err != nil {
		return fmt.Errorf("failed to list notification-enabled chats: %w", err)
	}

	now := s.clock.Now()
	for _, st := range enabled {
		logCtx := s.logger.WithFields(logrus.Fields{"sweep": "rollover", "chat_id": st.ChatID})

		cycle, err := s.cycleRepo.FetchCurrentCycle(ctx, st.ChatID)
		if err != nil {
			if err != idb.ErrCycleNotFound {
				logCtx.WithError(err).Error("Failed to fetch current cycle during rollover sweep")
			}
			continue
		}
		if cycle.CurrentDay(now) != cycle.TotalDays() {
			continue
		}

		msg := pill.Advise(*cycle, now, st.DelayThresholdMinutes)
		if err := s.telegramClient.SendMessage(st.ChatID, msg.Text+" Use /restart to begin the next cycle.", nil); err != nil {
			logCtx.WithError(err).Error("Failed to send cycle completion notice")
			continue
		}
		logCtx.WithField("cycle_number", cycle.CycleNumber).Info("Cycle completion notice sent")
	}
	return nil
}
